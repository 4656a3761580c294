// pkg/retry/retry.go - functions for retrying actions with exponential backoff.

package retry

import (
	"errors"
	"fmt"
	"time"

	"github.com/windowsadmins/spruce/pkg/logging"
)

// Config defines the configuration for retry attempts.
type Config struct {
	MaxRetries      int
	InitialInterval time.Duration
	Multiplier      float64
}

// Once runs an action a single time.
var Once = Config{MaxRetries: 1}

// permanent marks an error that must not be retried.
type permanent struct{ err error }

func (p *permanent) Error() string { return p.err.Error() }
func (p *permanent) Unwrap() error { return p.err }

// Permanent wraps err so Retry returns it immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanent{err: err}
}

// Retry retries action with exponential backoff. The last error is returned
// unwrapped from any Permanent marker.
func Retry(config Config, action func() error) error {
	attempts := config.MaxRetries
	if attempts < 1 {
		attempts = 1
	}
	interval := config.InitialInterval
	multiplier := config.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = action()
		if err == nil {
			return nil
		}

		var p *permanent
		if errors.As(err, &p) {
			return p.err
		}

		if attempt < attempts {
			logging.Warn(fmt.Sprintf("Attempt %d/%d failed, retrying in %s", attempt, attempts, interval),
				"error", err)
			time.Sleep(interval)
			interval = time.Duration(float64(interval) * multiplier)
		}
	}
	return err
}
