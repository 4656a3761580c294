package version

import (
	"bytes"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionFallsBackToRuntime(t *testing.T) {
	assert.Equal(t, runtime.Version(), Version().GoVersion)
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	Print(&buf)
	assert.True(t, strings.HasPrefix(buf.String(), "spruce "))

	buf.Reset()
	PrintFull(&buf)
	assert.Contains(t, buf.String(), "go version:")
}
