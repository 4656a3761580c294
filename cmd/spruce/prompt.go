// cmd/spruce/prompt.go - confirmation before destructive changes.

package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/windowsadmins/spruce/pkg/exitcode"
)

// confirm asks question on the terminal. force skips the prompt; without a
// terminal and without force the command is aborted.
func (a *app) confirm(question string, force bool) error {
	if force {
		return nil
	}
	if !a.interactive() {
		return fmt.Errorf("%w: no terminal to confirm on, rerun with --force", exitcode.ErrAborted)
	}
	fmt.Fprintf(a.out, "%s [y/N]: ", question)
	line, _ := bufio.NewReader(a.in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return nil
	}
	return exitcode.ErrAborted
}

// failed turns collected per-file failures into the command error.
func failed(n int, what string) error {
	if n == 0 {
		return nil
	}
	return exitcode.WithCode(exitcode.FileSystemError, fmt.Errorf("%d %s failed", n, what))
}

// formatBytes renders n with a binary unit.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
