// Package command runs external tools such as tesseract, pdftotext and ffmpeg.
package command

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/custodia-labs/deckqa/internal/core/domain"
	"github.com/custodia-labs/deckqa/internal/core/ports/driven"
	"github.com/custodia-labs/deckqa/internal/logger"
)

// Ensure Runner implements the interface.
var _ driven.CommandRunner = (*Runner)(nil)

// maxStderr bounds how much of a tool's stderr ends up in error messages.
const maxStderr = 512

// Runner executes commands with os/exec.
type Runner struct{}

// NewRunner returns a Runner.
func NewRunner() *Runner {
	return &Runner{}
}

// Run executes name with args and returns stdout. Stderr is attached to the
// error when the command fails.
func (r *Runner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	logger.Debug("exec: %s %s", name, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if len(msg) > maxStderr {
			msg = msg[:maxStderr]
		}
		if msg != "" {
			return out, fmt.Errorf("%s failed: %w: %s", name, err, msg)
		}
		return out, fmt.Errorf("%s failed: %w", name, err)
	}
	return out, nil
}

// CheckAvailable returns domain.ErrToolNotFound if name is not on PATH.
func CheckAvailable(name string) error {
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrToolNotFound, name)
	}
	return nil
}
