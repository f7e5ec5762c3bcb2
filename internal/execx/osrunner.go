package execx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// OSRunner executes commands on the host through os/exec.
type OSRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// NewOSRunner returns a runner streaming command output to the process
// stdout and stderr, the way an interactive bootstrap is expected to behave.
func NewOSRunner() *OSRunner {
	return &OSRunner{Stdout: os.Stdout, Stderr: os.Stderr}
}

func (r *OSRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func (r *OSRunner) Run(ctx context.Context, cmd Cmd) error {
	c := r.build(ctx, cmd)
	c.Stdout = r.Stdout
	c.Stderr = r.Stderr

	if err := c.Run(); err != nil {
		return fmt.Errorf("%s: %w", cmd, err)
	}
	return nil
}

func (r *OSRunner) Output(ctx context.Context, cmd Cmd) (string, error) {
	c := r.build(ctx, cmd)

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	if err := c.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s: %s: %w", cmd, msg, err)
		}
		return "", fmt.Errorf("%s: %w", cmd, err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

func (r *OSRunner) build(ctx context.Context, cmd Cmd) *exec.Cmd {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}
	return c
}
