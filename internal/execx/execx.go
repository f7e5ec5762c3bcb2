// Package execx wraps os/exec behind a small Runner interface so that steps
// shelling out to host tools (package managers, service supervisors, the
// framework's manage script) can be exercised in tests with a fake runner.
package execx

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Cmd describes one external command invocation.
type Cmd struct {
	Name string
	Args []string
	Dir  string   // working directory; empty means inherit
	Env  []string // extra KEY=VALUE pairs appended to the parent environment
}

// Command builds a Cmd for name with the given arguments.
func Command(name string, args ...string) Cmd {
	return Cmd{Name: name, Args: args}
}

// InDir returns a copy of the command with the working directory set.
func (c Cmd) InDir(dir string) Cmd {
	c.Dir = dir
	return c
}

// WithEnv returns a copy of the command with extra environment entries.
func (c Cmd) WithEnv(env ...string) Cmd {
	c.Env = append(c.Env, env...)
	return c
}

// String renders the command line for logging and for fake lookups.
func (c Cmd) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Runner executes external commands.
type Runner interface {
	// LookPath reports the location of an executable on the search path.
	LookPath(name string) (string, error)

	// Run executes the command, streaming its output to the process
	// stdout/stderr. The returned error wraps the exit status.
	Run(ctx context.Context, cmd Cmd) error

	// Output executes the command and returns its trimmed stdout.
	Output(ctx context.Context, cmd Cmd) (string, error)
}

// ExitStatusError reports a non-zero exit status. The fake runner returns it
// directly; the OS runner's errors carry *exec.ExitError instead. Use
// ExitCode to handle both.
type ExitStatusError struct {
	Code int
}

func (e *ExitStatusError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// ExitCode extracts the process exit code from err. The second return value
// is false when err does not represent a completed process (e.g. the binary
// was not found or the context was canceled).
func ExitCode(err error) (int, bool) {
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode(), true
	}
	var se *ExitStatusError
	if errors.As(err, &se) {
		return se.Code, true
	}
	return 0, false
}
