package execx

import (
	"context"
	"fmt"
	"os/exec"
)

// FakeResult scripts the outcome of one command line in a FakeRunner.
type FakeResult struct {
	Output string
	Err    error
}

// FakeRunner is a scriptable Runner for tests. Commands are matched by their
// rendered command line (Cmd.String). Every invocation is recorded.
type FakeRunner struct {
	// Paths maps executable names to LookPath results. Names not present
	// resolve to exec.ErrNotFound.
	Paths map[string]string

	// Results maps command lines to scripted outcomes. Command lines not
	// present succeed with empty output unless Strict is set.
	Results map[string]FakeResult

	// Strict makes unscripted command lines fail.
	Strict bool

	Calls []Cmd
}

func (f *FakeRunner) LookPath(name string) (string, error) {
	if p, ok := f.Paths[name]; ok {
		return p, nil
	}
	return "", fmt.Errorf("%s: %w", name, exec.ErrNotFound)
}

func (f *FakeRunner) Run(ctx context.Context, cmd Cmd) error {
	_, err := f.Output(ctx, cmd)
	return err
}

func (f *FakeRunner) Output(_ context.Context, cmd Cmd) (string, error) {
	f.Calls = append(f.Calls, cmd)

	if res, ok := f.Results[cmd.String()]; ok {
		return res.Output, res.Err
	}
	if f.Strict {
		return "", fmt.Errorf("unscripted command: %s", cmd)
	}
	return "", nil
}

// CommandLines returns the rendered command lines of all recorded calls.
func (f *FakeRunner) CommandLines() []string {
	lines := make([]string, 0, len(f.Calls))
	for _, c := range f.Calls {
		lines = append(lines, c.String())
	}
	return lines
}

// Ran reports whether a command line was executed.
func (f *FakeRunner) Ran(line string) bool {
	for _, c := range f.Calls {
		if c.String() == line {
			return true
		}
	}
	return false
}
