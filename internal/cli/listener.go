package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"

	"github.com/shopercenter/devup/internal/step"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
)

// ConsoleListener prints one line per finished step. On an interactive
// terminal a spinner runs while the step does.
type ConsoleListener struct {
	Out         io.Writer
	Interactive bool

	spin *spinner.Spinner
}

func (l *ConsoleListener) StepStarted(name string) {
	if !l.Interactive {
		fmt.Fprintf(l.Out, "==> %s\n", name)
		return
	}
	l.spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(l.Out))
	l.spin.Suffix = " " + name
	l.spin.Start()
}

func (l *ConsoleListener) StepFinished(name string, res step.Result, err error, elapsed time.Duration) {
	if l.spin != nil {
		l.spin.Stop()
		l.spin = nil
	}

	line := statusLabel(res.Status) + " " + name
	if res.Detail != "" {
		line += ": " + res.Detail
	}
	if err != nil {
		line += " (" + err.Error() + ")"
	}
	fmt.Fprintf(l.Out, "%s [%s]\n", line, elapsed.Round(time.Millisecond))
}

func statusLabel(s step.Status) string {
	switch s {
	case step.StatusSatisfied:
		return infoColor.Sprint("ok  ")
	case step.StatusApplied:
		return successColor.Sprint("done")
	case step.StatusSkipped:
		return warningColor.Sprint("skip")
	default:
		return errorColor.Sprint("FAIL")
	}
}
