package step

import (
	"context"
	"fmt"
	"time"

	"github.com/shopercenter/devup/internal/logging"
)

// Listener observes step lifecycle events. The CLI uses it for spinner and
// colored status output; logging happens in the runner regardless.
type Listener interface {
	StepStarted(name string)
	StepFinished(name string, res Result, err error, elapsed time.Duration)
}

// Runner executes steps strictly sequentially: a step starts only after the
// previous step's outcome is known. The first non-best-effort failure stops
// the sequence.
type Runner struct {
	log      logging.Logger
	listener Listener
}

func NewRunner(log logging.Logger) *Runner {
	return &Runner{log: log}
}

// SetListener attaches an optional lifecycle observer.
func (r *Runner) SetListener(l Listener) {
	r.listener = l
}

// Run executes the steps in order and returns the first fatal error.
func (r *Runner) Run(ctx context.Context, steps []Step) error {
	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}

		if r.listener != nil {
			r.listener.StepStarted(s.Name())
		}
		start := time.Now()

		res, err := s.Run(ctx)
		elapsed := time.Since(start)

		if err != nil && res.Status != StatusFailed {
			res.Status = StatusFailed
		}
		if r.listener != nil {
			r.listener.StepFinished(s.Name(), res, err, elapsed)
		}

		if err != nil {
			if isBestEffort(s) {
				r.log.Warn(ctx, "step failed, continuing",
					"step", s.Name(), "error", err, "elapsed", elapsed)
				continue
			}
			r.log.Error(ctx, "step failed",
				"step", s.Name(), "error", err, "elapsed", elapsed)
			return fmt.Errorf("step %s: %w", s.Name(), err)
		}

		r.log.Info(ctx, "step finished",
			"step", s.Name(), "status", res.Status.String(), "detail", res.Detail, "elapsed", elapsed)
	}
	return nil
}

func isBestEffort(s Step) bool {
	be, ok := s.(BestEffort)
	return ok && be.BestEffort()
}
