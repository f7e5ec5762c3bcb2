// Package step models the bootstrap as an ordered sequence of idempotent
// units. Each step reports whether the state it owns was already satisfied,
// had to be applied, or was skipped, instead of relying on exit codes alone.
package step

import "context"

// Status is the tri-state outcome of one bootstrap step.
type Status int

const (
	// StatusSatisfied means the desired state already held; nothing was done.
	StatusSatisfied Status = iota
	// StatusApplied means the step changed external state to reach the
	// desired end state.
	StatusApplied
	// StatusSkipped means the step's precondition (e.g. a frontend
	// descriptor) was absent, so the step did not apply to this host.
	StatusSkipped
	// StatusFailed means the step could not reach the desired state.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSatisfied:
		return "satisfied"
	case StatusApplied:
		return "applied"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result carries the outcome of a step run plus a human-readable detail.
type Result struct {
	Status Status
	Detail string
}

func Satisfied(detail string) Result { return Result{Status: StatusSatisfied, Detail: detail} }
func Applied(detail string) Result   { return Result{Status: StatusApplied, Detail: detail} }
func Skipped(detail string) Result   { return Result{Status: StatusSkipped, Detail: detail} }
func Failed(detail string) Result    { return Result{Status: StatusFailed, Detail: detail} }

// Step is one idempotent provisioning unit. Run must tolerate having already
// been performed on a previous invocation.
type Step interface {
	Name() string
	Run(ctx context.Context) (Result, error)
}

// BestEffort marks steps whose failure is logged and swallowed rather than
// aborting the sequence.
type BestEffort interface {
	BestEffort() bool
}
