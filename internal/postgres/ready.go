package postgres

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopercenter/devup/internal/execx"
	"github.com/shopercenter/devup/internal/logging"
	"github.com/shopercenter/devup/internal/step"
)

const (
	defaultProbeInterval = time.Second
	defaultProbeAttempts = 30
)

// WaitReadyStep polls the engine's readiness probe at a fixed interval up to
// a bounded number of attempts. The step never fails: timing out only means
// the provisioning step that follows will detect unreadiness and abort.
type WaitReadyStep struct {
	Runner execx.Runner
	Log    logging.Logger
	Host   string // empty in socket mode
	Port   int

	Interval time.Duration
	Attempts int
}

func (s *WaitReadyStep) Name() string { return "engine readiness" }

func (s *WaitReadyStep) Run(ctx context.Context) (step.Result, error) {
	interval := s.Interval
	if interval <= 0 {
		interval = defaultProbeInterval
	}
	attempts := s.Attempts
	if attempts <= 0 {
		attempts = defaultProbeAttempts
	}

	probe := s.probeCmd()
	for i := 1; i <= attempts; i++ {
		_, err := s.Runner.Output(ctx, probe)
		if err == nil {
			return step.Satisfied(fmt.Sprintf("ready after %d probe(s)", i)), nil
		}
		s.Log.Debug(ctx, "readiness probe failed", "attempt", i, "error", err)

		if i == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return step.Failed("interrupted"), ctx.Err()
		case <-time.After(interval):
		}
	}

	s.Log.Warn(ctx, "engine not confirmed ready, continuing", "attempts", attempts)
	return step.Applied(fmt.Sprintf("not confirmed ready after %d probes", attempts)), nil
}

func (s *WaitReadyStep) probeCmd() execx.Cmd {
	args := []string{}
	if s.Host != "" {
		args = append(args, "-h", s.Host)
	}
	if s.Port > 0 {
		args = append(args, "-p", strconv.Itoa(s.Port))
	}
	return execx.Command("pg_isready", args...)
}
