package pass

import (
	"context"
	"fmt"

	"offload/internal/ir"
	"offload/internal/observ"
	"offload/internal/trace"
)

// Manager runs a fixed list of passes over modules.
type Manager struct {
	passes []Pass
	// VerifyEach runs ir.Validate after every pass.
	VerifyEach bool
	// Timer, when set, gets one phase per pass run.
	Timer *observ.Timer
	// OnPass is called after each pass that succeeded.
	OnPass func(p Pass)
}

// NewManager creates a manager for passes.
func NewManager(passes ...Pass) *Manager {
	return &Manager{passes: passes}
}

// Passes returns the managed passes in run order.
func (pm *Manager) Passes() []Pass { return pm.passes }

// Run applies every pass to m in order and stops at the first failure.
// The error names the failing pass.
func (pm *Manager) Run(ctx context.Context, m *ir.Module) error {
	for _, p := range pm.passes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := pm.runOne(ctx, p, m); err != nil {
			return fmt.Errorf("pass %s: %w", p.Name(), err)
		}
		if pm.OnPass != nil {
			pm.OnPass(p)
		}
	}
	return nil
}

func (pm *Manager) runOne(ctx context.Context, p Pass, m *ir.Module) (err error) {
	span, ctx := trace.StartSpan(ctx, trace.ScopePass, p.Name())
	phase := pm.Timer.Begin(p.Name())
	defer func() {
		status := "ok"
		if err != nil {
			status = "failed"
		}
		pm.Timer.End(phase, status)
		span.End(status)
	}()

	if err := p.Run(ctx, m); err != nil {
		return err
	}
	if pm.VerifyEach {
		if err := ir.Validate(m); err != nil {
			return fmt.Errorf("%w after pass: %w", ErrInvalidModule, err)
		}
	}
	return nil
}
