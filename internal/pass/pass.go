// Package pass defines module passes, a registry to look them up by name and
// a manager that runs a pipeline of them over one module.
package pass

import (
	"context"

	"offload/internal/ir"
)

// Pass transforms or checks a module in place.
type Pass interface {
	Name() string
	Description() string
	Run(ctx context.Context, m *ir.Module) error
}

// Factory creates a fresh pass instance. Passes may keep per-run state, so a
// pipeline gets its own instances.
type Factory func() Pass

// Info describes a registered pass.
type Info struct {
	Name        string
	Description string
	New         Factory
}
