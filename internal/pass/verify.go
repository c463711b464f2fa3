package pass

import (
	"context"
	"errors"
	"fmt"

	"offload/internal/ir"
)

// VerifyName is the registered name of the structural verifier.
const VerifyName = "verify"

// ErrInvalidModule is wrapped by every structural verification failure.
var ErrInvalidModule = errors.New("module invalid")

// Verify checks module invariants without changing anything.
type Verify struct{}

func (Verify) Name() string        { return VerifyName }
func (Verify) Description() string { return "Checks structural IR invariants." }

func (Verify) Run(ctx context.Context, m *ir.Module) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ir.Validate(m); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidModule, err)
	}
	return nil
}
