package system

import (
	"fmt"

	"github.com/TheVortexX/OncoTrack-sub000/internal/cli"
)

// ValidateCmd reports inconsistencies in the stored records. Conflicts are
// printed, not returned as an error, so warnings do not fail scripts.
type ValidateCmd struct {
	Strict bool `help:"Exit with an error when any conflict is found."`
}

func (cmd *ValidateCmd) Run(ctx *cli.Context) error {
	result, err := ctx.Service.Check(ctx, ctx.UserID)
	if err != nil {
		return fmt.Errorf("failed to validate: %w", err)
	}

	ctx.Println(result.FormatReport())

	if cmd.Strict && result.HasConflicts() {
		return fmt.Errorf("%d conflict(s) found", len(result.Conflicts))
	}
	if result.HasErrors() {
		return fmt.Errorf("invalid records found")
	}
	return nil
}
