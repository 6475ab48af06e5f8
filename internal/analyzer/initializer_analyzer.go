package analyzer

import (
	"context"
	"log/slog"

	"github.com/podhmo/cligen/internal/metadata"
)

// analyzeInitializer logs how the defaults instance of cmd is created:
// the conventional New<Type>() initializer when declared, otherwise new(Type).
// Defaults are read from that instance, so an initializer is how a command
// declares default values.
func analyzeInitializer(ctx context.Context, cmd *metadata.CommandDecl) {
	if cmd.Constructor != "" {
		slog.DebugContext(ctx, "using conventional initializer", "type", cmd.TypeName(), "func", cmd.Constructor)
		return
	}
	slog.DebugContext(ctx, "no initializer, defaults are zero values", "type", cmd.TypeName(), "expected", "New"+cmd.TypeName())
}
