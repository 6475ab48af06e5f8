package analyzer

import (
	"github.com/podhmo/cligen/internal/diag"
	"github.com/podhmo/cligen/internal/metadata"
)

// analyzeRunFunc reports commands that cannot dispatch.
// A command without Run is fine as long as it groups subcommands;
// a Run method with another signature is always reported.
//
// Supported signatures:
//
//	func (c *T) Run()
//	func (c *T) Run() error
//	func (c *T) Run(ctx context.Context)
//	func (c *T) Run(ctx context.Context) error
func analyzeRunFunc(cmd *metadata.CommandDecl) {
	if !cmd.Decl.IsStruct {
		return
	}
	ref := cmd.Decl.Ref
	switch {
	case cmd.Run == nil && len(cmd.Children) == 0:
		cmd.Diagnostics.Add(diag.New(diag.NoRunMethod, ref.Pos, ref.Name, ref.Name, "it has no subcommands either"))
	case cmd.Run != nil && !cmd.Run.Supported:
		cmd.Diagnostics.Add(diag.New(diag.NoRunMethod, ref.Pos, ref.Name, ref.Name,
			"Run must be func(), func() error, func(context.Context) or func(context.Context) error"))
	}
}
