package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/tally/internal/orchestrator"
)

// ResolveOptions holds flags for the resolve command.
type ResolveOptions struct {
	*RootOptions
	Yes bool
	No  bool
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResolveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "resolve <id> (--yes | --no)",
		Short: "Confirm or cancel a staged action",
		Long: `Confirm (--yes) or cancel (--no) a staged action.

An id resolves at most once. Confirming records the action in the
ledger; cancelling discards it. Either way the id is gone afterwards.

Exit codes:
  0 - Executed or cancelled
  1 - Not found, expired, belongs to another owner, or execution failed
  2 - Command error

Examples:
  tally resolve 3f2a9c1e0b7d-lx2k9f-a1b2c3d4 --yes
  tally resolve 3f2a9c1e0b7d-lx2k9f-a1b2c3d4 --no`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "confirm the action")
	cmd.Flags().BoolVarP(&opts.No, "no", "n", false, "cancel the action")
	cmd.MarkFlagsMutuallyExclusive("yes", "no")
	cmd.MarkFlagsOneRequired("yes", "no")

	return cmd
}

func runResolve(opts *ResolveOptions, id string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, opts.RootOptions, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	// An explicit --locale wins; otherwise messages follow the locale the
	// action was staged with.
	res, err := a.orch.Resolve(ctx, opts.Owner, id, opts.Yes, opts.Locale)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to resolve", err)
	}
	return emitResolve(opts.formatter(cmd), res)
}

// emitResolve prints a resolve result and maps its outcome to an exit code.
func emitResolve(f *OutputFormatter, res orchestrator.ResolveResult) error {
	switch res.Outcome {
	case orchestrator.OutcomeExecuted, orchestrator.OutcomeCancelled:
		return f.Success(okStyle.Render(res.Message), res)
	}

	code := string(res.Outcome)
	if res.Code != "" {
		code = string(res.Code)
	}
	if err := f.Error(code, res.Message, res); err != nil {
		return err
	}
	return reported(ExitFailure, res.Message)
}
