package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/tally/internal/orchestrator"
)

// NewStageCommand creates the stage command.
func NewStageCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stage <message...>",
		Short: "Classify a message and stage it for confirmation",
		Long: `Classify a plain-language message and, if it describes a sale, expense
or stock change, stage it and print the preview with its id.

Nothing is recorded until "tally resolve <id> --yes". Staged actions
outlive this command only with the redis pending backend.

Exit codes:
  0 - Action staged
  1 - Message was not staged (not an action, or invalid)
  2 - Command error

Examples:
  tally stage "sold 5 rice at 30"
  tally stage --locale hi "paid 1200 for the electricity bill"
  tally stage --format json "used 5 milk"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStage(rootOpts, strings.Join(args, " "), cmd)
		},
	}
}

func runStage(opts *RootOptions, text string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.orch.Stage(ctx, opts.Owner, text, a.locale)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to stage", err)
	}

	f := opts.formatter(cmd)
	if !res.Staged {
		if err := f.Error(string(res.Reason), res.Message, res.Detail); err != nil {
			return err
		}
		return reported(ExitFailure, res.Message)
	}

	if a.ephemeral() {
		a.logger.Warn("pending store is in-memory; this action cannot be resolved after the command exits",
			"id", res.ID, "event", "ephemeral_stage")
	}
	return f.Success(formatStaged(res), res)
}

func formatStaged(res orchestrator.StageResult) string {
	return fmt.Sprintf("%s\n%s", renderPreview(res.Preview),
		mutedStyle.Render(fmt.Sprintf("id %s, expires %s", res.ID, res.ExpiresAt.Local().Format(time.Kitchen))))
}
