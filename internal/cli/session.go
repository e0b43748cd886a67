package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/tally/internal/orchestrator"
)

// Replies that resolve the current action, in every supported locale.
var (
	yesWords = []string{"y", "yes", "ok", "confirm", "haan", "ha", "ji", "avunu", "sare", "హా", "అవును", "हाँ", "हां"}
	noWords  = []string{"n", "no", "cancel", "nahi", "nahin", "vaddu", "కాదు", "వద్దు", "नहीं"}
)

// NewSessionCommand creates the session command.
func NewSessionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Chat with the ledger interactively",
		Long: `Start an interactive session. Each line is staged and previewed;
answer yes or no to resolve the latest staged action. Type quit to leave.

The pending-store sweeper runs for the life of the session.

Example:
  tally session --owner shop-1 --locale te`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(rootOpts, cmd)
		},
	}
}

func runSession(opts *RootOptions, cmd *cobra.Command) error {
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	a.sweeper.Start(ctx)
	defer a.sweeper.Stop()

	s := &session{
		opts: opts,
		app:  a,
		f:    opts.formatter(cmd),
		out:  cmd.OutOrStdout(),
	}
	return s.run(ctx, cmd.InOrStdin())
}

type session struct {
	opts    *RootOptions
	app     *app
	f       *OutputFormatter
	out     io.Writer
	current string // id of the latest staged action
}

func (s *session) prompt() {
	if s.opts.Format != "json" {
		fmt.Fprint(s.out, "> ")
	}
}

func (s *session) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	s.prompt()
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
		case line == "quit" || line == "exit":
			return nil
		case matchesWord(line, yesWords):
			if err := s.resolve(ctx, true); err != nil {
				return err
			}
		case matchesWord(line, noWords):
			if err := s.resolve(ctx, false); err != nil {
				return err
			}
		default:
			if err := s.stage(ctx, line); err != nil {
				return err
			}
		}
		s.prompt()
	}
	if err := scanner.Err(); err != nil {
		return WrapExitError(ExitCommandError, "failed to read input", err)
	}
	return nil
}

func (s *session) stage(ctx context.Context, text string) error {
	res, err := s.app.orch.Stage(ctx, s.opts.Owner, text, s.app.locale)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return WrapExitError(ExitCommandError, "failed to stage", err)
	}
	if !res.Staged {
		return s.f.Error(string(res.Reason), res.Message, res.Detail)
	}
	if s.current != "" {
		s.f.VerboseLog("replacing unresolved action %s", s.current)
	}
	s.current = res.ID
	return s.f.Success(formatStaged(res), res)
}

func (s *session) resolve(ctx context.Context, confirmed bool) error {
	id := s.current
	s.current = ""

	res, err := s.app.orch.Resolve(ctx, s.opts.Owner, id, confirmed, s.opts.Locale)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return WrapExitError(ExitCommandError, "failed to resolve", err)
	}
	if res.Outcome == orchestrator.OutcomeExecuted || res.Outcome == orchestrator.OutcomeCancelled {
		return s.f.Success(okStyle.Render(res.Message), res)
	}
	code := string(res.Outcome)
	if res.Code != "" {
		code = string(res.Code)
	}
	return s.f.Error(code, res.Message, nil)
}

func matchesWord(line string, words []string) bool {
	return slices.Contains(words, strings.ToLower(strings.Trim(line, " .!")))
}
