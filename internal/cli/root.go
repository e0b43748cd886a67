package cli

import (
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/tally/internal/action"
	"github.com/roach88/tally/internal/classifier"
)

// DefaultOwner is the owner used when --owner is not given, for a
// single-shop install.
const DefaultOwner = "local"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Owner      string
	Locale     string

	// Classifier replaces the configured HTTP classifier (for testing).
	Classifier classifier.Classifier

	// IDs replaces the default action id generator (for testing).
	IDs action.IDGenerator
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the tally CLI.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWith(&RootOptions{})
}

// NewRootCommandWith builds the command tree around opts, so tests can
// inject collaborators before flags are parsed.
func NewRootCommandWith(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tally",
		Short: "tally - a confirm-before-commit shop ledger",
		Long: `Turn plain-language messages into sales, expenses and stock changes.

Every message is classified, checked, and shown back as a preview.
Nothing is written to the ledger until the preview is confirmed.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			if opts.Owner == "" {
				return NewExitError(ExitCommandError, "--owner must not be empty")
			}
			if opts.ConfigPath == "" {
				opts.ConfigPath = os.Getenv("TALLY_CONFIG")
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to config file (default $TALLY_CONFIG)")
	cmd.PersistentFlags().StringVar(&opts.Owner, "owner", DefaultOwner, "shop the actions belong to")
	cmd.PersistentFlags().StringVar(&opts.Locale, "locale", "", "message locale: en, hi or te (default from config)")

	cmd.AddCommand(NewStageCommand(opts))
	cmd.AddCommand(NewResolveCommand(opts))
	cmd.AddCommand(NewSessionCommand(opts))
	cmd.AddCommand(NewCatalogCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}
