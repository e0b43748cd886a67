package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/tally/internal/action"
	"github.com/roach88/tally/internal/ledger"
)

// NewHistoryCommand creates the history command group.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded sales and expenses",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "sales",
		Short: "List recorded sales",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			sales, err := a.ledger.ListSales(ctx, rootOpts.Owner)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to list sales", err)
			}
			return rootOpts.formatter(cmd).Success(formatSales(sales), sales)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "sale <id>",
		Short: "Show one sale with its lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			f := rootOpts.formatter(cmd)
			sale, err := a.ledger.GetSale(ctx, rootOpts.Owner, args[0])
			if err != nil {
				msg := fmt.Sprintf("sale %s not found", args[0])
				if ferr := f.Error("SALE_NOT_FOUND", msg, err.Error()); ferr != nil {
					return ferr
				}
				return reported(ExitFailure, msg)
			}
			return f.Success(formatSale(sale), sale)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "expenses",
		Short: "List recorded expenses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			expenses, err := a.ledger.ListExpenses(ctx, rootOpts.Owner)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to list expenses", err)
			}
			return rootOpts.formatter(cmd).Success(formatExpenses(expenses), expenses)
		},
	})
	cmd.AddCommand(newHistoryActionsCommand(rootOpts))
	return cmd
}

func newHistoryActionsCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "actions",
		Short: "List staged actions and how each was resolved",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			entries, err := a.ledger.ListJournal(ctx, rootOpts.Owner, limit)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to list actions", err)
			}
			return rootOpts.formatter(cmd).Success(formatJournal(entries), entries)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Show at most this many actions (0 for all)")
	return cmd
}

func formatSales(sales []ledger.Sale) string {
	if len(sales) == 0 {
		return mutedStyle.Render("No sales.")
	}
	rows := [][]string{{"ID", "WHEN", "ITEMS", "TOTAL", "PAYMENT"}}
	for _, s := range sales {
		names := make([]string, len(s.Lines))
		for i, l := range s.Lines {
			names[i] = l.Name
		}
		rows = append(rows, []string{
			s.ID,
			s.CreatedAt.Local().Format(time.DateTime),
			strings.Join(names, ", "),
			action.FormatMoney(s.Total),
			s.PaymentMethod,
		})
	}
	return renderTable(rows)
}

func formatSale(s ledger.Sale) string {
	rows := [][]string{{"ITEM", "QTY", "PRICE", "SUBTOTAL"}}
	for _, l := range s.Lines {
		rows = append(rows, []string{
			l.Name,
			action.FormatQuantity(l.Quantity),
			action.FormatMoney(l.Price),
			action.FormatMoney(l.Quantity.Mul(l.Price)),
		})
	}
	header := fmt.Sprintf("Sale %s, %s", s.ID, s.CreatedAt.Local().Format(time.DateTime))
	if s.Customer != "" {
		header += ", customer " + s.Customer
	}
	return fmt.Sprintf("%s\n%s\nTotal: %s (%s)", header, renderTable(rows), action.FormatMoney(s.Total), s.PaymentMethod)
}

func formatExpenses(expenses []ledger.Expense) string {
	if len(expenses) == 0 {
		return mutedStyle.Render("No expenses.")
	}
	rows := [][]string{{"ID", "WHEN", "CATEGORY", "AMOUNT", "DESCRIPTION"}}
	for _, e := range expenses {
		rows = append(rows, []string{
			e.ID,
			e.CreatedAt.Local().Format(time.DateTime),
			e.Category,
			action.FormatMoney(e.Amount),
			e.Description,
		})
	}
	return renderTable(rows)
}

func formatJournal(entries []ledger.JournalEntry) string {
	if len(entries) == 0 {
		return mutedStyle.Render("No actions.")
	}
	rows := [][]string{{"ID", "STAGED", "KIND", "OUTCOME", "TEXT"}}
	for _, e := range entries {
		outcome := "unresolved"
		if e.Resolved() {
			outcome = e.Outcome
			if e.Code != "" {
				outcome += " (" + e.Code + ")"
			}
		}
		rows = append(rows, []string{
			e.Action.ID,
			e.Action.IssuedAt.Local().Format(time.DateTime),
			e.Action.Kind().String(),
			outcome,
			e.Action.SourceText,
		})
	}
	return renderTable(rows)
}
