package cli

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/roach88/tally/internal/action"
	"github.com/roach88/tally/internal/ledger"
)

// CatalogAddOptions holds flags for catalog add.
type CatalogAddOptions struct {
	*RootOptions
	Quantity  string
	CostPrice string
	Price     string
	Category  string
}

// NewCatalogCommand creates the catalog command group.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and seed the item catalog",
	}
	cmd.AddCommand(newCatalogListCommand(rootOpts))
	cmd.AddCommand(newCatalogAddCommand(rootOpts))
	return cmd
}

func newCatalogListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List catalog items with on-hand stock",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			items, err := a.ledger.ListItems(ctx, rootOpts.Owner)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to list items", err)
			}
			return rootOpts.formatter(cmd).Success(formatItems(items), items)
		},
	}
}

func formatItems(items []ledger.Item) string {
	if len(items) == 0 {
		return mutedStyle.Render("No items.")
	}
	rows := [][]string{{"NAME", "ON HAND", "PRICE", "COST", "CATEGORY"}}
	for _, it := range items {
		rows = append(rows, []string{
			it.Name,
			action.FormatQuantity(it.Quantity),
			action.FormatMoney(it.Price),
			action.FormatMoney(it.CostPrice),
			it.Category,
		})
	}
	return renderTable(rows)
}

// newCatalogAddCommand seeds an item directly, without staging. It is
// for initial setup; day-to-day additions go through stage/resolve.
func newCatalogAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CatalogAddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an item to the catalog directly",
		Long: `Add an item to the catalog without a confirmation step.

Use this for initial setup. Messages like "add 20 kg basmati at 60"
go through stage and resolve instead.

Example:
  tally catalog add "Toor Dal" --quantity 40 --price 95.50 --cost 80`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalogAdd(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Quantity, "quantity", "0", "opening stock")
	cmd.Flags().StringVar(&opts.CostPrice, "cost", "0", "cost price per unit")
	cmd.Flags().StringVar(&opts.Price, "price", "0", "selling price per unit")
	cmd.Flags().StringVar(&opts.Category, "category", "", "category (default general)")

	return cmd
}

func runCatalogAdd(opts *CatalogAddOptions, name string, cmd *cobra.Command) error {
	in := ledger.NewItem{Owner: opts.Owner, Name: name, Category: opts.Category}
	fields := []struct {
		flag string
		raw  string
		dst  *decimal.Decimal
	}{
		{"quantity", opts.Quantity, &in.Quantity},
		{"cost", opts.CostPrice, &in.CostPrice},
		{"price", opts.Price, &in.Price},
	}
	for _, fl := range fields {
		d, err := decimal.NewFromString(fl.raw)
		if err != nil || d.IsNegative() {
			return NewExitError(ExitCommandError, fmt.Sprintf("--%s must be a non-negative number, got %q", fl.flag, fl.raw))
		}
		*fl.dst = action.Round(d)
	}

	ctx := cmd.Context()
	a, err := openApp(ctx, opts.RootOptions, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	f := opts.formatter(cmd)
	it, err := a.ledger.CreateItem(ctx, in)
	if ledger.IsDuplicateItem(err) {
		msg := fmt.Sprintf("%s is already in the catalog", action.CleanName(name))
		if err := f.Error("DUPLICATE_ITEM", msg, nil); err != nil {
			return err
		}
		return reported(ExitFailure, msg)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to add item", err)
	}
	return f.Success(okStyle.Render(fmt.Sprintf("Added %s (%s on hand)", it.Name, action.FormatQuantity(it.Quantity))), it)
}
