package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/roach88/tally/internal/action"
)

const itemColumns = `id, owner, name, quantity, cost_price, price, category, updated_at`

func scanItem(scan func(dest ...any) error) (Item, error) {
	var (
		it      Item
		updated int64
	)
	if err := scan(&it.ID, &it.Owner, &it.Name, &it.Quantity, &it.CostPrice, &it.Price, &it.Category, &updated); err != nil {
		return Item{}, err
	}
	it.UpdatedAt = fromMillis(updated)
	return it, nil
}

// loadItems reads every item of owner, ordered by folded name. Inside a
// write transaction lock is set so PostgreSQL holds the rows.
func (s *SQLStore) loadItems(ctx context.Context, q querier, owner string, lock bool) ([]Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE owner = ? ORDER BY folded_name`
	if lock {
		query += s.forUpdate()
	}
	rows, err := q.QueryContext(ctx, s.rebind(query), owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		it, err := scanItem(rows.Scan)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ListItems returns the owner's catalog ordered by name.
func (s *SQLStore) ListItems(ctx context.Context, owner string) ([]Item, error) {
	items, err := s.loadItems(ctx, s.db, owner, false)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// ItemNames returns the owner's catalog names, for classifier context.
func (s *SQLStore) ItemNames(ctx context.Context, owner string) ([]string, error) {
	items, err := s.ListItems(ctx, owner)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}
	return names, nil
}

// FindItem resolves name against the owner's catalog.
func (s *SQLStore) FindItem(ctx context.Context, owner, name string) (Item, error) {
	items, err := s.loadItems(ctx, s.db, owner, false)
	if err != nil {
		return Item{}, fmt.Errorf("find item: %w", err)
	}
	return matchItem(items, name)
}

// matchItem picks the item a name refers to: a case-insensitive exact
// match wins; otherwise the one item whose name contains the query. A
// query naming something longer than any catalog name ("brown rice flour"
// against "rice") never matches. No match, or more than one fuzzy match,
// is ErrItemNotFound.
func matchItem(items []Item, name string) (Item, error) {
	want := action.FoldName(name)
	if want == "" {
		return Item{}, &ItemError{Err: ErrItemNotFound, Item: name}
	}

	var fuzzy []Item
	for _, it := range items {
		got := action.FoldName(it.Name)
		if got == want {
			return it, nil
		}
		if strings.Contains(got, want) {
			fuzzy = append(fuzzy, it)
		}
	}
	if len(fuzzy) == 1 {
		return fuzzy[0], nil
	}
	return Item{}, &ItemError{Err: ErrItemNotFound, Item: action.CleanName(name)}
}

// CreateItem adds a catalog entry. A blank category becomes
// action.DefaultCategory.
func (s *SQLStore) CreateItem(ctx context.Context, in NewItem) (Item, error) {
	name := action.CleanName(in.Name)
	folded := action.FoldName(in.Name)
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = action.DefaultCategory
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Item{}, fmt.Errorf("create item: %w", err)
	}
	defer rollback(tx)

	var exists int
	err = tx.QueryRowContext(ctx,
		s.rebind(`SELECT 1 FROM items WHERE owner = ? AND folded_name = ?`),
		in.Owner, folded,
	).Scan(&exists)
	switch {
	case err == nil:
		return Item{}, &ItemError{Err: ErrDuplicateItem, Item: name}
	case !errors.Is(err, sql.ErrNoRows):
		return Item{}, fmt.Errorf("create item: %w", err)
	}

	now, ms := s.timestamp()
	it := Item{
		ID:        s.newID(),
		Owner:     in.Owner,
		Name:      name,
		Quantity:  action.Round(in.Quantity),
		CostPrice: action.Round(in.CostPrice),
		Price:     action.Round(in.Price),
		Category:  category,
		UpdatedAt: now,
	}
	_, err = tx.ExecContext(ctx, s.rebind(`
		INSERT INTO items
		(id, owner, name, folded_name, quantity, cost_price, price, category, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`),
		it.ID, it.Owner, it.Name, folded,
		dec(it.Quantity), dec(it.CostPrice), dec(it.Price),
		it.Category, ms,
	)
	if err != nil {
		return Item{}, fmt.Errorf("create item: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Item{}, fmt.Errorf("create item: commit: %w", err)
	}
	return it, nil
}

// AdjustItem applies a signed stock delta and/or a new selling price to
// the item name refers to. Stock never goes below zero.
func (s *SQLStore) AdjustItem(ctx context.Context, owner, name string, delta, price *decimal.Decimal) (Item, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Item{}, fmt.Errorf("adjust item: %w", err)
	}
	defer rollback(tx)

	items, err := s.loadItems(ctx, tx, owner, true)
	if err != nil {
		return Item{}, fmt.Errorf("adjust item: %w", err)
	}
	it, err := matchItem(items, name)
	if err != nil {
		return Item{}, err
	}

	updated := it
	if delta != nil {
		updated.Quantity = action.Round(it.Quantity.Add(*delta))
		if updated.Quantity.IsNegative() {
			return Item{}, &ItemError{
				Err:       ErrInsufficientStock,
				Item:      it.Name,
				Available: it.Quantity,
				Requested: action.Round(delta.Neg()),
			}
		}
	}
	if price != nil {
		updated.Price = action.Round(*price)
	}

	now, ms := s.timestamp()
	updated.UpdatedAt = now
	res, err := tx.ExecContext(ctx, s.rebind(`
		UPDATE items SET quantity = ?, price = ?, updated_at = ?
		WHERE id = ? AND owner = ? AND quantity = ?
	`),
		dec(updated.Quantity), dec(updated.Price), ms,
		it.ID, owner, dec(it.Quantity),
	)
	if err != nil {
		return Item{}, fmt.Errorf("adjust item: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return Item{}, fmt.Errorf("adjust item: %w", err)
	} else if n == 0 {
		return Item{}, &ItemError{Err: ErrStockChanged, Item: it.Name}
	}

	if err := tx.Commit(); err != nil {
		return Item{}, fmt.Errorf("adjust item: commit: %w", err)
	}
	return updated, nil
}
