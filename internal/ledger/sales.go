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

// RecordSale records a sale and takes its quantities out of stock in one
// transaction. Every line is resolved and every item's stock is checked
// before anything is written; a failure on any line leaves the catalog
// and the sales journal untouched.
//
// Lines naming the same item are checked against their combined quantity.
func (s *SQLStore) RecordSale(ctx context.Context, owner string, in NewSale) (Sale, error) {
	if len(in.Lines) == 0 {
		return Sale{}, errors.New("record sale: no lines")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Sale{}, fmt.Errorf("record sale: %w", err)
	}
	defer rollback(tx)

	catalog, err := s.loadItems(ctx, tx, owner, true)
	if err != nil {
		return Sale{}, fmt.Errorf("record sale: %w", err)
	}

	// Resolve every line first.
	lines := make([]SaleLine, len(in.Lines))
	byID := make(map[string]Item)
	requested := make(map[string]decimal.Decimal)
	var order []string
	for i, l := range in.Lines {
		it, err := matchItem(catalog, l.Name)
		if err != nil {
			return Sale{}, err
		}
		lines[i] = SaleLine{
			ItemID:    it.ID,
			Name:      it.Name,
			Quantity:  action.Round(l.Quantity),
			Price:     action.Round(l.Price),
			CostPrice: it.CostPrice,
		}
		if _, seen := byID[it.ID]; !seen {
			byID[it.ID] = it
			order = append(order, it.ID)
		}
		requested[it.ID] = requested[it.ID].Add(lines[i].Quantity)
	}

	// Then check every item's stock.
	for _, id := range order {
		it := byID[id]
		if it.Quantity.LessThan(requested[id]) {
			return Sale{}, &ItemError{
				Err:       ErrInsufficientStock,
				Item:      it.Name,
				Available: it.Quantity,
				Requested: requested[id],
			}
		}
	}

	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(action.Round(l.Quantity.Mul(l.Price)))
	}

	payment := strings.TrimSpace(in.PaymentMethod)
	if payment == "" {
		payment = action.DefaultPaymentMethod
	}
	now, ms := s.timestamp()
	sale := Sale{
		ID:            s.newID(),
		Owner:         owner,
		Lines:         lines,
		Total:         action.Round(total),
		PaymentMethod: payment,
		Customer:      strings.TrimSpace(in.Customer),
		CreatedAt:     now,
	}

	_, err = tx.ExecContext(ctx, s.rebind(`
		INSERT INTO sales (id, owner, total, payment_method, customer, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`), sale.ID, owner, dec(sale.Total), sale.PaymentMethod, sale.Customer, ms)
	if err != nil {
		return Sale{}, fmt.Errorf("record sale: insert sale: %w", err)
	}

	for i, l := range lines {
		_, err = tx.ExecContext(ctx, s.rebind(`
			INSERT INTO sale_lines (sale_id, line_no, item_id, name, quantity, price, cost_price)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`), sale.ID, i, l.ItemID, l.Name, dec(l.Quantity), dec(l.Price), dec(l.CostPrice))
		if err != nil {
			return Sale{}, fmt.Errorf("record sale: insert line %d: %w", i, err)
		}
	}

	for _, id := range order {
		it := byID[id]
		remaining := it.Quantity.Sub(requested[id])
		res, err := tx.ExecContext(ctx, s.rebind(`
			UPDATE items SET quantity = ?, updated_at = ?
			WHERE id = ? AND owner = ? AND quantity = ?
		`), dec(remaining), ms, id, owner, dec(it.Quantity))
		if err != nil {
			return Sale{}, fmt.Errorf("record sale: decrement %q: %w", it.Name, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return Sale{}, fmt.Errorf("record sale: decrement %q: %w", it.Name, err)
		}
		if n == 0 {
			// Stock moved between the read and the write.
			return Sale{}, &ItemError{
				Err:       ErrInsufficientStock,
				Item:      it.Name,
				Available: it.Quantity,
				Requested: requested[id],
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return Sale{}, fmt.Errorf("record sale: commit: %w", err)
	}
	return sale, nil
}

// ListSales returns the owner's sales, oldest first, with their lines.
func (s *SQLStore) ListSales(ctx context.Context, owner string) ([]Sale, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, owner, total, payment_method, customer, created_at
		FROM sales WHERE owner = ? ORDER BY created_at, id
	`), owner)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}

	var sales []Sale
	for rows.Next() {
		sale, err := scanSale(rows.Scan)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("list sales: %w", err)
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("list sales: %w", err)
	}
	rows.Close()

	// Lines are read after the cursor closes: SQLite runs on one connection.
	for i := range sales {
		if sales[i].Lines, err = s.saleLines(ctx, sales[i].ID); err != nil {
			return nil, fmt.Errorf("list sales: %w", err)
		}
	}
	return sales, nil
}

// GetSale returns one sale of owner.
func (s *SQLStore) GetSale(ctx context.Context, owner, id string) (Sale, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT id, owner, total, payment_method, customer, created_at
		FROM sales WHERE owner = ? AND id = ?
	`), owner, id)
	sale, err := scanSale(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Sale{}, fmt.Errorf("get sale %s: %w", id, ErrSaleNotFound)
	}
	if err != nil {
		return Sale{}, fmt.Errorf("get sale %s: %w", id, err)
	}
	if sale.Lines, err = s.saleLines(ctx, id); err != nil {
		return Sale{}, fmt.Errorf("get sale %s: %w", id, err)
	}
	return sale, nil
}

func scanSale(scan func(dest ...any) error) (Sale, error) {
	var (
		sale    Sale
		created int64
	)
	if err := scan(&sale.ID, &sale.Owner, &sale.Total, &sale.PaymentMethod, &sale.Customer, &created); err != nil {
		return Sale{}, err
	}
	sale.CreatedAt = fromMillis(created)
	return sale, nil
}

func (s *SQLStore) saleLines(ctx context.Context, saleID string) ([]SaleLine, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT item_id, name, quantity, price, cost_price
		FROM sale_lines WHERE sale_id = ? ORDER BY line_no
	`), saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []SaleLine
	for rows.Next() {
		var l SaleLine
		if err := rows.Scan(&l.ItemID, &l.Name, &l.Quantity, &l.Price, &l.CostPrice); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}
