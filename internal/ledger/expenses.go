package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/tally/internal/action"
)

// RecordExpense appends an expense.
func (s *SQLStore) RecordExpense(ctx context.Context, owner string, in NewExpense) (Expense, error) {
	now, ms := s.timestamp()
	exp := Expense{
		ID:          s.newID(),
		Owner:       owner,
		Amount:      action.Round(in.Amount),
		Category:    strings.TrimSpace(in.Category),
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   now,
	}
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO expenses (id, owner, amount, category, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`), exp.ID, owner, dec(exp.Amount), exp.Category, exp.Description, ms)
	if err != nil {
		return Expense{}, fmt.Errorf("record expense: %w", err)
	}
	return exp, nil
}

// ListExpenses returns the owner's expenses, oldest first.
func (s *SQLStore) ListExpenses(ctx context.Context, owner string) ([]Expense, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, owner, amount, category, description, created_at
		FROM expenses WHERE owner = ? ORDER BY created_at, id
	`), owner)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []Expense
	for rows.Next() {
		var (
			e       Expense
			created int64
		)
		if err := rows.Scan(&e.ID, &e.Owner, &e.Amount, &e.Category, &e.Description, &created); err != nil {
			return nil, fmt.Errorf("list expenses: %w", err)
		}
		e.CreatedAt = fromMillis(created)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return out, nil
}
