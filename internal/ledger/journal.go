package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/tally/internal/action"
)

// JournalEntry is one staged action as recorded at staging time, joined
// with its resolution when there is one. An entry with no resolution was
// either still pending when read or expired unresolved.
type JournalEntry struct {
	Action     action.Staged `json:"action"`
	Outcome    string        `json:"outcome,omitempty"`
	Code       string        `json:"code,omitempty"`
	ResolvedAt time.Time     `json:"resolved_at,omitzero"`
}

// Resolved reports whether a resolution was recorded for the entry.
func (e JournalEntry) Resolved() bool {
	return e.Outcome != ""
}

// RecordStaged writes st to the journal.
// Uses ON CONFLICT(id) DO NOTHING, so recording the same action twice is a no-op.
func (s *SQLStore) RecordStaged(ctx context.Context, st action.Staged) error {
	body, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("record staged %s: %w", st.ID, err)
	}

	_, err = s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO staged_actions
		(id, owner, kind, locale, source_text, confidence, payload, staged_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`),
		st.ID,
		st.Owner,
		st.Kind().String(),
		st.Locale,
		st.SourceText,
		st.Confidence,
		string(body),
		st.IssuedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("record staged %s: %w", st.ID, err)
	}
	return nil
}

// RecordResolution writes how the staged action id ended.
// Each action has at most one resolution: a second write for the same id
// is silently ignored. The staged row must already exist.
func (s *SQLStore) RecordResolution(ctx context.Context, id, outcome, code string) error {
	_, ms := s.timestamp()
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO resolutions (action_id, outcome, code, resolved_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(action_id) DO NOTHING
	`), id, outcome, code, ms)
	if err != nil {
		return fmt.Errorf("record resolution %s: %w", id, err)
	}
	return nil
}

// ListJournal returns the owner's journal, newest first. A positive limit
// caps the number of entries.
func (s *SQLStore) ListJournal(ctx context.Context, owner string, limit int) ([]JournalEntry, error) {
	query := `
		SELECT a.payload, r.outcome, r.code, r.resolved_at
		FROM staged_actions a
		LEFT JOIN resolutions r ON r.action_id = a.id
		WHERE a.owner = ?
		ORDER BY a.staged_at DESC, a.id DESC`
	args := []any{owner}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list journal: %w", err)
	}
	defer rows.Close()

	var out []JournalEntry
	for rows.Next() {
		entry, err := scanJournalEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("list journal: %w", err)
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list journal: %w", err)
	}
	return out, nil
}

func scanJournalEntry(rows *sql.Rows) (JournalEntry, error) {
	var (
		body       string
		outcome    sql.NullString
		code       sql.NullString
		resolvedAt sql.NullInt64
	)
	if err := rows.Scan(&body, &outcome, &code, &resolvedAt); err != nil {
		return JournalEntry{}, err
	}

	var entry JournalEntry
	if err := json.Unmarshal([]byte(body), &entry.Action); err != nil {
		return JournalEntry{}, fmt.Errorf("decode payload: %w", err)
	}
	entry.Outcome = outcome.String
	entry.Code = code.String
	if resolvedAt.Valid {
		entry.ResolvedAt = fromMillis(resolvedAt.Int64)
	}
	return entry, nil
}
