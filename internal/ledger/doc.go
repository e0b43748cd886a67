// Package ledger is the record store behind executed actions: the catalog
// of items with their on-hand stock, the append-only sales journal, and
// the expense journal.
//
// SQLStore implements RecordStore over database/sql with two dialects:
// SQLite (the default, single writer, WAL) and PostgreSQL. Every record
// is scoped to an owner; no query crosses owners.
//
// Amounts and quantities are stored as fixed two-place decimal strings so
// values read back compare exactly with values written. Stock changes are
// compare-and-set updates on the previously read quantity, which keeps
// concurrent decrements of the same item from losing updates.
//
// The same database carries a journal of staged actions and their
// resolutions. Journal rows are insert-only and idempotent, so a retried
// write never duplicates or rewrites history.
package ledger
