// Package action defines the staged-action data model shared by every
// other package: the closed set of action kinds, their payloads, the
// amount/quantity normalizer and the structural validator.
//
// Payload is a sealed interface. Exactly four types implement it:
// SalePayload, ExpensePayload, InventoryUpdatePayload and
// InventoryAddPayload. Code that switches over payloads (validation,
// message composition, execution) handles all four and treats anything
// else as a programming error.
//
// Validation checks shape only. Whether a sale can actually be filled
// from current stock is decided at execution time by the ledger.
package action
