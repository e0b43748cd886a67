// Package orchestrator implements the two-phase confirmation protocol.
//
// Stage turns free text into a staged action: classify, validate, mint an
// id, store it, and return a localized preview. Nothing is written to the
// ledger. Resolve later takes the staged action out of the pending store
// in one atomic step and either discards it (cancel) or hands it to the
// executor (confirm).
//
// Per id the lifecycle is:
//
//	[none] --Stage--> [STAGED] --Resolve(yes)--> [EXECUTED]
//	                     |    \--Resolve(no)---> [CANCELLED]
//	                     \------TTL / sweep----> [EXPIRED]
//
// The three terminal transitions are mutually exclusive: whichever removes
// the entry first wins, and every later Resolve of that id is NotFound.
// A Resolve by someone other than the owner is Forbidden and leaves the
// entry in place.
package orchestrator
