// Package harness runs scripted conversations against the full
// stage/resolve pipeline and checks what ends up in the ledger.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: oversell_is_consumed
//	description: "A confirmed sale larger than stock fails and stays consumed"
//	owner: shop-1
//	catalog:
//	  - {name: Milk, quantity: 3, price: 28}
//	replies:
//	  "sold 5 milk": '{"is_action": true, "kind": "add_sale", "payload": {...}}'
//	steps:
//	  - stage: "sold 5 milk"
//	    as: sale
//	    expect: {staged: true, kind: add_sale}
//	  - confirm: sale
//	    expect: {outcome: failed, code: INSUFFICIENT_STOCK}
//	  - confirm: sale
//	    expect: {outcome: not_found}
//	assertions:
//	  - {type: stock, item: Milk, quantity: "3"}
//	  - {type: sales_count, count: 0}
//
// Step kinds:
//
//   - stage: classify and stage the given text; "as" names the staged id
//   - confirm / cancel: resolve a named (or literal) id
//   - advance: move the scenario clock forward by a duration
//   - sweep: run one pending-store sweep
//
// A step's "owner" overrides the scenario owner for that step only.
//
// # Assertion Types
//
//   - stock: an item's on-hand quantity
//   - sales_count, expenses_count: recorded rows for the owner
//   - pending_count: live entries in the pending store
//   - item_exists: a catalog entry exists (or, with absent: true, does not)
//   - journal_count: journaled actions, optionally only those with a given
//     outcome ("unresolved" counts actions that were never consumed)
//
// # Deterministic Execution
//
// Every scenario gets a fresh in-memory SQLite ledger, an in-memory
// pending store, a manual clock starting at testutil.Epoch, sequential
// action ids (act-1, act-2, ...) and a scripted classifier built from
// the scenario's replies. Traces are therefore byte-identical across runs
// and can be compared against golden files.
package harness
