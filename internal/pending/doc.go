// Package pending holds staged actions between stage and resolve.
//
// Store is the contract. Its one non-obvious operation is Take: a single
// atomic "check owner, then remove" step. Resolve must use Take rather
// than Get followed by Delete, otherwise two concurrent confirmations of
// the same id could both reach the executor.
//
// Two implementations are provided:
//   - MemoryStore: process-local map guarded by a mutex.
//   - RedisStore: shared across replicas; Take runs as one Lua script.
//
// Entries older than the store's TTL are treated as absent everywhere,
// whether or not the Sweeper has removed them yet.
package pending
