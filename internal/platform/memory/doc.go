// Package memory provides process-local implementations of the store
// interfaces defined in internal/store. All state lives in maps guarded by
// read-write mutexes and is lost when the process exits.
//
// EntityStore is the generic keyed collection both repositories build on. It
// allocates strictly increasing IDs, stamps timestamps, and hands out copies
// so callers can never mutate stored values in place.
package memory
