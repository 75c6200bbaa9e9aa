// Package store defines the persistence interfaces for users and tasks and
// the error taxonomy every implementation reports through. Services depend on
// these interfaces only; the in-memory implementation lives in
// internal/platform/memory.
package store
