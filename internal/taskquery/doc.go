// Package taskquery provides composable read-side predicates over tasks and
// the two deterministic sort orders (recency and priority rank).
package taskquery
