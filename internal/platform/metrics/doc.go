// Package metrics exposes Prometheus metrics for the HTTP surface and the
// domain events of the task manager.
package metrics
