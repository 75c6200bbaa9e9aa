// Package events provides domain events and a simple in-process dispatcher.
//
// Services emit an Event after every successful mutation (user created, task
// deleted, cascade discrepancy, ...) without knowing which handlers consume it.
// Handlers such as LogHandler and the metrics recorder observe the core without
// influencing its results.
package events
