// Package service contains the application use cases of the task manager.
// It orchestrates domain objects and the repositories defined in
// internal/store.
//
// Key components:
//
//  1. UserService: user registration with unique username and email,
//     lookups, search, and deletion that cascades to the user's tasks.
//  2. TaskService: task creation and update with owner checks, the task
//     queries and the count and stats operations.
//  3. OwnerLocks: a keyed mutex shared by both services so that no task can
//     be attached to a user while that user is being deleted.
//
// Errors follow a small taxonomy: *domain.ValidationError for bad input,
// *NotFoundError and *DuplicateError for missing or conflicting entities, and
// *ServiceError (matching ErrInternal) for unexpected storage failures.
// Every successful mutation emits a domain event through an
// events.EventEmitter.
package service
