// Package domain contains the core business entities, value objects, and
// validation rules of the task manager: users, the tasks they own, and the
// status and priority enumerations. It is independent of any storage or
// delivery mechanism.
package domain
