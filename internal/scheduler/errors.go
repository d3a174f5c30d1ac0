package scheduler

import "errors"

// Domain-specific errors for task registration.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrZeroIterations is returned when a task is registered with an
	// iteration count of zero. A task must run at least once or be
	// configured with Forever.
	ErrZeroIterations = errors.New("scheduler: task iterations must be positive or Forever")

	// ErrEmptyName is returned when a task is registered without a name.
	ErrEmptyName = errors.New("scheduler: task name cannot be empty")

	// ErrDuplicateName is returned when a task name is already registered.
	ErrDuplicateName = errors.New("scheduler: task name already registered")

	// ErrNegativeInterval is returned when a task interval is negative.
	ErrNegativeInterval = errors.New("scheduler: task interval cannot be negative")
)
