package scheduler

import "time"

// Forever marks a task that never exhausts its iteration count.
const Forever = -1

// State is the lifecycle state of a task.
type State string

// Task lifecycle states.
const (
	// StateDormant means the task is registered but not scheduled to run.
	StateDormant State = "dormant"

	// StateArmed means the task is waiting for its interval to elapse.
	StateArmed State = "armed"

	// StateRetired means the task exhausted its iteration count and was
	// disabled. A retired task can be re-armed with Restart or Enable.
	StateRetired State = "retired"
)

// Config describes a task at registration time. The configuration is fixed
// for the task's lifetime; Restart always resets to these values.
type Config struct {
	// Name identifies the task in logs. Required, unique per scheduler.
	Name string

	// Interval is the time between body executions. Zero means the task is
	// due as soon as possible after being armed.
	Interval time.Duration

	// Iterations is the number of times the body runs before the task
	// retires. Use Forever for unbounded tasks. Zero is rejected.
	Iterations int

	// OnEnable, if set, is evaluated when the task is armed. Returning
	// false vetoes activation: the task stays dormant and OnDisable is
	// not invoked for that attempt.
	OnEnable func() bool

	// Run is the task body, executed each time the task becomes due.
	// May be nil for tasks whose work lives entirely in OnEnable/OnDisable.
	Run func()

	// OnDisable, if set, runs on every armed→dormant and armed→retired
	// transition, including after the last iteration completes.
	OnDisable func()
}

// Task is a unit of schedulable work owned by a Scheduler. Tasks are created
// once via Scheduler.Add and never destroyed; they toggle between states for
// the process lifetime.
//
// Task is not safe for concurrent use: all methods must be called from the
// same goroutine that drives Scheduler.Tick.
type Task struct {
	cfg       Config
	sched     *Scheduler
	state     State
	remaining int
	dueAt     time.Time

	// gen increments on every arm so Tick can detect a task that was
	// restarted or disabled from within its own body.
	gen uint64
}

// Name returns the task's registered name.
func (t *Task) Name() string { return t.cfg.Name }

// State returns the task's current lifecycle state.
func (t *Task) State() State { return t.state }

// Enable arms the task if it is dormant or retired. The enable predicate,
// when present, may veto activation; a vetoed task stays dormant and its
// disable hook does not run. Enabling an already armed task is a no-op.
//
// Returns true if the task is armed after the call.
func (t *Task) Enable() bool {
	return t.enableAfter(t.cfg.Interval)
}

// Disable transitions an armed task to dormant and runs the disable hook.
// Disabling a dormant or retired task is a no-op.
//
// Returns true if a transition occurred.
func (t *Task) Disable() bool {
	if t.state != StateArmed {
		return false
	}
	t.state = StateDormant
	if t.cfg.OnDisable != nil {
		t.cfg.OnDisable()
	}
	return true
}

// Restart is equivalent to Disable followed by Enable: the disable hook runs
// if the task was armed, the enable predicate is re-evaluated, and the
// elapsed-time counter and iteration count reset to the original
// configuration.
//
// Returns true if the task is armed after the call.
func (t *Task) Restart() bool {
	t.Disable()
	return t.Enable()
}

// RestartDelayed behaves like Restart but the first execution is deferred by
// delay instead of the configured interval. Subsequent iterations use the
// normal interval.
func (t *Task) RestartDelayed(delay time.Duration) bool {
	t.Disable()
	return t.enableAfter(delay)
}

// enableAfter arms the task with the first execution due after wait.
func (t *Task) enableAfter(wait time.Duration) bool {
	if t.state == StateArmed {
		return true
	}
	if t.cfg.OnEnable != nil && !t.cfg.OnEnable() {
		// Vetoed activation: stay dormant, disable hook intentionally
		// skipped.
		t.state = StateDormant
		return false
	}
	t.state = StateArmed
	t.remaining = t.cfg.Iterations
	t.dueAt = t.sched.clock.Now().Add(wait)
	t.gen++
	return true
}

// retire marks the task as iteration-exhausted and runs the disable hook.
func (t *Task) retire() {
	t.state = StateRetired
	if t.cfg.OnDisable != nil {
		t.cfg.OnDisable()
	}
}
