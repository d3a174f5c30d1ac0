package scheduler

import (
	"fmt"
	"time"
)

// Clock abstracts time for deterministic testing. The production scheduler
// uses the system clock; tests inject a virtual clock and advance it
// manually between Tick calls.
type Clock interface {
	Now() time.Time
}

// systemClock reads the wall clock.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }

// Logger is the interface for optional task transition logging.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
}

// Scheduler dispatches a fixed set of tasks in registration order.
//
// The scheduler holds no domain knowledge: all side effects happen through
// the bodies, predicates, and hooks supplied at registration. It is
// single-threaded by design — Tick and all Task methods must be called from
// one goroutine, and no locks are taken.
type Scheduler struct {
	clock  Clock
	tasks  []*Task
	byName map[string]*Task
	logger Logger
}

// New creates a scheduler using the given clock. A nil clock defaults to the
// system clock.
func New(clock Clock) *Scheduler {
	if clock == nil {
		clock = systemClock{}
	}
	return &Scheduler{
		clock:  clock,
		byName: make(map[string]*Task),
	}
}

// SetLogger sets a logger for task transition logging. Optional.
func (s *Scheduler) SetLogger(logger Logger) {
	s.logger = logger
}

// Add registers a task with the scheduler. Tasks are dispatched in
// registration order and the order is fixed for the scheduler's lifetime.
// The task starts dormant; call Enable or Restart to arm it.
//
// Returns an error if the configuration is invalid: empty or duplicate
// name, negative interval, or an iteration count of zero.
func (s *Scheduler) Add(cfg Config) (*Task, error) {
	if cfg.Name == "" {
		return nil, ErrEmptyName
	}
	if _, exists := s.byName[cfg.Name]; exists {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateName, cfg.Name)
	}
	if cfg.Interval < 0 {
		return nil, fmt.Errorf("%w: %q", ErrNegativeInterval, cfg.Name)
	}
	if cfg.Iterations == 0 || cfg.Iterations < Forever {
		return nil, fmt.Errorf("%w: %q", ErrZeroIterations, cfg.Name)
	}

	t := &Task{
		cfg:   cfg,
		sched: s,
		state: StateDormant,
	}
	s.tasks = append(s.tasks, t)
	s.byName[cfg.Name] = t
	return t, nil
}

// Lookup returns the task registered under name, or nil if none exists.
func (s *Scheduler) Lookup(name string) *Task {
	return s.byName[name]
}

// TaskCount returns the number of registered tasks.
func (s *Scheduler) TaskCount() int { return len(s.tasks) }

// Tick evaluates every task in registration order and executes the bodies
// of those that are armed and due. Each due task runs at most once per
// Tick; iteration counts decrement monotonically and a task whose count
// reaches zero retires, running its disable hook.
//
// Panics in bodies, predicates, and hooks are deliberately not recovered —
// a misbehaving task must not silently corrupt scheduler bookkeeping.
func (s *Scheduler) Tick() {
	now := s.clock.Now()
	for _, t := range s.tasks {
		if t.state != StateArmed || now.Before(t.dueAt) {
			continue
		}

		gen := t.gen
		if t.cfg.Run != nil {
			t.cfg.Run()
		}

		// The body may have disabled or restarted this task (directly or
		// through another task's hooks). In that case its bookkeeping was
		// already reset and must not be touched here.
		if t.gen != gen || t.state != StateArmed {
			continue
		}

		if t.remaining != Forever {
			t.remaining--
			if t.remaining == 0 {
				if s.logger != nil {
					s.logger.Debug("task retired", "task", t.cfg.Name)
				}
				t.retire()
				continue
			}
		}
		t.dueAt = now.Add(t.cfg.Interval)
	}
}
