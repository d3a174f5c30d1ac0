// Package scheduler provides the cooperative task scheduler at the heart of
// the Happy Herbs device core.
//
// The scheduler owns a fixed, ordered set of tasks registered once at
// startup. A single control loop calls Tick() repeatedly; per invocation,
// every armed task whose interval has elapsed runs its body exactly once.
// There is no preemption and no background goroutine — task bodies, enable
// predicates, and disable hooks all run to completion on the caller's
// goroutine before the next task is considered.
//
// # Task lifecycle
//
// A task is always in exactly one of three states:
//
//	dormant ──Enable()──▶ armed ──iterations exhausted──▶ retired
//	   ▲                    │                                │
//	   └────Disable()───────┘◀───────────Restart()───────────┘
//
// Enabling runs the task's enable predicate (if any); a false return vetoes
// activation and the task stays dormant without running its disable hook.
// The disable hook runs on every armed→dormant and armed→retired
// transition, which is what makes it safe to pair actuation with it (the
// run-pump task turns the pump on in its predicate and off in its hook).
//
// # Timing
//
// Time is read through the Clock interface so tests can drive the scheduler
// with a virtual clock instead of wall-clock sleeps. A task with a zero
// interval is due on the first Tick after it is armed; otherwise the body
// runs once per full interval elapsed, never more than once per interval,
// with no catch-up for missed intervals.
package scheduler
