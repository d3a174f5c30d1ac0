// Package automation wires the fixed task set of the Happy Herbs device
// core: connection upkeep, telemetry cadence, and the threshold rules that
// drive the lamp and the water pump.
//
// The task set is fixed at startup — there is no dynamic registration. Each
// task captures exactly the collaborators it needs (device state, sync
// service, sibling tasks); nothing is looked up through globals.
//
// # Task set
//
//	service-loop           immediate, forever   service inbound messages while connected
//	reconnect              fixed cadence        single connect attempt while disconnected
//	shadow-publish         one-shot, immediate  gated by Connected(); re-armed to request "publish now"
//	measurements-publish   one-shot, immediate  gated by Connected()
//	periodic-measurements  forever              re-arms measurements-publish
//	light-rule             forever              off-then-test lamp policy
//	moisture-rule          forever              re-arms pump-dose below threshold (off by default)
//	pump-dose              one-shot             interval is the watering dose length
//
// Re-arming the publish one-shots is how any part of the system requests a
// publish: the connectivity gate lives in the task's enable predicate, so
// producers of a state change never need to care whether the device is
// online.
//
// The pump-dose task is the only duration-bounded actuation. Its enable
// predicate turns the pump on and its disable hook turns the pump off; the
// scheduler guarantees the hook runs when the single iteration exhausts, so
// a started dose always ends.
package automation
