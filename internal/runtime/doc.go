// Package runtime implements the session state machine of the dialogue engine.
//
// A Session walks a validated script.Store one step at a time. Responses are
// resolved through cancellable callbacks issued by a ports.Scheduler; every
// callback captures the session generation and is ignored once a Reset or
// Close has advanced it.
//
//	Uninitialized --Initialize--> Busy(initial) --resolved--> Idle(initial)
//	Idle(s) --Submit(a)--> Busy(a.Target) --resolved--> Idle(a.Target)
//	Idle(s) --Submit(a), a.Target terminal--> Idle(a.Target) + Navigation
//	any --Reset--> Uninitialized
package runtime
