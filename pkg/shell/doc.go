/*
Package shell holds the state of the dashboard the dialogue engine is embedded into.

The shell owns the active view, the assistant panel, the transient toast raised by engineer
actions and the root cause verdict. It is driven by navigation signals from sessions and by
direct user actions, and never persists anything.
*/
package shell
