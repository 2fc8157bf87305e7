/*
Package domain contains the core domain models of the Genie dialogue engine.

It defines the entities of the guided disclosure state machine: the Script that
describes every assistant turn, the transcript the session produces and the
immutable Snapshot handed to presentation adapters. This package is kept pure
and free of I/O, timers or persistence.

# Key Entities

  - Script / Step: one node of the dialogue graph (an assistant turn and its follow-ups).
  - Action: a user-selectable follow-up that moves the session to another step.
  - Response: one assistant message of a step, optionally carrying a Table or Chart.
  - Entry: an append-only transcript record (user or assistant).
  - Snapshot: the read-only view of a session after every transition.
  - Navigation: the signal emitted when a terminal step hands control back to the shell.
*/
package domain
