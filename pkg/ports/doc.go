/*
Package ports defines the driven ports (interfaces) for the Genie dialogue engine.

These interfaces decouple the core logic from external implementations, allowing
the engine to work with various script sources, clocks, and fan-out transports.

# Key Interfaces

  - ScriptLoader: Responsible for loading the Script definition (e.g., from a file, Loam or Memory).
  - Scheduler: Issues cancellable delayed callbacks used to simulate response latency.
  - Publisher: Fans out serialized snapshot updates to every subscriber of a session.
*/
package ports
