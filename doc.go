/*
Package genie is a guided disclosure dialogue engine: a scripted assistant that walks a user
through an investigation by offering a small set of follow-up actions at each turn.

Each turn is a step of a validated script. Entering a step plays back its responses one by one,
each after a simulated latency, and only then offers the step's actions. A terminal step does not
answer; it emits a navigation signal that hands control to the host dashboard.

# Concept

The script (Logic) is separated from the session (State) and from its presentation (Adapters).
Sessions never block: responses are delivered by a cancellable scheduler and every transition is
published as an immutable snapshot, so the same engine drives a terminal chat, an HTTP stream
or an MCP tool server.

# Key Features

  - Deterministic Playback: the same actions always produce the same transcript.
  - Hexagonal Architecture: loaders, schedulers and publishers are ports with swappable adapters.
  - Strict Contracts: scripts are validated as a whole at load time.
  - Safe Reset: a reset invalidates every pending response, stale callbacks can never leak.

# Usage

	eng, err := genie.New("") // built-in quality investigation
	if err != nil {
		log.Fatal(err)
	}

	sess := eng.NewSession("session-123",
		genie.WithOnChange(func(s domain.Snapshot) {
			log.Println(s.Phase, len(s.Transcript))
		}),
	)
	if _, err := sess.Initialize(ctx); err != nil {
		log.Fatal(err)
	}

	// Later, once the snapshot is idle:
	_, err = sess.Submit(ctx, "check-genealogy")
*/
package genie
