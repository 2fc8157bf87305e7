/*
Package runner implements the terminal chat loop for the Genie engine.

It acts as the bridge between a session and a terminal or a pipe. The runner renders every
snapshot the session publishes through a pluggable handler, prompts once the assistant is
idle, resolves the typed line to one of the offered actions and submits it. A navigation
signal ends the chat and is returned to the caller, which hands it to the dashboard shell.

# Key Components

  - Runner: the loop, with OS signal handling (Ctrl+C ends the chat cleanly).
  - IOHandler: decouples how snapshots are shown and input is read.
  - TextHandler: interactive CLI usage with markdown rendering.
  - JSONHandler: JSON-lines for automation.

# Usage

	r := runner.NewRunner(
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)

	nav, err := r.Run(ctx, engine, "user-1")
	if err != nil {
		log.Fatal(err)
	}
*/
package runner
