/*
Package dsl provides a Go DSL for programmatically constructing Genie scripts.

It allows developers to define investigation dialogues using a type-safe, fluent builder
instead of YAML files. This is particularly useful for unit testing and for embedding
small scripts directly into a binary.

Example usage:

	b := dsl.New("triage")

	b.Step("initial").
		After(domain.InitialPredecessor).
		Say(time.Second, "Three lots are flagged this week.").
		Action("inspect", "Inspect the lots", "lots")

	b.Step("lots").
		After("initial").
		Say(1200*time.Millisecond, "Here they are.").
		Table("SELECT lot, hsi FROM lots", []string{"lot", "hsi"},
			dsl.Row{"lot": "#1", "hsi": 0.5}).
		Action("escalate", "Escalate", "done")

	b.Step("done").Navigate("engineer")

	loader, err := b.Build()
	// ... pass loader to genie.New("", genie.WithLoader(loader))
*/
package dsl
