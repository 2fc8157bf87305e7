package script

import (
	"fmt"

	"github.com/aretw0/genie/pkg/domain"
)

// Validate returns every structural problem of the definition, in a stable order.
// An empty result means the definition can be loaded.
func Validate(def domain.Script) []domain.Problem {
	var problems []domain.Problem
	add := func(stepID, format string, args ...any) {
		problems = append(problems, domain.Problem{StepID: stepID, Reason: fmt.Sprintf(format, args...)})
	}

	if len(def.Steps) == 0 {
		add("", "script has no steps")
		return problems
	}

	index := make(map[string]domain.Step, len(def.Steps))
	for i, step := range def.Steps {
		if step.ID == "" {
			add("", "step #%d has an empty id", i+1)
			continue
		}
		if _, dup := index[step.ID]; dup {
			add(step.ID, "duplicate step id")
			continue
		}
		index[step.ID] = step
	}

	initialID := def.InitialStepID()
	initial, hasInitial := index[initialID]
	if !hasInitial {
		add("", "initial step %q is not defined", initialID)
	} else if len(initial.Predecessors) > 0 && !contains(initial.Predecessors, domain.InitialPredecessor) {
		add(initialID, "initial step must list %q among its predecessors", domain.InitialPredecessor)
	}

	for _, step := range def.Steps {
		if step.ID == "" || index[step.ID].ID != step.ID {
			continue
		}
		validatePredecessors(step, initialID, index, add)
		validateActions(step, index, add)
		validateResponses(step, add)
	}

	if hasInitial {
		reached := reachable(initialID, index)
		for _, step := range def.Steps {
			if step.ID == "" {
				continue
			}
			if _, ok := index[step.ID]; ok && !reached[step.ID] {
				add(step.ID, "unreachable from initial step %q", initialID)
			}
		}
	}

	return dedupe(problems)
}

type addFunc func(stepID, format string, args ...any)

func validatePredecessors(step domain.Step, initialID string, index map[string]domain.Step, add addFunc) {
	for _, p := range step.Predecessors {
		if p == domain.InitialPredecessor && step.ID == initialID {
			continue
		}
		if _, ok := index[p]; !ok {
			add(step.ID, "predecessor %q is not a step", p)
		}
	}
}

func validateActions(step domain.Step, index map[string]domain.Step, add addFunc) {
	if step.IsTerminal() && len(step.Actions) > 0 {
		add(step.ID, "terminal step cannot declare actions")
	}

	seen := make(map[string]bool, len(step.Actions))
	for _, a := range step.Actions {
		if a.ID == "" {
			add(step.ID, "action with label %q has an empty id", a.Label)
			continue
		}
		if seen[a.ID] {
			add(step.ID, "duplicate action id %q", a.ID)
			continue
		}
		seen[a.ID] = true

		if a.Label == "" {
			add(step.ID, "action %q has an empty label", a.ID)
		}

		target, ok := index[a.Target]
		if !ok {
			add(step.ID, "action %q targets unknown step %q", a.ID, a.Target)
			continue
		}
		if !target.AllowsFrom(step.ID) {
			add(step.ID, "action %q leads to %q which does not list %q as a predecessor", a.ID, a.Target, step.ID)
		}
	}
}

func validateResponses(step domain.Step, add addFunc) {
	if step.IsTerminal() {
		if len(step.Responses) > 0 {
			add(step.ID, "terminal step cannot declare responses")
		}
		return
	}
	if len(step.Responses) == 0 {
		add(step.ID, "step has no responses")
	}

	for i, r := range step.Responses {
		if r.Delay < 0 {
			add(step.ID, "response #%d has a negative delay", i+1)
		}
		if r.Text == "" && r.Attachment == nil {
			add(step.ID, "response #%d is empty", i+1)
		}
		if r.Attachment != nil {
			validateAttachment(step.ID, i+1, r.Attachment, add)
		}
	}
}

func validateAttachment(stepID string, n int, a *domain.Attachment, add addFunc) {
	switch {
	case a.Table != nil && a.Chart != nil:
		add(stepID, "response #%d attachment has both a table and a chart", n)
	case a.Table == nil && a.Chart == nil:
		add(stepID, "response #%d attachment is empty", n)
	case a.Table != nil:
		if len(a.Table.Columns) == 0 {
			add(stepID, "response #%d table has no columns", n)
		}
		cols := make(map[string]bool, len(a.Table.Columns))
		for _, c := range a.Table.Columns {
			cols[c] = true
		}
		for ri, row := range a.Table.Rows {
			for key := range row {
				if !cols[key] {
					add(stepID, "response #%d table row #%d names unknown column %q", n, ri+1, key)
				}
			}
		}
	default:
		if a.Chart.Kind != domain.ChartBar && a.Chart.Kind != domain.ChartLine {
			add(stepID, "response #%d chart kind %q is not supported", n, a.Chart.Kind)
		}
		if len(a.Chart.Series) == 0 {
			add(stepID, "response #%d chart has no series", n)
		}
	}
}

// reachable walks action targets breadth-first from the initial step.
func reachable(initialID string, index map[string]domain.Step) map[string]bool {
	visited := map[string]bool{initialID: true}
	queue := []string{initialID}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, a := range index[current].Actions {
			if _, ok := index[a.Target]; !ok || visited[a.Target] {
				continue
			}
			visited[a.Target] = true
			queue = append(queue, a.Target)
		}
	}
	return visited
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func dedupe(problems []domain.Problem) []domain.Problem {
	seen := make(map[domain.Problem]bool, len(problems))
	out := problems[:0]
	for _, p := range problems {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
