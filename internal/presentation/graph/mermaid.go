package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/genie/pkg/domain"
	"github.com/ettle/strcase"
)

// GraphOverlay contains session state to visualize on the graph.
type GraphOverlay struct {
	VisitedSteps []string
	CurrentStep  string
}

// OverlayFromSnapshot marks the steps a session went through.
func OverlayFromSnapshot(snap domain.Snapshot) *GraphOverlay {
	overlay := &GraphOverlay{CurrentStep: snap.StepID}
	for _, e := range snap.Transcript {
		overlay.VisitedSteps = append(overlay.VisitedSteps, e.StepID)
	}
	return overlay
}

// GenerateMermaid produces a Mermaid flowchart syntax string from a script.
// It applies semantic styling:
// - Initial: ((Circle))
// - Terminal (navigation): [[Subroutine]]
// - Attachment-bearing: [/Parallelogram/]
// - Default: [Rectangle]
// Edges are labeled with the action label.
// It also applies overlay styles (Visited/Current) if provided.
func GenerateMermaid(s domain.Script, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	initial := s.InitialStepID()
	for _, step := range s.Steps {
		safeID := sanitizeMermaidID(step.ID)

		opener, closer := "[", "]"
		switch {
		case step.ID == initial:
			opener, closer = "((", "))"
		case step.IsTerminal():
			opener, closer = "[[", "]]"
		case hasAttachment(step):
			opener, closer = "[/", "/]"
		}

		label := step.ID
		if step.IsTerminal() {
			label = fmt.Sprintf("%s <br/> ➜ %s", step.ID, step.Navigate)
		} else if n := len(step.Responses); n > 1 {
			label = fmt.Sprintf("%s <br/> 💬 %d", step.ID, n)
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, label, closer))

		for _, a := range step.Actions {
			safeTo := sanitizeMermaidID(a.Target)
			safeLabel := strings.ReplaceAll(a.Label, "\"", "'")
			sb.WriteString(fmt.Sprintf("    %s -- \"%s\" --> %s\n", safeID, safeLabel, safeTo))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedSteps {
			safeID := sanitizeMermaidID(id)
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
			}
		}

		if overlay.CurrentStep != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.CurrentStep)))
		}
	}

	return sb.String()
}

func hasAttachment(step domain.Step) bool {
	for _, r := range step.Responses {
		if r.Attachment != nil {
			return true
		}
	}
	return false
}

func sanitizeMermaidID(id string) string {
	s := strings.NewReplacer("/", "_", "\\", "_").Replace(id)
	return strcase.ToSnake(s)
}
