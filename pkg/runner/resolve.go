package runner

import (
	"strconv"
	"strings"

	"github.com/aretw0/genie/pkg/domain"
	"github.com/ettle/strcase"
)

// Command is a chat-level instruction that is not an action.
type Command string

const (
	CommandNone  Command = ""
	CommandReset Command = "reset"
	CommandExit  Command = "exit"
)

// ParseCommand recognises reset, exit and quit, case-insensitively.
func ParseCommand(input string) Command {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "reset", "restart":
		return CommandReset
	case "exit", "quit":
		return CommandExit
	}
	return CommandNone
}

// ResolveAction maps a typed line to an offered action. It accepts the
// 1-based position in the list, the action id or the label in any casing
// ("Check Genealogy", "check_genealogy" and "check-genealogy" are equivalent).
func ResolveAction(actions []domain.Action, input string) (domain.Action, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return domain.Action{}, false
	}

	if n, err := strconv.Atoi(input); err == nil {
		if n >= 1 && n <= len(actions) {
			return actions[n-1], true
		}
		return domain.Action{}, false
	}

	for _, a := range actions {
		if a.ID == input {
			return a, true
		}
	}

	key := normalize(input)
	for _, a := range actions {
		if normalize(a.ID) == key || normalize(a.Label) == key {
			return a, true
		}
	}
	return domain.Action{}, false
}

func normalize(s string) string {
	return strcase.ToKebab(strings.TrimSpace(s))
}
