package runner

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"
)

// MaxInputLength bounds a choice line, in characters. Action ids and labels
// are short; a longer line cannot name an offered action.
const MaxInputLength = 256

var (
	ErrInputTooLong = errors.New("choice is too long")
	ErrInvalidUTF8  = errors.New("choice is not valid UTF-8")
	ErrMultiline    = errors.New("choice spans several lines")
)

// SanitizeInput turns a raw line into a candidate choice for ResolveAction
// or ParseCommand. Terminal escape sequences and control characters are
// removed, surrounding space is trimmed and inner whitespace runs collapse to
// a single space, so "  Compare\twith  control batches\r\n" resolves like the
// label it spells.
func SanitizeInput(input string) (string, error) {
	if len(input) > utf8.UTFMax*MaxInputLength {
		return "", fmt.Errorf("%w: %d bytes", ErrInputTooLong, len(input))
	}
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	input = strings.TrimRight(input, "\r\n")
	if strings.ContainsAny(input, "\r\n") {
		return "", ErrMultiline
	}

	input = ansi.Strip(strings.ReplaceAll(input, "\t", " "))
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	})
	clean := strings.Join(fields, " ")
	if n := utf8.RuneCountInString(clean); n > MaxInputLength {
		return "", fmt.Errorf("%w: %d characters, limit %d", ErrInputTooLong, n, MaxInputLength)
	}
	return clean, nil
}
