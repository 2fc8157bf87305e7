package runner

import (
	"strings"
	"testing"

	"github.com/aretw0/genie/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeInput_Choices(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"action id", "check-genealogy", "check-genealogy"},
		{"position", "2\r\n", "2"},
		{"label with padding", "  Compare   with control batches  ", "Compare with control batches"},
		{"label with tab", "View\tHSI chart", "View HSI chart"},
		{"coloured id", "\x1b[1mroot-cause\x1b[0m", "root-cause"},
		{"trailing null", "reset\x00", "reset"},
		{"blank", " \t ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeInput(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizeInput_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
		err   error
	}{
		{"two choices", "check-genealogy\nroot-cause", ErrMultiline},
		{"carriage return inside", "reset\rexit", ErrMultiline},
		{"invalid utf8", string([]byte{0xff, 0xfe}), ErrInvalidUTF8},
		{"longer than any label", strings.Repeat("a", MaxInputLength+1), ErrInputTooLong},
		{"oversized payload", strings.Repeat("é", 4*MaxInputLength), ErrInputTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SanitizeInput(tt.input)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	got, err := SanitizeInput(strings.Repeat("a", MaxInputLength))
	require.NoError(t, err)
	assert.Len(t, got, MaxInputLength)
}

func TestSanitizeInput_FeedsResolution(t *testing.T) {
	offered := []domain.Action{
		{ID: "check-genealogy", Label: "Check genealogy", Target: "genealogy"},
		{ID: "compare-batches", Label: "Compare with control batches", Target: "comparison"},
	}

	for input, want := range map[string]string{
		"\x1b[32m1\x1b[0m":                   "check-genealogy",
		"compare   with CONTROL batches\r\n": "compare-batches",
		"\tcheck_genealogy ":                 "check-genealogy",
	} {
		clean, err := SanitizeInput(input)
		require.NoError(t, err, input)
		action, ok := ResolveAction(offered, clean)
		require.True(t, ok, "%q resolved from %q", clean, input)
		assert.Equal(t, want, action.ID)
	}

	clean, err := SanitizeInput("  RESET ")
	require.NoError(t, err)
	assert.Equal(t, CommandReset, ParseCommand(clean))
}
