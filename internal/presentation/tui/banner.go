package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Genie ASCII banner followed by the version.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	// Teal to cyan, matching the dashboard accent
	lines := []struct {
		text  string
		color string
	}{
		{"   ____            _      ", "#0d9488"},
		{"  / ___| ___ _ __ (_) ___ ", "#0f766e"},
		{" | |  _ / _ \\ '_ \\| |/ _ \\", "#14b8a6"},
		{" | |_| |  __/ | | | |  __/", "#2dd4bf"},
		{"  \\____|\\___|_| |_|_|\\___|", "#5eead4"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	if v := strings.TrimSpace(version); v != "" {
		fmt.Fprintln(w, out.String("  quality investigation assistant v"+v).Faint())
	}
	fmt.Fprintln(w)
}
