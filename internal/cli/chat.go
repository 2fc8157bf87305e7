package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/genie"
	"github.com/aretw0/genie/internal/presentation/tui"
	"github.com/aretw0/genie/pkg/runner"
	"github.com/aretw0/genie/pkg/shell"
	"github.com/google/uuid"
	"golang.org/x/term"
)

// ChatOptions configures a terminal chat.
type ChatOptions struct {
	SessionID string
	JSON      bool
	Headless  bool
	In        io.Reader
	Out       io.Writer
}

// RunChat drives one session from the terminal. When the dialogue hands off
// to a dashboard view the shell takes over and the chat ends.
func RunChat(ctx context.Context, deps *Deps, opts ChatOptions) error {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.SessionID == "" {
		opts.SessionID = uuid.NewString()
	}
	quiet := opts.JSON || opts.Headless

	if !quiet {
		tui.PrintBanner(opts.Out, genie.Version)
	}

	var handler runner.IOHandler
	if opts.JSON {
		handler = runner.NewJSONHandler(opts.In, opts.Out)
	} else {
		renderer := runner.ContentRenderer(tui.PlainRenderer)
		if !quiet && isTerminal(opts.Out) {
			renderer = tui.NewRenderer()
		}
		handler = runner.NewTextHandler(opts.In, opts.Out, runner.WithTextHandlerRenderer(renderer))
	}

	r := runner.NewRunner(
		runner.WithLogger(deps.Logger),
		runner.WithInputHandler(handler),
		runner.WithHeadless(quiet),
	)
	r.Output = opts.Out

	nav, err := r.Run(ctx, deps.Engine, opts.SessionID)
	if err != nil {
		return err
	}
	if nav == nil {
		return nil
	}

	sh := shell.New(shell.WithLogger(deps.Logger))
	if err := sh.HandleNavigation(*nav); err != nil {
		return fmt.Errorf("dashboard handoff failed: %w", err)
	}
	if !opts.JSON {
		printShell(opts.Out, sh.State())
	}
	return nil
}

func printShell(w io.Writer, state shell.State) {
	fmt.Fprintf(w, "\n[Dashboard] %s view is now active\n", state.View)
	if state.View == shell.ViewEngineer {
		fmt.Fprintf(w, "[Dashboard] Available actions: %s\n", strings.Join(shell.Actions(), ", "))
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
