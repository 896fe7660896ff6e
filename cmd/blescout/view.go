package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/srg/blescout/scanner"
)

var viewCmd = newViewCommand()

// viewAction is a key press decoded into an intent.
type viewAction int

const (
	actionNone viewAction = iota
	actionScan
	actionClear
	actionQuit
)

func newViewCommand() *cobra.Command {
	var flags scanFlags

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Interactive beacon view",
		Long: `View opens an interactive terminal display. Press u (or arrow up) to
run a scan, d (or arrow down) to clear the results and q to quit. The
display refreshes continuously; a scan started while one is already in
flight is ignored.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			logger, err := configureLogger(cmd, "verbose")
			if err != nil {
				return err
			}

			opts, err := flags.sessionOptions(logger)
			if err != nil {
				return err
			}

			cfg := flags.buildConfig()
			coord := scanner.NewCoordinator(cfg, logger, opts...)
			defer coord.Shutdown()

			fd := int(os.Stdin.Fd())
			oldState, err := term.MakeRaw(fd)
			if err != nil {
				return err
			}
			defer term.Restore(fd, oldState)

			return runView(cmd.Context(), coord, os.Stdin, cmd.OutOrStdout(), cfg.TopN)
		},
	}

	registerScanFlags(cmd, &flags)
	return cmd
}

// runView drives the render loop while a reader goroutine feeds key
// presses in. Rendering never blocks on input: the registry and status
// are polled every frame.
func runView(ctx context.Context, coord *scanner.Coordinator, in io.Reader, out io.Writer, top int) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	actions := make(chan viewAction, 8)
	go readKeys(ctx, in, actions)

	renderer := newFrameRenderer(out)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	renderer.Render(coord.Status(), coord.Registry().TopN(top))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case action := <-actions:
			switch action {
			case actionScan:
				// RequestScan refuses overlapping scans itself, so firing
				// on every press is safe.
				go coord.RequestScan(ctx)
			case actionClear:
				coord.ClearResults()
			case actionQuit:
				return nil
			}
		case <-ticker.C:
		}
		renderer.Render(coord.Status(), coord.Registry().TopN(top))
	}
}

// readKeys decodes raw-mode input into actions until the reader fails or
// the context ends. Arrow keys arrive as 3-byte CSI sequences.
func readKeys(ctx context.Context, in io.Reader, actions chan<- viewAction) {
	buf := make([]byte, 16)
	for {
		n, err := in.Read(buf)
		if err != nil {
			return
		}
		for _, action := range decodeKeys(buf[:n]) {
			select {
			case actions <- action:
			case <-ctx.Done():
				return
			}
		}
	}
}

func decodeKeys(b []byte) []viewAction {
	var actions []viewAction
	for i := 0; i < len(b); i++ {
		switch b[i] {
		case 'u', 'U':
			actions = append(actions, actionScan)
		case 'd', 'D':
			actions = append(actions, actionClear)
		case 'q', 'Q', 0x03: // Ctrl-C
			actions = append(actions, actionQuit)
		case 0x1b: // ESC, possibly an arrow key sequence
			if i+2 < len(b) && b[i+1] == '[' {
				switch b[i+2] {
				case 'A':
					actions = append(actions, actionScan)
				case 'B':
					actions = append(actions, actionClear)
				}
				i += 2
				continue
			}
			actions = append(actions, actionQuit)
		}
	}
	return actions
}
