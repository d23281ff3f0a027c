package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

const shellPrompt = "maileradmin> "

func newShellCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Run commands interactively in one session",
		Long: `Start an interactive shell. Every maileradmin command can be typed
without the program name. Screens stay open between commands, so staged
plan limits and roles are kept until saved or reset.

Type "help" for the command list and "exit" to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st.inShell = true
			defer func() { st.inShell = false }()
			return repl(cmd.Context(), st)
		},
	}
}

// repl reads command lines until exit or end of input. Failed commands
// are reported and the loop goes on.
func repl(ctx context.Context, st *state) error {
	app := st.app
	fmt.Fprintln(app.errOut, `Type "help" for commands, "exit" to quit.`)
	for {
		line, err := app.prompt.Line(shellPrompt)
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(app.errOut)
			return nil
		}
		if err != nil {
			return err
		}

		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "exit", "quit":
			return nil
		case "help":
			args = append(args[1:], "--help")
		}
		_ = st.run(ctx, args)
	}
}
