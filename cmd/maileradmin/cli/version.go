package cli

import (
	"cmp"
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Build version: %s\nBuild date: %s\n",
				cmp.Or(st.version, "N/A"), cmp.Or(st.buildDate, "N/A"))
		},
	}
	// needs neither config nor session
	cmd.PersistentPreRunE = func(*cobra.Command, []string) error { return nil }
	return cmd
}
