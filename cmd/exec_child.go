package cmd

import (
	"github.com/josephlewis42/jobsh/core/job"
	"github.com/spf13/cobra"
)

// execChildCmd is the first program every job runs: it resets the signals
// the shell ignores, then replaces itself with the command.
var execChildCmd = &cobra.Command{
	Use:                job.ChildCommand + " COMMAND [ARG...]",
	Short:              "Run a command as a foreground job child.",
	Hidden:             true,
	DisableFlagParsing: true,
	Args:               cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		job.ExecChild(args)
	},
}

func init() {
	rootCmd.AddCommand(execChildCmd)
}
