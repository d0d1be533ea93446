// Command trafficsim serves or batch-runs the traffic microsimulation
// engine, adapted from the teacher's flag-based main.go into a
// github.com/spf13/cobra command tree (§10.6) with serve/batch/curvegen
// subcommands in place of the teacher's single flat flag set.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "trafficsim",
		Short:         "Continuous-time multi-agent traffic microsimulator",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newBatchCmd())
	cmd.AddCommand(newCurvegenCmd())
	return cmd
}
