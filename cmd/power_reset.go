package cmd

import (
	"github.com/davidroman0O/smcipmi/pkg/bmc"
	"github.com/spf13/cobra"
)

// newPowerResetCommand represents the power reset command
func newPowerResetCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Reset the server",
		Long:  `Performs a hard reset of the server through the BMC.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPowerCommand(cmd, opts, bmc.Reset)
		},
	}
}
