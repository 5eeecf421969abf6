package cmd

import (
	"github.com/davidroman0O/smcipmi/pkg/bmc"
	"github.com/spf13/cobra"
)

// newPowerOffCommand represents the power off command
func newPowerOffCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "off",
		Short: "Gracefully power off the server",
		Long:  `Asks the BMC for an orderly shutdown of the server.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPowerCommand(cmd, opts, bmc.PowerOff)
		},
	}
}
