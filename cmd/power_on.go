package cmd

import (
	"github.com/davidroman0O/smcipmi/pkg/bmc"
	"github.com/spf13/cobra"
)

// newPowerOnCommand represents the power on command
func newPowerOnCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "on",
		Short: "Power on the server",
		Long:  `Supplies power to the server through the BMC.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPowerCommand(cmd, opts, bmc.PowerOn)
		},
	}
}
