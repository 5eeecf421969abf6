package cmd

import (
	"github.com/davidroman0O/smcipmi/pkg/bmc"
	"github.com/spf13/cobra"
)

// newPowerForceOffCommand represents the power force-off command
func newPowerForceOffCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "force-off",
		Short: "Force the server off immediately",
		Long:  `Cuts power to the server without waiting for the operating system to shut down.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPowerCommand(cmd, opts, bmc.ForcePowerOff)
		},
	}
}
