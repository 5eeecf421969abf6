package cmd

import (
	"fmt"

	"github.com/davidroman0O/smcipmi/pkg/bmc"
	"github.com/spf13/cobra"
)

// newPowerCommand represents the power command
func newPowerCommand(opts *globalOptions) *cobra.Command {
	powerCmd := &cobra.Command{
		Use:   "power",
		Short: "Manage server power state (on, off, reset, force-off)",
		Long: `Provides subcommands to control the power state of the server managed by the BMC.

Each subcommand logs in to the web console, sends the power request and logs out.
The command exits with a non-zero status when the console did not accept it.`,
		// No Run function, as this is a parent command
	}

	powerCmd.AddCommand(newPowerOnCommand(opts))
	powerCmd.AddCommand(newPowerOffCommand(opts))
	powerCmd.AddCommand(newPowerResetCommand(opts))
	powerCmd.AddCommand(newPowerForceOffCommand(opts))

	return powerCmd
}

// runPowerCommand executes a single power command and relays the result
func runPowerCommand(cmd *cobra.Command, opts *globalOptions, command bmc.PowerCommand) error {
	client, err := opts.newClient(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	defer client.Close(ctx)

	result := client.ExecuteCommand(ctx, command)
	if err := opts.render(cmd.OutOrStdout(), result); err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("power command %s failed: %s", command, result.Message)
	}
	return nil
}
