package cmd

import (
	"github.com/spf13/cobra"
)

// newStatusCommand represents the status command
func newStatusCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Get the power status of the server",
		Long: `Prints the current power status reported by the BMC.

The command always succeeds once the profile is valid: login, transport and
decoding failures are reported in the powerState field.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.newClient(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			defer client.Close(ctx)

			return opts.render(cmd.OutOrStdout(), client.GetServerStatus(ctx))
		},
	}
}
