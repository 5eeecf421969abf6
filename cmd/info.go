package cmd

import (
	"github.com/spf13/cobra"
)

func newInfoCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the effective connection profile (without the password)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.newClient(cmd)
			if err != nil {
				return err
			}
			return opts.render(cmd.OutOrStdout(), client.GetServerInfo())
		},
	}
}
