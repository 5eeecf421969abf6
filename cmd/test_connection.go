package cmd

import (
	"errors"
	"time"

	"github.com/spf13/cobra"
)

// connectionTestResult is printed by the test-connection command
type connectionTestResult struct {
	Success  bool      `json:"success" yaml:"success"`
	Message  string    `json:"message" yaml:"message"`
	TestedAt time.Time `json:"testedAt" yaml:"testedAt"`
}

// newTestConnectionCommand represents the test-connection command
func newTestConnectionCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "test-connection",
		Short: "Check that the BMC accepts the configured credentials",
		Long:  `Logs in to the web console and immediately logs out again.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.newClient(cmd)
			if err != nil {
				return err
			}

			result := connectionTestResult{
				Success:  client.TestConnection(cmd.Context()),
				TestedAt: time.Now().UTC(),
			}
			if result.Success {
				result.Message = "Successfully connected to IPMI interface"
			} else {
				result.Message = "Failed to connect to IPMI interface"
			}

			if err := opts.render(cmd.OutOrStdout(), result); err != nil {
				return err
			}
			if !result.Success {
				return errors.New(result.Message)
			}
			return nil
		},
	}
}
