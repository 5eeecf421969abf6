// Package cmd implements the ipmictl command line
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/davidroman0O/smcipmi/pkg/bmc"
	"github.com/davidroman0O/smcipmi/pkg/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// globalOptions holds the persistent flag values shared by every subcommand
type globalOptions struct {
	configFile  string
	bmcHost     string
	bmcUser     string
	bmcPassword string
	timeout     int
	useHTTPS    bool
	insecure    bool
	output      string
	verbose     bool

	lookupEnv config.LookupFunc
}

// NewRootCommand builds the ipmictl command tree
func NewRootCommand() *cobra.Command {
	return newRootCommand(os.LookupEnv)
}

func newRootCommand(lookupEnv config.LookupFunc) *cobra.Command {
	opts := &globalOptions{lookupEnv: lookupEnv}

	rootCmd := &cobra.Command{
		Use:   "ipmictl",
		Short: "Control server power through a Supermicro BMC web console",
		Long: `ipmictl drives the power controls of a Supermicro BMC through its web console,
the same way the browser UI does: it logs in, sends the POWER_INFO request and
prints the result as JSON or YAML.

Connection settings come from, in increasing priority: built-in defaults, the
--config file, IPMI_* environment variables and command line flags.`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "Path to a YAML or JSON connection profile")
	flags.StringVar(&opts.bmcHost, "host", "", "BMC host name or IP address")
	flags.StringVarP(&opts.bmcUser, "user", "u", config.DefaultUsername, "BMC username")
	flags.StringVarP(&opts.bmcPassword, "password", "p", config.DefaultPassword, "BMC password")
	flags.IntVar(&opts.timeout, "timeout", config.DefaultTimeoutSeconds, "Request timeout in seconds")
	flags.BoolVar(&opts.useHTTPS, "https", true, "Use HTTPS to reach the console")
	flags.BoolVar(&opts.insecure, "insecure", true, "Skip TLS certificate validation (self-signed console certificates)")
	flags.StringVarP(&opts.output, "output", "o", "json", "Output format: json or yaml")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging on stderr")

	rootCmd.AddCommand(newPowerCommand(opts))
	rootCmd.AddCommand(newStatusCommand(opts))
	rootCmd.AddCommand(newTestConnectionCommand(opts))
	rootCmd.AddCommand(newInfoCommand(opts))

	return rootCmd
}

// Execute runs the command tree with the given context
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// loadProfile merges defaults, config file, environment and explicitly set flags
func (o *globalOptions) loadProfile(cmd *cobra.Command) (config.ConnectionProfile, error) {
	profile := config.DefaultProfile()
	if o.configFile != "" {
		var err error
		profile, err = config.LoadConfigFile(o.configFile)
		if err != nil {
			return profile, err
		}
	}

	profile = config.ApplyEnv(profile, o.lookupEnv)

	flags := cmd.Flags()
	if flags.Changed("host") {
		profile.Host = o.bmcHost
	}
	if flags.Changed("user") {
		profile.Username = o.bmcUser
	}
	if flags.Changed("password") {
		profile.Password = o.bmcPassword
	}
	if flags.Changed("timeout") {
		profile.TimeoutSeconds = o.timeout
	}
	if flags.Changed("https") {
		profile.UseHTTPS = o.useHTTPS
	}
	if flags.Changed("insecure") {
		profile.InsecureSkipVerify = o.insecure
	}

	return profile, profile.Validate()
}

func (o *globalOptions) newLogger(cmd *cobra.Command) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetLevel(logrus.WarnLevel)
	if o.verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

// newClient builds a console client from the merged profile
func (o *globalOptions) newClient(cmd *cobra.Command) (*bmc.Client, error) {
	profile, err := o.loadProfile(cmd)
	if err != nil {
		return nil, err
	}
	return bmc.New(profile, bmc.WithLogger(o.newLogger(cmd)))
}

// render writes v in the selected output format
func (o *globalOptions) render(w io.Writer, v interface{}) error {
	switch o.output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	default:
		return fmt.Errorf("unsupported output format: %s (must be json or yaml)", o.output)
	}
}
