package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"hashkeyraffle/internal/client"
	"hashkeyraffle/internal/config"
)

const (
	flagHome      = "home"
	flagNode      = "node"
	flagKeyFile   = "key-file"
	flagABCIAddr  = "abci-addr"
	flagTransport = "transport"
	flagDBBackend = "db-backend"
	flagLogLevel  = "log-level"
	flagLogFormat = "log-format"
	flagInterval  = "interval"
)

// flagKeys maps cobra flags onto config keys.
var flagKeys = map[string]string{
	flagNode:      config.KeyRPCAddr,
	flagKeyFile:   config.KeyKeyFile,
	flagABCIAddr:  config.KeyABCIAddr,
	flagTransport: config.KeyTransport,
	flagDBBackend: config.KeyDBBackend,
	flagLogLevel:  config.KeyLogLevel,
	flagLogFormat: config.KeyLogFormat,
	flagInterval:  config.KeyPollInterval,
}

// NewRootCmd creates the raffled root command. It is called once in main.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "raffled",
		Short:         "HashKey raffle app chain daemon and client",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	d := config.DefaultConfig()
	rootCmd.PersistentFlags().String(flagHome, d.Home, "node and client home directory")
	rootCmd.PersistentFlags().String(flagLogLevel, d.LogLevel, "log level (trace|debug|info|warn|error or module:level,*:level)")
	rootCmd.PersistentFlags().String(flagLogFormat, d.LogFormat, "log format (plain|json)")

	rootCmd.AddCommand(
		initCmd(),
		startCmd(),
		keysCmd(),
		hashSecretCmd(),
		txCmd(),
		queryCmd(),
		watchCmd(),
	)
	return rootCmd
}

// addClientFlags registers the flags shared by commands that talk to a node.
func addClientFlags(cmd *cobra.Command) {
	d := config.DefaultConfig()
	cmd.Flags().String(flagNode, d.RPCAddr, "CometBFT RPC endpoint")
	cmd.Flags().String(flagKeyFile, d.KeyFile, "signing key file, relative to <home>/config")
}

// loadConfig merges <home>/config/app.toml, RAFFLE_* env vars and the flags
// set on cmd.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	home, err := cmd.Flags().GetString(flagHome)
	if err != nil {
		return config.Config{}, err
	}
	v := viper.New()
	for flag, key := range flagKeys {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return config.Config{}, err
			}
		}
	}
	return config.Load(home, v)
}

func queryClient(cmd *cobra.Command) (*client.Client, config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, cfg, err
	}
	c, err := client.Dial(cfg.RPCAddr, nil)
	return c, cfg, err
}

func signingClient(cmd *cobra.Command) (*client.Client, config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, cfg, err
	}
	key, err := client.LoadKey(cfg.KeyPath())
	if err != nil {
		return nil, cfg, err
	}
	c, err := client.Dial(cfg.RPCAddr, key)
	return c, cfg, err
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
