package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	sdkmath "cosmossdk.io/math"
	"github.com/spf13/cobra"

	"hashkeyraffle/internal/app"
	"hashkeyraffle/internal/client"
	"hashkeyraffle/internal/config"
)

const (
	flagOverwrite    = "overwrite"
	flagOwner        = "owner"
	flagOwnerBalance = "owner-balance"
)

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config, an owner key and the genesis app state",
		Long: `Writes <home>/config/app.toml, creates the owner signing key when it does
not exist and writes <home>/config/genesis_app_state.json. Copy the latter
into the app_state field of the CometBFT genesis file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			overwrite, _ := cmd.Flags().GetBool(flagOverwrite)
			owner, _ := cmd.Flags().GetString(flagOwner)
			rawBalance, _ := cmd.Flags().GetString(flagOwnerBalance)
			balance, err := sdkmath.ParseUint(rawBalance)
			if err != nil {
				return fmt.Errorf("invalid --%s: %w", flagOwnerBalance, err)
			}

			cfgPath, err := config.Write(cfg.Home, cfg, overwrite)
			if err != nil {
				return err
			}

			if owner == "" {
				key, err := client.LoadKey(cfg.KeyPath())
				if err != nil {
					if key, err = client.GenerateKey(cfg.KeyPath()); err != nil {
						return err
					}
				}
				owner = client.KeyAddress(key)
			}

			gs := app.DefaultGenesis(owner, balance)
			if err := gs.Validate(); err != nil {
				return err
			}
			b, err := json.MarshalIndent(gs, "", "  ")
			if err != nil {
				return err
			}
			genPath := config.GenesisPath(cfg.Home)
			if err := os.WriteFile(genPath, b, 0o644); err != nil {
				return fmt.Errorf("write genesis app state: %w", err)
			}

			return printJSON(cmd, map[string]string{
				"config":  cfgPath,
				"genesis": genPath,
				"owner":   gs.Owner,
			})
		},
	}
	cmd.Flags().Bool(flagOverwrite, false, "overwrite an existing app.toml")
	cmd.Flags().String(flagOwner, "", "owner address (default: address of the generated key)")
	cmd.Flags().String(flagOwnerBalance, "1000000000000000000000", "initial owner balance in wei")
	addClientFlags(cmd)
	return cmd
}
