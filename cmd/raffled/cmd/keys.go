package cmd

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"hashkeyraffle/internal/client"
	"hashkeyraffle/internal/codec"
)

func keysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage the local secp256k1 signing key",
	}

	newCmd := &cobra.Command{
		Use:   "new",
		Short: "Generate a signing key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			key, err := client.GenerateKey(cfg.KeyPath())
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]string{"address": client.KeyAddress(key), "file": cfg.KeyPath()})
		},
	}
	addClientFlags(newCmd)

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the address of the signing key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			key, err := client.LoadKey(cfg.KeyPath())
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]string{"address": client.KeyAddress(key), "file": cfg.KeyPath()})
		},
	}
	addClientFlags(showCmd)

	cmd.AddCommand(newCmd, showCmd)
	return cmd
}

func hashSecretCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-secret <secret>",
		Short: "Print keccak256(secret), the commitment used by new-game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := codec.ValidateSecret(args[0]); err != nil {
				return err
			}
			_, err := cmd.OutOrStdout().Write([]byte(hexutil.Encode(codec.HashSecret(args[0])) + "\n"))
			return err
		},
	}
}
