package cmd

import (
	"crypto/rand"
	"fmt"
	"strconv"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"hashkeyraffle/internal/client"
	"hashkeyraffle/internal/codec"
)

const (
	flagPrice      = "price"
	flagSecret     = "secret"
	flagDrawPeriod = "draw-period"
	flagStart      = "start"
	flagStartIn    = "start-in"
	flagDuration   = "duration"
	flagFee        = "fee"
	flagMinPlayers = "min-players"
	flagEntropy    = "entropy"
)

func txCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Sign and broadcast transactions",
	}
	playCmd := simpleTxCmd("play <value>", "Buy tickets with value wei; the remainder below the ticket price is not taken", 1,
		func(cmd *cobra.Command, c *client.Client, args []string) (*client.TxResult, error) {
			value, err := parseAmount(args[0])
			if err != nil {
				return nil, err
			}
			rawEntropy, _ := cmd.Flags().GetString(flagEntropy)
			entropy, err := playEntropy(rawEntropy)
			if err != nil {
				return nil, err
			}
			return c.Play(cmd.Context(), value, entropy)
		})
	playCmd.Flags().String(flagEntropy, "", "hex entropy mixed into the game (at most 32 bytes; default: random)")

	cmd.AddCommand(
		newGameCmd(),
		playCmd,
		simpleTxCmd("draw <secret>", "Reveal the secret and draw the current game (owner only)", 1,
			func(cmd *cobra.Command, c *client.Client, args []string) (*client.TxResult, error) {
				return c.Draw(cmd.Context(), args[0])
			}),
		simpleTxCmd("refund [game-index]", "Claim a refund for an undrawn game after its draw period", -1,
			func(cmd *cobra.Command, c *client.Client, args []string) (*client.TxResult, error) {
				var index uint64
				if len(args) == 1 {
					n, err := strconv.ParseUint(args[0], 10, 64)
					if err != nil {
						return nil, fmt.Errorf("invalid game index %q", args[0])
					}
					index = n
				}
				return c.Refund(cmd.Context(), index)
			}),
		simpleTxCmd("send <to> <amount>", "Transfer wei to another account", 2,
			func(cmd *cobra.Command, c *client.Client, args []string) (*client.TxResult, error) {
				amount, err := parseAmount(args[1])
				if err != nil {
					return nil, err
				}
				return c.Send(cmd.Context(), args[0], amount)
			}),
		simpleTxCmd("mint <to> <amount>", "Credit wei to an account (owner faucet)", 2,
			func(cmd *cobra.Command, c *client.Client, args []string) (*client.TxResult, error) {
				amount, err := parseAmount(args[1])
				if err != nil {
					return nil, err
				}
				return c.Mint(cmd.Context(), args[0], amount)
			}),
		simpleTxCmd("set-value <key> <value>", "Store a value under key for the signing account", 2,
			func(cmd *cobra.Command, c *client.Client, args []string) (*client.TxResult, error) {
				return c.SetValue(cmd.Context(), args[0], args[1])
			}),
	)
	return cmd
}

type txFunc func(cmd *cobra.Command, c *client.Client, args []string) (*client.TxResult, error)

// simpleTxCmd builds a tx command taking nargs positional args (-1 for at
// most one).
func simpleTxCmd(use, short string, nargs int, run txFunc) *cobra.Command {
	args := cobra.ExactArgs(nargs)
	if nargs < 0 {
		args = cobra.MaximumNArgs(1)
	}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := signingClient(cmd)
			if err != nil {
				return err
			}
			res, err := run(cmd, c, args)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	addClientFlags(cmd)
	return cmd
}

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new-game",
		Short: "Create a game committing to keccak256(--secret) (owner only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			rawPrice, _ := flags.GetString(flagPrice)
			secret, _ := flags.GetString(flagSecret)
			drawPeriod, _ := flags.GetDuration(flagDrawPeriod)
			rawStart, _ := flags.GetString(flagStart)
			startIn, _ := flags.GetDuration(flagStartIn)
			duration, _ := flags.GetDuration(flagDuration)
			fee, _ := flags.GetUint32(flagFee)
			minPlayers, _ := flags.GetUint32(flagMinPlayers)

			if secret == "" {
				return fmt.Errorf("--%s is required", flagSecret)
			}
			if err := codec.ValidateSecret(secret); err != nil {
				return fmt.Errorf("invalid --%s: %w", flagSecret, err)
			}
			price, err := parseAmount(rawPrice)
			if err != nil {
				return err
			}
			start := time.Now().Add(startIn)
			if rawStart != "" {
				if start, err = time.Parse(time.RFC3339, rawStart); err != nil {
					return fmt.Errorf("invalid --%s: %w", flagStart, err)
				}
			}

			c, _, err := signingClient(cmd)
			if err != nil {
				return err
			}
			res, err := c.NewGame(cmd.Context(), client.NewGameParams{
				Price:      price,
				Secret:     secret,
				DrawPeriod: drawPeriod,
				Start:      start,
				End:        start.Add(duration),
				FeePercent: fee,
				MinPlayers: minPlayers,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	cmd.Flags().String(flagPrice, "10000000000000000", "ticket price in wei")
	cmd.Flags().String(flagSecret, "", "secret revealed at draw time")
	cmd.Flags().Duration(flagDrawPeriod, 24*time.Hour, "window after end in which the owner may draw (max 168h)")
	cmd.Flags().String(flagStart, "", "start time (RFC3339); overrides --start-in")
	cmd.Flags().Duration(flagStartIn, 10*time.Second, "start this long from now")
	cmd.Flags().Duration(flagDuration, time.Hour, "time from start to end")
	cmd.Flags().Uint32(flagFee, 5, "fee percent paid to the owner")
	cmd.Flags().Uint32(flagMinPlayers, 1, "minimum distinct players; fewer refunds everyone at draw")
	addClientFlags(cmd)
	return cmd
}

func parseAmount(s string) (sdkmath.Uint, error) {
	amt, err := sdkmath.ParseUint(s)
	if err != nil {
		return sdkmath.Uint{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return amt, nil
}

// playEntropy decodes --entropy, or draws fresh random bytes when it is empty.
func playEntropy(raw string) ([]byte, error) {
	if raw == "" {
		b := make([]byte, codec.MaxPlayEntropy)
		if _, err := rand.Read(b); err != nil {
			return nil, fmt.Errorf("generate entropy: %w", err)
		}
		return b, nil
	}
	b, err := hexutil.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s: %w", flagEntropy, err)
	}
	if len(b) > codec.MaxPlayEntropy {
		return nil, fmt.Errorf("--%s exceeds %d bytes", flagEntropy, codec.MaxPlayEntropy)
	}
	return b, nil
}
