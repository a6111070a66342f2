package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"hashkeyraffle/internal/client"
)

func queryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "query",
		Aliases: []string{"q"},
		Short:   "Query chain state",
	}
	cmd.AddCommand(
		queryLeaf("owner", "Print the chain owner", cobra.NoArgs,
			func(cmd *cobra.Command, c *client.Client, _ []string) (any, error) {
				owner, err := c.Owner(cmd.Context())
				return map[string]string{"owner": owner}, err
			}),
		queryLeaf("current", "Print the current game index", cobra.NoArgs,
			func(cmd *cobra.Command, c *client.Client, _ []string) (any, error) {
				index, err := c.CurrentGameIndex(cmd.Context())
				return map[string]uint64{"currentGameIndex": index}, err
			}),
		queryLeaf("game [index]", "Print a game (default: current)", cobra.MaximumNArgs(1),
			func(cmd *cobra.Command, c *client.Client, args []string) (any, error) {
				index, err := gameIndexArg(args)
				if err != nil {
					return nil, err
				}
				return c.Game(cmd.Context(), index)
			}),
		queryLeaf("balances [index]", "Print ticket balances per player", cobra.MaximumNArgs(1),
			func(cmd *cobra.Command, c *client.Client, args []string) (any, error) {
				index, err := gameIndexArg(args)
				if err != nil {
					return nil, err
				}
				return c.Balances(cmd.Context(), index)
			}),
		queryLeaf("tickets [index]", "Print the owner of every ticket", cobra.MaximumNArgs(1),
			func(cmd *cobra.Command, c *client.Client, args []string) (any, error) {
				index, err := gameIndexArg(args)
				if err != nil {
					return nil, err
				}
				return c.Tickets(cmd.Context(), index)
			}),
		queryLeaf("account [address]", "Print an account balance (default: signing key)", cobra.MaximumNArgs(1),
			func(cmd *cobra.Command, c *client.Client, args []string) (any, error) {
				addr, err := addressArg(cmd, args)
				if err != nil {
					return nil, err
				}
				return c.Account(cmd.Context(), addr)
			}),
		queryLeaf("value <account> [key]", "Print one stored value or all values of an account", cobra.RangeArgs(1, 2),
			func(cmd *cobra.Command, c *client.Client, args []string) (any, error) {
				if len(args) == 1 {
					return c.Values(cmd.Context(), args[0])
				}
				v, err := c.Value(cmd.Context(), args[0], args[1])
				return map[string]string{"account": args[0], "key": args[1], "value": v}, err
			}),
	)
	return cmd
}

type queryFunc func(cmd *cobra.Command, c *client.Client, args []string) (any, error)

func queryLeaf(use, short string, args cobra.PositionalArgs, run queryFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := queryClient(cmd)
			if err != nil {
				return err
			}
			out, err := run(cmd, c, args)
			if err != nil {
				return err
			}
			return printJSON(cmd, out)
		},
	}
	addClientFlags(cmd)
	return cmd
}

func gameIndexArg(args []string) (uint64, error) {
	if len(args) == 0 {
		return 0, nil
	}
	n, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid game index %q", args[0])
	}
	return n, nil
}

// addressArg returns args[0] or the address of the configured signing key.
func addressArg(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return "", err
	}
	key, err := client.LoadKey(cfg.KeyPath())
	if err != nil {
		return "", err
	}
	return client.KeyAddress(key), nil
}
