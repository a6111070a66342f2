package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"hashkeyraffle/internal/client"
	"hashkeyraffle/internal/config"
	"hashkeyraffle/internal/state"
)

const flagUntilComplete = "until-complete"

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the current game: phase, countdown, pot and your tickets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, cfg, err := queryClient(cmd)
			if err != nil {
				return err
			}
			logger, err := config.NewLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			var player string
			if key, err := client.LoadKey(cfg.KeyPath()); err == nil {
				player = client.KeyAddress(key)
			}
			untilComplete, _ := cmd.Flags().GetBool(flagUntilComplete)

			out := cmd.OutOrStdout()
			w := client.NewWatcher(c, player, cfg.PollInterval, logger)
			return w.Run(cmd.Context(), func(s client.Status) bool {
				line := fmt.Sprintf("game=%d phase=%s remaining=%s tickets=%d players=%d pot=%s mine=%d",
					s.GameIndex, s.Phase, s.Remaining, s.TotalTickets, s.Players, s.Pot, s.MyTickets)
				if s.Winner != "" {
					line += fmt.Sprintf(" winner=%s prize=%s", s.Winner, s.Prize)
				}
				_, _ = fmt.Fprintln(out, line)
				return !(untilComplete && s.Phase == state.PhaseComplete)
			})
		},
	}
	cmd.Flags().Duration(flagInterval, config.DefaultConfig().PollInterval, "poll interval")
	cmd.Flags().Bool(flagUntilComplete, false, "exit once the current game is drawn")
	addClientFlags(cmd)
	return cmd
}
