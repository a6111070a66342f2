package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cosmossdk.io/log"
	"github.com/cometbft/cometbft/abci/server"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/spf13/cobra"

	"hashkeyraffle/internal/app"
	"hashkeyraffle/internal/config"
	"hashkeyraffle/internal/state"
)

func startCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Run the raffle ABCI application",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := config.NewLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			a, closeStore, err := openApp(cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = closeStore() }()

			srv, err := server.NewServer(cfg.ABCIAddr, cfg.Transport, a)
			if err != nil {
				return fmt.Errorf("start abci server: %w", err)
			}
			if err := srv.Start(); err != nil {
				return fmt.Errorf("abci server start: %w", err)
			}
			defer func() { _ = srv.Stop() }()
			logger.Info("abci server listening", "addr", cfg.ABCIAddr, "transport", cfg.Transport, "db", cfg.DBBackend)

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			select {
			case sig := <-sigCh:
				logger.Info("shutting down", "signal", sig.String())
			case <-cmd.Context().Done():
			}
			return nil
		},
	}
	d := config.DefaultConfig()
	cmd.Flags().String(flagABCIAddr, d.ABCIAddr, "ABCI listen address")
	cmd.Flags().String(flagTransport, d.Transport, "ABCI transport (socket|grpc)")
	cmd.Flags().String(flagDBBackend, d.DBBackend, "state database backend (goleveldb|pebbledb|memdb)")
	return cmd
}

// openApp opens the configured state database and loads the app from it.
func openApp(cfg config.Config, logger log.Logger) (*app.RaffleApp, func() error, error) {
	store, err := state.OpenStore(cfg.DataDir(), dbm.BackendType(cfg.DBBackend))
	if err != nil {
		return nil, nil, err
	}
	a, err := app.New(store, logger)
	if err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("init app: %w", err)
	}
	return a, store.Close, nil
}
