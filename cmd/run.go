package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"camera-wall-go/internal/server"
	"camera-wall-go/internal/ui"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	runServe bool
	runAddr  string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the wall window",
	Long:  `Open the wall window. With --serve the HTTP API runs alongside it.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		banner("window")
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		app := ui.NewApp(cfg)
		reg := newRegistry()
		ctrl, err := newWall(cfg, reg, app)
		if err != nil {
			return err
		}
		stopWall := runWall(ctx, ctrl)
		defer stopWall()

		startRoster(ctx, cfg, ctrl)
		reporter := startHealth(ctx, cfg, ctrl, reg)

		if runServe {
			srv := server.New(server.Options{
				Addr:     listenAddr(cfg, runAddr),
				Wall:     ctrl,
				Health:   reporter,
				Gatherer: reg,
				Capacity: cfg.SlotCapacity,
			})
			go func() {
				if err := srv.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.Error().Str("component", "main").Err(err).Msg("http server failed")
				}
			}()
		}

		return app.Run(ctx, ctrl)
	},
}

func init() {
	runCmd.Flags().BoolVar(&runServe, "serve", false, "also serve the HTTP API")
	runCmd.Flags().StringVar(&runAddr, "addr", "", "HTTP listen address (default from config)")
	rootCmd.AddCommand(runCmd)
	rootCmd.RunE = runCmd.RunE
}
