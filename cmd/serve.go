package cmd

import (
	"os/signal"
	"syscall"

	"camera-wall-go/internal/camera"
	"camera-wall-go/internal/server"
	"camera-wall-go/internal/wall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	serveAddr     string
	serveViewport string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the wall headless behind the HTTP API",
	Long: `Run the wall without a window. Slots still open and play their streams;
the view-model, page commands, metrics and a view-model websocket are
served over HTTP.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		banner("headless")
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logger := log.With().Str("component", "main").Logger()
		nav := wall.NavigatorFunc(func(cam camera.Camera) {
			logger.Info().Str("camera", cam.ID).Msg("detail requested")
		})

		reg := newRegistry()
		ctrl, err := newWall(cfg, reg, nav)
		if err != nil {
			return err
		}
		stopWall := runWall(ctx, ctrl)
		defer stopWall()

		if serveViewport != "" {
			v, err := parseViewport(serveViewport)
			if err != nil {
				return err
			}
			if err := ctrl.SetViewport(v); err != nil {
				return err
			}
		}
		startRoster(ctx, cfg, ctrl)
		reporter := startHealth(ctx, cfg, ctrl, reg)

		srv := server.New(server.Options{
			Addr:     listenAddr(cfg, serveAddr),
			Wall:     ctrl,
			Health:   reporter,
			Gatherer: reg,
			Capacity: cfg.SlotCapacity,
		})
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "HTTP listen address (default from config)")
	serveCmd.Flags().StringVar(&serveViewport, "viewport", "1920x1080", "virtual screen size used for geometry, WIDTHxHEIGHT")
	rootCmd.AddCommand(serveCmd)
}
