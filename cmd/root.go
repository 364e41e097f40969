// Package cmd is the camera-wall command line.
package cmd

import (
	"fmt"
	"os"

	"camera-wall-go/internal/config"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Version information, set by linker flags during build.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

var (
	cfgFile    string
	jsonOutput bool

	cfg        *config.Config
	logCleanup func()
)

var rootCmd = &cobra.Command{
	Use:   "camera-wall",
	Short: "A paged video wall for up to 20 live cameras",
	Long: `camera-wall shows a camera roster as a fixed grid of live tiles, one page
at a time. Every tile keeps its player for the life of the process; paging
only changes what each player is showing.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) {
		if logCleanup != nil {
			logCleanup()
		}
	},
}

// Execute runs the command line and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config.ini (default ./config.ini or $CAMERA_WALL_CONFIG)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
}

// setup loads the configuration and installs logging for every command.
func setup(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v (using defaults)\n", err)
		cfg = config.DefaultConfig()
	}

	logCleanup, err = config.ConfigureLogging(cfg)
	if err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}

	ok, warnings := cfg.Validate()
	for _, w := range warnings {
		log.Warn().Str("component", "main").Msg(w)
	}
	if !ok {
		return fmt.Errorf("configuration is not usable")
	}
	return nil
}
