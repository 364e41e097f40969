package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"camera-wall-go/internal/geometry"
	"camera-wall-go/internal/layout"
	"camera-wall-go/internal/paging"
	"camera-wall-go/internal/wall"

	"github.com/spf13/cobra"
)

var (
	geomViewport string
	geomLayout   string
	geomCameras  int
)

var geometryCmd = &cobra.Command{
	Use:   "geometry",
	Short: "Print the grid geometry for a viewport",
	Long: `Print the cell sizes the wall would use for a viewport, layout and roster
size, with the chrome heights from the configuration.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		v, err := parseViewport(geomViewport)
		if err != nil {
			return err
		}
		spec, err := layout.Preset(pick(geomLayout, cfg.Layout), cfg.SlotCapacity)
		if err != nil {
			return err
		}

		cols := spec.Columns
		if cfg.ResponsiveColumns {
			cols = geometry.ResponsiveColumns(v.Width, cols)
		}
		pageSize := min(spec.Capacity, spec.Rows*cols, cfg.SlotCapacity)
		pages := paging.New(pageSize)
		pages.SetRoster(geomCameras)

		chrome := geometry.Chrome{
			AppBarHeight:    cfg.AppBarHeight,
			BottomNavHeight: cfg.BottomNavHeight,
			SafeTop:         v.SafeTop,
			SafeBottom:      v.SafeBottom,
		}
		g, err := geometry.Compute(geometry.Input{
			ViewportWidth:        v.Width,
			ViewportHeight:       v.Height,
			ChromeHeight:         chrome.Height(),
			TotalPages:           pages.TotalPages(),
			PaginationUnitHeight: cfg.PaginationHeight,
			Columns:              cols,
			Rows:                 spec.Rows,
		})
		if err != nil {
			return err
		}

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(g)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintf(w, "LAYOUT\t%s\n", spec)
		fmt.Fprintf(w, "PAGES\t%d (page size %d)\n", pages.TotalPages(), pageSize)
		fmt.Fprintf(w, "VIEWPORT\t%.0f x %.0f\n", g.ViewportWidth, g.ViewportHeight)
		fmt.Fprintf(w, "CHROME\t%.1f\n", g.ChromeHeight)
		fmt.Fprintf(w, "PAGINATION\t%.1f\n", g.PaginationHeight)
		fmt.Fprintf(w, "AVAILABLE\t%.1f\n", g.AvailableHeight)
		fmt.Fprintf(w, "GRID\t%d rows x %d columns\n", g.Rows, g.Columns)
		fmt.Fprintf(w, "CELL\t%.2f x %.2f (aspect %.3f)\n", g.CellWidth, g.CellHeight, g.AspectRatio)
		return w.Flush()
	},
}

func init() {
	geometryCmd.Flags().StringVar(&geomViewport, "viewport", "1280x800", "viewport size, WIDTHxHEIGHT")
	geometryCmd.Flags().StringVar(&geomLayout, "layout", "", "layout preset (default from config)")
	geometryCmd.Flags().IntVar(&geomCameras, "cameras", 20, "roster size, decides whether pagination shows")
	rootCmd.AddCommand(geometryCmd)
}

// parseViewport reads "WIDTHxHEIGHT".
func parseViewport(s string) (wall.Viewport, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return wall.Viewport{}, fmt.Errorf("viewport %q: want WIDTHxHEIGHT", s)
	}
	width, err := strconv.ParseFloat(w, 64)
	if err != nil {
		return wall.Viewport{}, fmt.Errorf("viewport %q: %w", s, err)
	}
	height, err := strconv.ParseFloat(h, 64)
	if err != nil {
		return wall.Viewport{}, fmt.Errorf("viewport %q: %w", s, err)
	}
	if width < 0 || height < 0 {
		return wall.Viewport{}, fmt.Errorf("viewport %q: dimensions must not be negative", s)
	}
	return wall.Viewport{Width: width, Height: height}, nil
}

func pick(flag, fallback string) string {
	if flag != "" {
		return flag
	}
	return fallback
}
