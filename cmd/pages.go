package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"camera-wall-go/internal/paging"

	"github.com/spf13/cobra"
)

var (
	pagesCameras  int
	pagesCapacity int
)

var pagesCmd = &cobra.Command{
	Use:   "pages",
	Short: "Show how a roster splits into pages",
	RunE: func(cmd *cobra.Command, _ []string) error {
		capacity := pagesCapacity
		if capacity <= 0 {
			capacity = cfg.SlotCapacity
		}
		a := paging.New(capacity)
		a.SetRoster(pagesCameras)
		sizes := a.Sizes()

		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(map[string]any{
				"capacity":   a.Capacity(),
				"totalPages": a.TotalPages(),
				"sizes":      sizes,
			})
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "PAGE\tCAMERAS\tROSTER")
		fmt.Fprintln(w, "----\t-------\t------")
		for i, n := range sizes {
			a.GoTo(i)
			start, end := a.Bounds()
			fmt.Fprintf(w, "%d\t%d\t%d-%d\n", i+1, n, start, end-1)
		}
		return w.Flush()
	},
}

func init() {
	pagesCmd.Flags().IntVar(&pagesCameras, "cameras", 0, "roster size")
	pagesCmd.Flags().IntVar(&pagesCapacity, "capacity", 0, "cameras per page (default from config)")
	rootCmd.AddCommand(pagesCmd)
}
