package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"camera-wall-go/internal/camera"

	"github.com/spf13/cobra"
)

var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "Inspect the camera roster",
}

var rosterListCmd = &cobra.Command{
	Use:   "list",
	Short: "Load the configured roster and print it",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cams, err := rosterSource(cfg).Load(cmd.Context())
		if err != nil {
			return err
		}
		return printRoster(cams)
	},
}

var rosterCheckCmd = &cobra.Command{
	Use:   "check FILE",
	Short: "Validate a roster YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cams, err := camera.FileSource{Path: args[0]}.Load(cmd.Context())
		if err != nil {
			return err
		}
		usable := 0
		for _, c := range cams {
			if c.Usable() {
				usable++
			}
		}
		fmt.Printf("%s: %d cameras, %d usable\n", args[0], len(cams), usable)
		return nil
	},
}

func printRoster(cams []camera.Camera) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cams)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "#\tID\tNAME\tSTATUS\tSTREAM")
	fmt.Fprintln(w, "-\t--\t----\t------\t------")
	for i, c := range cams {
		status := "offline"
		if c.Connected {
			status = c.Badge()
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", i, c.ID, c.DisplayName(), status, c.StreamURI)
	}
	return w.Flush()
}

func init() {
	rosterCmd.AddCommand(rosterListCmd, rosterCheckCmd)
	rootCmd.AddCommand(rosterCmd)
}
