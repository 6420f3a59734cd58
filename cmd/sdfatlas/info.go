package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/esimov/sdfatlas"
	"github.com/esimov/sdfatlas/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <map.json>",
		Short: "Print the layout and the tile coordinates stored in a coordinate map",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return errors.Wrap(err, "unable to open the coordinate map")
			}
			defer f.Close()

			m, err := sdfatlas.DecodeJSON(f)
			if err != nil {
				return err
			}
			return printInfo(cmd.OutOrStdout(), m)
		},
	}
}

// printInfo writes a summary of the map followed by one line per tile, in grid order.
func printInfo(w io.Writer, m *sdfatlas.CoordinateMap) error {
	plan := m.Plan()
	fmt.Fprintf(w, "atlas %s, grid %s, tile %dpx, padding %dpx, %d/%d cells used\n\n",
		utils.FormatSize(plan.AtlasWidth, plan.AtlasHeight),
		utils.FormatSize(plan.Columns, plan.Rows),
		plan.CellSize, plan.Padding, m.Len(), plan.Capacity())

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tX\tY\tWIDTH\tHEIGHT")
	for _, p := range m.Placements() {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\n", p.ID, p.X, p.Y, p.Width, p.Height)
	}
	return tw.Flush()
}
