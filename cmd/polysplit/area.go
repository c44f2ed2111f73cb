package main

import (
	"fmt"
	"os"

	"polysplit/internal/geojsonio"
	"polysplit/internal/partition"
	"polysplit/internal/reproject"

	"github.com/spf13/cobra"
)

var areaCRS string

var areaCmd = &cobra.Command{
	Use:   "area <in.geojson>",
	Short: "Print the planar area of each polygon",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}
		in, err := geojsonio.Decode(data)
		if err != nil {
			return err
		}
		crs := areaCRS
		if crs == "" {
			crs = in.CRS
		}
		conv, err := reproject.ForCRS(crs)
		if err != nil {
			return err
		}
		var total float64
		for i, poly := range in.Polygons {
			a := partition.Area(conv.ToPlanar(poly[0]))
			total += a
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%.2f\n", i, a)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "total\t%.2f\n", total)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(areaCmd)
	areaCmd.Flags().StringVar(&areaCRS, "crs", "", "Input CRS override")
}
