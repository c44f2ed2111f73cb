package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"polysplit/internal/partition"
	"polysplit/internal/service"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	splitFlags   profile
	splitProfile string
)

var splitCmd = &cobra.Command{
	Use:   "split <in.geojson>...",
	Short: "Split every polygon of the input files",
	Long: `Splits the polygons of each input file and writes one FeatureCollection
per input. With a single input --out names the output file; with several it
names the output directory. Without --out results are written next to the
inputs as <name>.split.geojson.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProfile(splitProfile)
		if err != nil {
			return err
		}
		p.override(cmd.Flags(), splitFlags)

		mode, err := partition.ParseMode(p.Mode)
		if err != nil {
			return err
		}
		opts := partition.DefaultOptions()
		if p.Steps > 0 {
			opts.Steps = p.Steps
		}
		if p.Tolerance > 0 {
			opts.Tolerance = p.Tolerance
		}
		sp := service.New(service.Config{Options: opts, Workers: p.Workers}, nil, nil, nil)

		var bar *progressbar.ProgressBar
		if len(args) > 1 {
			bar = progressbar.Default(int64(len(args)), "splitting")
		}
		for _, in := range args {
			data, err := os.ReadFile(in)
			if err != nil {
				return fmt.Errorf("reading %s: %w", in, err)
			}
			res, err := sp.Split(cmd.Context(), service.Request{
				GeoJSON: data,
				Mode:    mode,
				Value:   p.Value,
				Merge:   p.Merge,
				CRS:     p.CRS,
			})
			if err != nil {
				return fmt.Errorf("splitting %s: %w", in, err)
			}
			dst := outputPath(in, p.Out, len(args))
			if err := os.WriteFile(dst, res.GeoJSON, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", dst, err)
			}
			if bar != nil {
				_ = bar.Add(1)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d/%d pieces -> %s\n", in, res.Pieces, res.Requested, dst)
			}
		}
		return nil
	},
}

func outputPath(in, out string, inputs int) string {
	base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in)) + ".split.geojson"
	switch {
	case out == "":
		return filepath.Join(filepath.Dir(in), base)
	case inputs == 1:
		return out
	default:
		return filepath.Join(out, base)
	}
}

func init() {
	rootCmd.AddCommand(splitCmd)
	f := splitCmd.Flags()
	f.StringVarP(&splitFlags.Mode, "mode", "m", "count", "Split mode, see polysplit modes")
	f.Float64VarP(&splitFlags.Value, "value", "v", 0, "Piece count or target area in square meters")
	f.StringVarP(&splitFlags.Out, "out", "o", "", "Output file or directory")
	f.BoolVar(&splitFlags.Merge, "merge", true, "Union all polygons before splitting")
	f.StringVar(&splitFlags.CRS, "crs", "", "Input CRS override (EPSG:4326 or EPSG:3857)")
	f.IntVar(&splitFlags.Steps, "steps", partition.DefaultSteps, "Chord search sampling steps per edge")
	f.Float64Var(&splitFlags.Tolerance, "tolerance", partition.DefaultTolerance, "Chord search early-exit tolerance")
	f.IntVar(&splitFlags.Workers, "workers", 4, "Concurrent polygons when --merge=false")
	f.StringVarP(&splitProfile, "config", "c", "", "YAML profile; flags override it")
}
