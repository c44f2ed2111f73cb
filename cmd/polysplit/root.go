package main

import (
	"fmt"
	"os"

	"polysplit/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "polysplit",
	Short: "polysplit - split polygons into equal-area pieces",
	Long: `polysplit partitions the polygons of a GeoJSON file into pieces of
equal area, either by piece count or by target area per piece, using
arbitrary chords or horizontal bands.`,
	SilenceUsage:      true,
	DisableAutoGenTag: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load(".env")
		logger.Setup()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
