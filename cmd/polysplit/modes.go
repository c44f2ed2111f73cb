package main

import (
	"fmt"

	"polysplit/internal/partition"

	"github.com/spf13/cobra"
)

var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "List the split modes",
	Run: func(cmd *cobra.Command, args []string) {
		for _, m := range partition.Modes {
			unit := "square meters per piece"
			if m.ByCount() {
				unit = "piece count"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-18s %s\n", m, unit)
		}
	},
}

func init() {
	rootCmd.AddCommand(modesCmd)
}
