package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aimless-wiki/db/internal/graph"
)

var (
	statsSnapshot string
	statsJSON     bool
	statsTopN     int
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize a graph snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := graph.ReadSnapshot(statsSnapshot)
		if err != nil {
			return err
		}

		report := g.Summarize(statsTopN)
		if statsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		printSummary(report)
		return nil
	},
}

func printSummary(report *graph.SummaryReport) {
	fmt.Printf("\n  Nodes:       %d\n", report.TotalNodes)
	fmt.Printf("  Edges:       %d\n", report.TotalEdges)
	fmt.Printf("  Components:  %d (largest %d)\n", report.NumComponents, report.LargestComponent)
	if report.Unannotated > 0 {
		fmt.Printf("  Unannotated: %d\n", report.Unannotated)
	}
	fmt.Printf("  Page count:  min=%d max=%d mean=%.1f\n\n",
		report.MinPageCount, report.MaxPageCount, report.MeanPageCount)

	if len(report.TopCategories) > 0 {
		fmt.Println("  Top categories by page count:")
		for _, c := range report.TopCategories {
			fmt.Printf("    %8d  %-40s %d\n", c.ID, c.Name, c.PageCount)
		}
		fmt.Println()
	}
}

func init() {
	statsCmd.Flags().StringVar(&statsSnapshot, "snapshot", "graph.bytes", "Path to the graph snapshot")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output as JSON")
	statsCmd.Flags().IntVar(&statsTopN, "top-n", 10, "Number of top categories to show")
	rootCmd.AddCommand(statsCmd)
}
