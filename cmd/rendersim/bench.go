package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/m-lab/rendersim/internal/bench"
	"github.com/m-lab/rendersim/pkg/bench1/spec"
)

var benchBarColor = lipgloss.Color("#3b82f6")

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Benchmark memoization strategies for a filtered list render.",
	RunE: func(cmd *cobra.Command, args []string) error {
		items, _ := cmd.Flags().GetInt("items")
		runs, _ := cmd.Flags().GetInt("runs")
		slow, _ := cmd.Flags().GetBool("slow")
		width, _ := cmd.Flags().GetInt("width")

		h := bench.NewHarness()
		n := h.SetItemCount(items)
		if n != items {
			fmt.Fprintf(cmd.ErrOrStderr(), "item count clamped to %d\n", n)
		}
		h.SetSlowMode(slow)
		out := cmd.OutOrStdout()
		for i := 0; i < runs; i++ {
			run, err := h.RunTest(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("run #%d", run.RunID))+
				dimStyle.Render(fmt.Sprintf(" %d items", run.ItemCount)))
			for _, r := range run.Results {
				fmt.Fprintf(out, "%d. %-10s %s %.3fms x%.2f\n", r.Rank, r.Strategy,
					bar(r.WidthPct, width, benchBarColor), r.RenderMs, r.Speedup)
				if delays := run.RevealDelaysMs[r.Strategy]; len(delays) > 0 {
					fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("   reveal over %.0fms", delays[len(delays)-1])))
				}
			}
		}
		return nil
	},
}

func init() {
	benchCmd.Flags().Int("items", spec.DefaultItemCount, "Number of products in the dataset")
	benchCmd.Flags().Int("runs", 1, "Number of runs")
	benchCmd.Flags().Bool("slow", false, "Show slow-mode reveal delays")
	benchCmd.Flags().Int("width", 40, "Chart width in columns")
}
