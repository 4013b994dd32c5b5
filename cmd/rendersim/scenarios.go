package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/m-lab/rendersim/internal/catalog"
	"github.com/m-lab/rendersim/internal/projection"
)

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List the scenario catalog and network presets.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog()
		if err != nil {
			return err
		}
		cacheHit, _ := cmd.Flags().GetBool("cache")
		out := cmd.OutOrStdout()
		for _, s := range cat.Scenarios(cacheHit) {
			fmt.Fprintf(out, "%s %s\n", titleStyle.Render(s.ID), s.Name)
			fmt.Fprintf(out, "  total %s  ttfb %s  fcp %s  lcp %s  tti %s  js %.0fKB\n",
				projection.FormatMs(catalog.TotalDuration(s)),
				projection.FormatMs(s.Metrics.TTFBMs), projection.FormatMs(s.Metrics.FCPMs),
				projection.FormatMs(s.Metrics.LCPMs), projection.FormatMs(s.Metrics.TTIMs),
				s.Metrics.BundleKB)
			for _, w := range catalog.Warnings(s) {
				fmt.Fprintln(out, dimStyle.Render("  warning: "+w))
			}
		}
		fmt.Fprintln(out)
		for _, p := range cat.Presets() {
			fmt.Fprintf(out, "preset %-8s %-20s x%g\n", p.ID, p.Label, p.Multiplier)
		}
		return nil
	},
}

func init() {
	scenariosCmd.Flags().Bool("cache", true, "Show the cache-hit variant of cached scenarios")
}
