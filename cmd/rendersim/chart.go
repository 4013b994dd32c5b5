package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/m-lab/rendersim/internal/catalog"
	"github.com/m-lab/rendersim/internal/projection"
	"github.com/m-lab/rendersim/pkg/render1/model"
	"github.com/m-lab/rendersim/pkg/render1/spec"
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Compare one metric across scenarios.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog()
		if err != nil {
			return err
		}
		metric, _ := cmd.Flags().GetString("metric")
		presetID, _ := cmd.Flags().GetString("preset")
		cacheHit, _ := cmd.Flags().GetBool("cache")
		width, _ := cmd.Flags().GetInt("width")

		preset, err := cat.Preset(presetID)
		if err != nil {
			return err
		}
		scenarios := catalog.Scale(cat.Scenarios(cacheHit), preset)
		bars, err := projection.Compare(model.MetricKey(metric), scenarios)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, titleStyle.Render(metric)+dimStyle.Render(" ("+preset.Label+")"))
		for _, b := range bars {
			fmt.Fprintf(out, "%-16s %s %s %s\n", b.Name, bar(b.WidthPct, width, ratingColors[b.Rating]),
				projection.FormatMs(b.Value), dimStyle.Render(string(b.Rating)))
		}
		return nil
	},
}

func init() {
	chartCmd.Flags().String("metric", string(model.MetricLCP), "Metric to compare (ttfb, fcp, lcp, tti)")
	chartCmd.Flags().String("preset", spec.DefaultPreset, "Network preset")
	chartCmd.Flags().Bool("cache", true, "Show the cache-hit variant of cached scenarios")
	chartCmd.Flags().Int("width", 40, "Chart width in columns")
}
