package main

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/m-lab/rendersim/internal/simulator"
	"github.com/m-lab/rendersim/pkg/render1/model"
	"github.com/m-lab/rendersim/pkg/render1/spec"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate [scenario...]",
	Short: "Play the loading timeline of the selected scenarios.",
	Long: "`simulate` runs the timeline simulator and redraws the timeline every " +
		"--every interval until all scenarios have finished.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog()
		if err != nil {
			return err
		}
		preset, _ := cmd.Flags().GetString("preset")
		cacheHit, _ := cmd.Flags().GetBool("cache")
		speedup, _ := cmd.Flags().GetFloat64("speedup")
		every, _ := cmd.Flags().GetDuration("every")
		width, _ := cmd.Flags().GetInt("width")

		sim, err := simulator.New(simulator.Config{
			Catalog:     cat,
			ScenarioIDs: args,
			Preset:      preset,
			CacheHit:    cacheHit,
			Speedup:     speedup,
			Logger:      log.Default(),
		})
		if err != nil {
			return err
		}
		defer sim.Close()

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		out := cmd.OutOrStdout()
		var last time.Time
		var final model.Snapshot
		for snap := range sim.Start(ctx) {
			final = snap
			if snap.Status != model.StatusCompleted && time.Since(last) < every {
				continue
			}
			last = time.Now()
			fmt.Fprintln(out, renderTimeline(snap, width))
			fmt.Fprintln(out)
		}
		if final.Status != model.StatusCompleted {
			return ctx.Err()
		}
		stats := sim.Stats()
		log.Debug("simulation done", "runs", stats.RunsStarted, "completed", stats.RunsCompleted)
		return nil
	},
}

func init() {
	simulateCmd.Flags().String("preset", spec.DefaultPreset, "Network preset")
	simulateCmd.Flags().Bool("cache", true, "Show the cache-hit variant of cached scenarios")
	simulateCmd.Flags().Float64("speedup", spec.DisplaySpeedup, "Virtual time per wall-clock time")
	simulateCmd.Flags().Duration("every", 250*time.Millisecond, "Redraw interval")
	simulateCmd.Flags().Int("width", 60, "Timeline width in columns")
}
