package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/m-lab/rendersim/internal/projection"
	"github.com/m-lab/rendersim/pkg/render1/model"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))

	categoryColors = map[model.PhaseCategory]lipgloss.Color{
		model.CategoryServer:    lipgloss.Color("#8b5cf6"),
		model.CategoryNetwork:   lipgloss.Color("#3b82f6"),
		model.CategoryClient:    lipgloss.Color("#f59e0b"),
		model.CategoryHydration: lipgloss.Color("#ec4899"),
		model.CategoryFetch:     lipgloss.Color("#10b981"),
		model.CategoryIdle:      lipgloss.Color("#9ca3af"),
	}

	ratingColors = map[model.Rating]lipgloss.Color{
		model.RatingGood:       lipgloss.Color("#22c55e"),
		model.RatingAcceptable: lipgloss.Color("#eab308"),
		model.RatingPoor:       lipgloss.Color("#ef4444"),
	}
)

// cell is one terminal column of a timeline track.
type cell struct {
	category model.PhaseCategory
	filled   bool
	set      bool
}

// track draws the phases of v on width columns. Filled parts of a phase use
// a solid block, the rest a light shade. Overlapping phases keep the last
// one drawn.
func track(v model.ScenarioView, width int) string {
	cells := make([]cell, width)
	for _, p := range v.Phases {
		left := int(p.LeftPct / 100 * float64(width))
		w := int(p.WidthPct/100*float64(width) + 0.5)
		if w == 0 && p.WidthPct > 0 {
			w = 1
		}
		filled := int(p.FillPct / 100 * float64(w))
		for i := 0; i < w && left+i < width; i++ {
			cells[left+i] = cell{category: p.Category, filled: i < filled, set: true}
		}
	}
	var b strings.Builder
	for _, c := range cells {
		switch {
		case !c.set:
			b.WriteString(" ")
		case c.filled:
			b.WriteString(lipgloss.NewStyle().Foreground(categoryColors[c.category]).Render("█"))
		default:
			b.WriteString(lipgloss.NewStyle().Foreground(categoryColors[c.category]).Render("░"))
		}
	}
	return b.String()
}

// cursorLine marks the time cursor of snap on width columns.
func cursorLine(snap model.Snapshot, width int) string {
	pos := int(snap.CursorPct / 100 * float64(width))
	if pos >= width {
		pos = width - 1
	}
	if pos < 0 {
		pos = 0
	}
	return strings.Repeat(" ", pos) + "▲ " + projection.FormatMs(snap.ElapsedMs)
}

// renderTimeline draws every scenario of snap on a shared scale.
func renderTimeline(snap model.Snapshot, width int) string {
	lines := []string{titleStyle.Render(string(snap.Status)) + dimStyle.Render(
		" preset="+snap.Preset+" max="+projection.FormatMs(snap.MaxDurationMs))}
	for _, v := range snap.Scenarios {
		name := lipgloss.NewStyle().Foreground(lipgloss.Color(v.Color)).Width(16).Render(truncate(v.Name, 15))
		state := dimStyle.Render(string(v.PageState))
		lines = append(lines, name+" "+track(v, width)+" "+state)
	}
	lines = append(lines, strings.Repeat(" ", 17)+cursorLine(snap, width))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// bar draws a horizontal bar of pct percent of width columns.
func bar(pct float64, width int, color lipgloss.Color) string {
	n := int(pct / 100 * float64(width))
	if n == 0 && pct > 0 {
		n = 1
	}
	return lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", n))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
