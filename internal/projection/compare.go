package projection

import (
	"errors"
	"fmt"

	"github.com/m-lab/rendersim/pkg/render1/model"
)

// ErrUnknownMetric is returned by Compare for metric keys without thresholds.
var ErrUnknownMetric = errors.New("unknown metric")

// Threshold holds the upper bounds of the good and acceptable ranges of a
// timing metric, in milliseconds.
type Threshold struct {
	GoodMs       float64 `json:"goodMs"`
	AcceptableMs float64 `json:"acceptableMs"`
}

// Rate classifies value against t.
func (t Threshold) Rate(value float64) model.Rating {
	switch {
	case value <= t.GoodMs:
		return model.RatingGood
	case value <= t.AcceptableMs:
		return model.RatingAcceptable
	default:
		return model.RatingPoor
	}
}

// Thresholds maps every timing metric to its rating thresholds.
var Thresholds = map[model.MetricKey]Threshold{
	model.MetricTTFB: {GoodMs: 100, AcceptableMs: 300},
	model.MetricFCP:  {GoodMs: 200, AcceptableMs: 500},
	model.MetricLCP:  {GoodMs: 250, AcceptableMs: 600},
	model.MetricTTI:  {GoodMs: 300, AcceptableMs: 800},
}

// Rate classifies value for the given metric.
func Rate(metric model.MetricKey, value float64) (model.Rating, error) {
	t, ok := Thresholds[metric]
	if !ok {
		return "", fmt.Errorf("%s: %w", metric, ErrUnknownMetric)
	}
	return t.Rate(value), nil
}

// Compare returns one bar per scenario for the given metric. Bar widths are
// relative to the largest value among scenarios; when every value is zero,
// every width is zero.
func Compare(metric model.MetricKey, scenarios []model.Scenario) ([]model.ComparisonBar, error) {
	t, ok := Thresholds[metric]
	if !ok {
		return nil, fmt.Errorf("%s: %w", metric, ErrUnknownMetric)
	}
	max := 0.0
	for _, s := range scenarios {
		if v, _ := s.Metrics.Value(metric); v > max {
			max = v
		}
	}
	bars := make([]model.ComparisonBar, 0, len(scenarios))
	for _, s := range scenarios {
		v, _ := s.Metrics.Value(metric)
		bars = append(bars, model.ComparisonBar{
			ScenarioID: s.ID,
			Name:       s.Name,
			Color:      s.Color,
			Value:      v,
			WidthPct:   Position(v, max),
			Rating:     t.Rate(v),
		})
	}
	return bars, nil
}
