package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"

	"github.com/kilianp07/evrange/core/model"
)

// ReplaySummary describes the distribution of the range estimates produced by
// a replay.
type ReplaySummary struct {
	Steps     int     `json:"steps"`
	Rejected  int     `json:"rejected"`
	Fallbacks int     `json:"fallbacks"`
	MinKm     float64 `json:"min_km"`
	MaxKm     float64 `json:"max_km"`
	MeanKm    float64 `json:"mean_km"`
	MedianKm  float64 `json:"median_km"`
	P95Km     float64 `json:"p95_km"`
}

// ReplayResult holds the reports of one replay run.
type ReplayResult struct {
	RunID   string              `json:"run_id"`
	Trace   string              `json:"trace"`
	Reports []model.RangeReport `json:"reports"`
	// Errors maps step indexes to rejected driving data.
	Errors  map[int]error `json:"-"`
	Summary ReplaySummary `json:"summary"`
}

// Replay feeds every step of the trace to the estimator and collects the
// estimate after each one. Rejected segments do not stop the replay.
func (s *Service) Replay(ctx context.Context, t Trace) (ReplayResult, error) {
	if err := t.Validate(); err != nil {
		return ReplayResult{}, err
	}
	res := ReplayResult{
		RunID:   uuid.NewString(),
		Trace:   t.Name,
		Reports: make([]model.RangeReport, 0, len(t.Steps)),
		Errors:  map[int]error{},
	}
	for i, step := range t.Steps {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("replay interrupted at step %d: %w", i, err)
		}
		if step.SoC != nil {
			s.applySoC(*step.SoC)
		}
		if step.HasSegment() {
			var energy float64
			if step.EnergyKWh != nil {
				energy = *step.EnergyKWh
			}
			if err := s.recordSegment(*step.DistanceKm, energy); err != nil {
				res.Errors[i] = err
			}
		}
		res.Reports = append(res.Reports, s.publishEstimate(TriggerReplay))
	}
	res.Summary = Summarize(res.Reports)
	res.Summary.Rejected = len(res.Errors)
	s.log.Infof("replay %s finished: %d steps, %d rejected", res.RunID, res.Summary.Steps, res.Summary.Rejected)
	return res, nil
}

// Summarize computes range statistics over reports.
func Summarize(reports []model.RangeReport) ReplaySummary {
	sum := ReplaySummary{Steps: len(reports)}
	if len(reports) == 0 {
		return sum
	}
	data := make(stats.Float64Data, 0, len(reports))
	for _, r := range reports {
		data = append(data, r.RangeKm)
		if r.Fallback {
			sum.Fallbacks++
		}
	}
	sum.MinKm, _ = data.Min()
	sum.MaxKm, _ = data.Max()
	sum.MeanKm, _ = data.Mean()
	sum.MedianKm, _ = data.Median()
	p95, err := data.Percentile(95)
	if err != nil {
		// too few samples to interpolate
		p95 = sum.MaxKm
	}
	sum.P95Km = p95
	return sum
}
