package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilianp07/evrange/app"
	"github.com/kilianp07/evrange/core/model"
	"github.com/kilianp07/evrange/infra/logger"
)

var (
	estimateSoC      float64
	estimateSegments []string
	estimateJSON     bool
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate the range for a state of charge and driving segments",
	Example: `  evrange estimate --soc 0.6
  evrange estimate --soc 0.6 --segment 42:8.4 --segment 10:1.7`,
	RunE: runEstimate,
}

func init() {
	estimateCmd.Flags().Float64Var(&estimateSoC, "soc", -1, "state of charge in [0,1] (defaults to estimator.initial_soc)")
	estimateCmd.Flags().StringArrayVarP(&estimateSegments, "segment", "s", nil, "driving segment as distance_km:energy_kwh, repeatable")
	estimateCmd.Flags().BoolVar(&estimateJSON, "json", false, "print the report as JSON")
	rootCmd.AddCommand(estimateCmd)
}

func runEstimate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	segments := make([]model.DrivingSegment, 0, len(estimateSegments))
	for _, raw := range estimateSegments {
		seg, err := parseSegment(raw)
		if err != nil {
			return err
		}
		segments = append(segments, seg)
	}

	svc, err := app.New(cfg, app.WithLogger(logger.New("estimate")))
	if err != nil {
		return err
	}
	defer closeOrWarn(cmd, "service", svc.Close)

	if cmd.Flags().Changed("soc") {
		svc.SetStateOfCharge(estimateSoC)
	}
	for _, seg := range segments {
		if _, err := svc.AddDrivingData(seg.DistanceKm, seg.EnergyKWh); err != nil {
			return fmt.Errorf("segment %g:%g: %w", seg.DistanceKm, seg.EnergyKWh, err)
		}
	}

	report := svc.Report()
	if estimateJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return printReport(cmd.OutOrStdout(), report)
}

// parseSegment parses "distance:energy".
func parseSegment(s string) (model.DrivingSegment, error) {
	d, e, ok := strings.Cut(s, ":")
	if !ok {
		return model.DrivingSegment{}, fmt.Errorf("segment %q: expected distance_km:energy_kwh", s)
	}
	dist, err := strconv.ParseFloat(strings.TrimSpace(d), 64)
	if err != nil {
		return model.DrivingSegment{}, fmt.Errorf("segment %q: distance: %w", s, err)
	}
	energy, err := strconv.ParseFloat(strings.TrimSpace(e), 64)
	if err != nil {
		return model.DrivingSegment{}, fmt.Errorf("segment %q: energy: %w", s, err)
	}
	return model.DrivingSegment{DistanceKm: dist, EnergyKWh: energy}, nil
}

func printReport(w io.Writer, r model.RangeReport) error {
	source := "average consumption"
	if r.Fallback {
		source = "default range factor"
	}
	_, err := fmt.Fprintf(w, "vehicle %s: %.1f km (soc %.0f%%, %.1f kWh left, %d/%d samples, %s)\n",
		r.VehicleID, r.RangeKm, r.SoC*100, r.UsableEnergyKWh(), r.Samples, r.WindowSize, source)
	return err
}
