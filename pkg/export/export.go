package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/kilianp07/evrange/core/model"
)

// CSVHeader is the first row written by WriteCSV.
var CSVHeader = []string{
	"time", "vehicle_id", "soc", "battery_kwh", "avg_consumption_kwh_per_km",
	"std_consumption_kwh_per_km", "samples", "window_size", "range_km", "fallback",
}

// WriteJSON writes the range reports to w in JSON format.
func WriteJSON(w io.Writer, reports []model.RangeReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(reports)
}

// WriteCSV writes the range reports to w in CSV format, one row per report.
func WriteCSV(w io.Writer, reports []model.RangeReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, r := range reports {
		rec := []string{
			r.Time.UTC().Format(time.RFC3339),
			r.VehicleID,
			formatFloat(r.SoC),
			formatFloat(r.BatteryKWh),
			formatFloat(r.AvgConsumption),
			formatFloat(r.StdConsumption),
			strconv.Itoa(r.Samples),
			strconv.Itoa(r.WindowSize),
			strconv.FormatFloat(r.RangeKm, 'f', 3, 64),
			strconv.FormatBool(r.Fallback),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
