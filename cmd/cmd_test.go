package cmd

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/evrange/core/model"
)

func writeTemp(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		estimateSoC = -1
		estimateSegments = nil
		estimateJSON = false
		replayFormat = "table"
		replayOutput = ""
	})
	err := rootCmd.Execute()
	return out.String(), err
}

const testConfig = `vehicle:
  id: "test-ev"
  battery_kwh: 50
estimator:
  window_size: 5
`

func TestParseSegment(t *testing.T) {
	seg, err := parseSegment("42.5: 8.5")
	require.NoError(t, err)
	assert.Equal(t, model.DrivingSegment{DistanceKm: 42.5, EnergyKWh: 8.5}, seg)

	for _, bad := range []string{"42", "x:1", "1:y"} {
		_, err := parseSegment(bad)
		assert.Error(t, err, bad)
	}
}

func TestEstimateCommand(t *testing.T) {
	cfg := writeTemp(t, "config.yaml", testConfig)
	out, err := execute(t, "estimate", "--config", cfg, "--soc", "0.5", "--segment", "100:20", "--json")
	require.NoError(t, err)

	var r model.RangeReport
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, "test-ev", r.VehicleID)
	assert.Equal(t, 0.5, r.SoC)
	assert.InDelta(t, 125.0, r.RangeKm, 1e-9)
	assert.Equal(t, 5, r.WindowSize)
}

func TestEstimateCommandText(t *testing.T) {
	cfg := writeTemp(t, "config.yaml", testConfig)
	out, err := execute(t, "estimate", "--config", cfg, "--soc", "0.5")
	require.NoError(t, err)
	assert.Contains(t, out, "vehicle test-ev: 125.0 km")
	assert.Contains(t, out, "default range factor")
}

func TestEstimateCommandRejectsSegment(t *testing.T) {
	cfg := writeTemp(t, "config.yaml", testConfig)
	_, err := execute(t, "estimate", "--config", cfg, "--segment", "0:5")
	assert.Error(t, err)
}

func TestEstimateCommandMissingConfig(t *testing.T) {
	_, err := execute(t, "estimate", "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

const testTrace = `name: short
steps:
  - soc: 0.8
  - distance_km: 50
    energy_kwh: 10
  - distance_km: 0
    energy_kwh: 1
`

func TestReplayCommandCSV(t *testing.T) {
	cfg := writeTemp(t, "config.yaml", testConfig)
	trace := writeTemp(t, "trace.yaml", testTrace)
	out, err := execute(t, "replay", trace, "--config", cfg, "--format", "csv")
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "200.000", rows[1][8])
	assert.Equal(t, "true", rows[1][9])
}

func TestReplayCommandTableToFile(t *testing.T) {
	cfg := writeTemp(t, "config.yaml", testConfig)
	trace := writeTemp(t, "trace.yaml", testTrace)
	dest := filepath.Join(t.TempDir(), "out.txt")
	_, err := execute(t, "replay", trace, "--config", cfg, "--output", dest)
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "STEP")
	assert.Contains(t, text, "rejected: ")
	assert.Contains(t, text, "3 steps, 1 rejected, 1 fallback")
}

func TestReplayCommandErrors(t *testing.T) {
	cfg := writeTemp(t, "config.yaml", testConfig)
	trace := writeTemp(t, "trace.yaml", testTrace)

	_, err := execute(t, "replay", trace, "--config", cfg, "--format", "xml")
	assert.Error(t, err)

	_, err = execute(t, "replay", filepath.Join(t.TempDir(), "none.yaml"), "--config", cfg)
	assert.Error(t, err)

	_, err = execute(t, "replay", "--config", cfg)
	assert.Error(t, err)
}
