package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/evrange/app"
	"github.com/kilianp07/evrange/infra/logger"
	"github.com/kilianp07/evrange/pkg/export"
)

var (
	replayFormat string
	replayOutput string
)

var replayCmd = &cobra.Command{
	Use:   "replay <trace>",
	Short: "Replay a recorded trace through the estimator",
	Args:  cobra.ExactArgs(1),
	RunE:  runReplay,
}

func init() {
	replayCmd.Flags().StringVarP(&replayFormat, "format", "f", "table", "output format: table, json or csv")
	replayCmd.Flags().StringVarP(&replayOutput, "output", "o", "", "write reports to this file instead of stdout")
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	switch replayFormat {
	case "table", "json", "csv":
	default:
		return fmt.Errorf("unknown format %q", replayFormat)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	trace, err := app.LoadTrace(args[0])
	if err != nil {
		return fmt.Errorf("load trace: %w", err)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, err := app.New(cfg, app.WithLogger(logger.New("replay")))
	if err != nil {
		return err
	}
	defer closeOrWarn(cmd, "service", svc.Close)

	res, err := svc.Replay(ctx, trace)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if replayOutput != "" {
		f, err := os.Create(replayOutput)
		if err != nil {
			return err
		}
		defer closeOrWarn(cmd, replayOutput, f.Close)
		out = f
	}
	return writeReplay(out, replayFormat, res)
}

func writeReplay(w io.Writer, format string, res app.ReplayResult) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "csv":
		return export.WriteCSV(w, res.Reports)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STEP\tSOC\tSAMPLES\tAVG kWh/km\tRANGE km\tNOTE")
	for i, r := range res.Reports {
		note := ""
		if err, ok := res.Errors[i]; ok {
			note = "rejected: " + err.Error()
		} else if r.Fallback {
			note = "fallback"
		}
		fmt.Fprintf(tw, "%d\t%.2f\t%d\t%.3f\t%.1f\t%s\n", i, r.SoC, r.Samples, r.AvgConsumption, r.RangeKm, note)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	s := res.Summary
	_, err := fmt.Fprintf(w, "\nrun %s: %d steps, %d rejected, %d fallback\nrange km: min %.1f  median %.1f  mean %.1f  p95 %.1f  max %.1f\n",
		res.RunID, s.Steps, s.Rejected, s.Fallbacks, s.MinKm, s.MedianKm, s.MeanKm, s.P95Km, s.MaxKm)
	return err
}
