package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/evrange/config"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:           "evrange",
	Short:         "Electric vehicle range estimator",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// loadConfig reads the configuration file. A missing default file yields the
// built-in defaults; a missing file named explicitly is an error.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		return config.Default(), nil
	}
	return nil, fmt.Errorf("load config: %w", err)
}

func closeOrWarn(cmd *cobra.Command, what string, close func() error) {
	if err := close(); err != nil {
		if _, ferr := fmt.Fprintf(cmd.ErrOrStderr(), "error while closing %s: %v\n", what, err); ferr != nil {
			fmt.Fprintln(os.Stderr, "failed to write to stderr:", ferr)
		}
	}
}
