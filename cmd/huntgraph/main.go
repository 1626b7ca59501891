package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var version = "0.3.0"

var (
	cfgPath  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "huntgraph",
	Short: "huntgraph: strategy and lead knowledge graph",
	Long: brand.Sprint("huntgraph") + ": materializes the lead-hunting knowledge graph\n" +
		subtle.Sprint("Serves the filtered view over HTTP or prints a one-off snapshot"),
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := parseLevel(logLevel)
		if err != nil {
			return err
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.SetVersionTemplate("huntgraph {{ .Version }}\n")
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to a YAML or TOML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		serveCmd(),
		snapshotCmd(),
	)
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		bad.Fprintf(os.Stderr, "huntgraph: %v\n", err)
		os.Exit(1)
	}
}
