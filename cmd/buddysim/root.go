package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/QuangTung97/buddysim/config"
	"github.com/QuangTung97/buddysim/logger"
)

var (
	// Global flags
	envFile  string
	capacity int
	jsonOut  bool
	verbose  bool
	logLevel string

	conf config.Config
	out  io.Writer = os.Stdout
)

var rootCmd = &cobra.Command{
	Use:   "buddysim",
	Short: "Step through the buddy memory allocation algorithm",
	Long: `buddysim simulates the buddy memory allocation algorithm over a fixed
address space. Every split, merge and assignment is recorded so the whole
allocation history can be replayed step by step.`,
	Version:           "0.1.0",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load settings from this file (default .env)")
	rootCmd.PersistentFlags().IntVarP(&capacity, "capacity", "c", 0, "Memory capacity, rounded up to a power of two")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print every history step")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
}

// setup loads the configuration and lets the flags override it
func setup(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load(envFile)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("capacity") {
		loaded.Capacity = capacity
	}
	if logLevel != "" {
		level, err := logger.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		loaded.LogLevel = level
	}
	if err := loaded.Validate(); err != nil {
		return err
	}

	conf = loaded
	logger.Init(conf.LoggerOptions())
	return nil
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func printf(format string, args ...interface{}) {
	fmt.Fprintf(out, format, args...)
}
