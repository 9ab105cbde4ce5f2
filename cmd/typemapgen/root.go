// Copyright (c) 2025 Visvasity LLC

package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "typemapgen",
	Short: "Generate fixed typemap container types from a schema manifest",
	Long: `Typemapgen turns a declarative list of known types into a concrete
fixed-layout container type with typed access per declared type, an
optional open extension for types not known in advance, and per-capability
iteration over everything stored.

Quick start:
  typemapgen validate   # Check the manifest without writing anything
  typemapgen generate   # Emit one <mapname>.typemap.go file per declared map`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "typemaps.yaml", "schema manifest path")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}
