// Copyright (c) 2025 Visvasity LLC

package main

import (
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the manifest and target package without writing anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		g, _, err := plan(logger, cfgFile)
		if err != nil {
			return err
		}
		for _, name := range g.Maps() {
			logger.Info().Str("map", name).Msg("ok")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
