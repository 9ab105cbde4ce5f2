// Copyright (c) 2025 Visvasity LLC

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"golang.org/x/tools/go/packages"

	"github.com/visvasity/typemapgen/gen"
	"github.com/visvasity/typemapgen/schema"
)

var watchMode bool

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate container types declared in the manifest",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		if err := runGenerate(logger, cfgFile); err != nil {
			if !watchMode {
				return err
			}
			// In watch mode a broken schema is a state to recover from, not
			// a reason to exit.
			logger.Error().Err(err).Msg("generation failed")
		}
		if watchMode {
			return watchLoop(logger, cfgFile)
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().BoolVar(&watchMode, "watch", false, "regenerate when the manifest or package sources change")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(logger zerolog.Logger, cfgPath string) error {
	g, pkg, err := plan(logger, cfgPath)
	if err != nil {
		return err
	}

	outDir, err := packageDir(pkg)
	if err != nil {
		return err
	}

	for _, name := range g.Maps() {
		src := g.GetSource(name)
		out := filepath.Join(outDir, g.OutputName(name))
		if err := os.WriteFile(out, src, 0644); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		logger.Info().Str("map", name).Str("file", out).Msg("generated")
	}
	return nil
}

// plan loads the manifest and the target package, plans every declared map,
// and returns a generator holding the emitted source. Any authoring error
// halts before a single file is written.
func plan(logger zerolog.Logger, cfgPath string) (*gen.Generator, *packages.Package, error) {
	f, err := schema.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}

	pkg, err := gen.LoadPackage(filepath.Dir(cfgPath), f.Package)
	if err != nil {
		return nil, nil, err
	}
	// Load errors are warnings: handwritten code may reference declarations
	// the generator is about to (re)produce.
	for _, e := range pkg.Errors {
		logger.Warn().Str("package", pkg.PkgPath).Msg(e.Msg)
	}

	g := gen.NewGenerator(pkg)
	for _, m := range f.Maps {
		l, err := gen.Plan(pkg, m)
		if err != nil {
			return nil, nil, err
		}
		if err := g.Generate(l); err != nil {
			return nil, nil, err
		}
		logger.Debug().Str("map", m.Name).Int("fields", len(m.Fields)).Bool("dynamic", m.Dynamic).Msg("planned")
	}
	return g, pkg, nil
}

func packageDir(pkg *packages.Package) (string, error) {
	if len(pkg.GoFiles) == 0 {
		return "", fmt.Errorf("package %q has no Go files", pkg.PkgPath)
	}
	return filepath.Dir(pkg.GoFiles[0]), nil
}
