// Copyright (c) 2025 Visvasity LLC

package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/visvasity/typemapgen/gen"
	"github.com/visvasity/typemapgen/schema"
)

// debounceDelay coalesces the event bursts editors produce on save.
const debounceDelay = 250 * time.Millisecond

// watchLoop regenerates whenever the manifest or the target package sources
// change, until interrupted.
func watchLoop(logger zerolog.Logger, cfgPath string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(cfgPath)
	if err := watcher.Add(dir); err != nil {
		return err
	}
	if pkgDir, ok := targetPackageDir(cfgPath); ok && pkgDir != dir {
		if err := watcher.Add(pkgDir); err != nil {
			logger.Warn().Err(err).Str("dir", pkgDir).Msg("cannot watch package directory")
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	debounce := time.NewTimer(debounceDelay)
	if !debounce.Stop() {
		<-debounce.C
	}

	logger.Info().Str("manifest", cfgPath).Msg("watching for changes")
	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(ev, cfgPath) {
				continue
			}
			logger.Debug().Str("file", ev.Name).Str("op", ev.Op.String()).Msg("change detected")
			debounce.Reset(debounceDelay)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("watch error")

		case <-debounce.C:
			if err := runGenerate(logger, cfgPath); err != nil {
				logger.Error().Err(err).Msg("generation failed")
			}

		case <-sigCh:
			logger.Info().Msg("stopping watch")
			return nil
		}
	}
}

func targetPackageDir(cfgPath string) (string, bool) {
	f, err := schema.Load(cfgPath)
	if err != nil {
		return "", false
	}
	pkg, err := gen.LoadPackage(filepath.Dir(cfgPath), f.Package)
	if err != nil || len(pkg.GoFiles) == 0 {
		return "", false
	}
	return filepath.Dir(pkg.GoFiles[0]), true
}

// relevant filters out events for the generator's own output; without this a
// run would retrigger itself forever.
func relevant(ev fsnotify.Event, cfgPath string) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}
	if strings.HasSuffix(ev.Name, ".typemap.go") {
		return false
	}
	if strings.HasSuffix(ev.Name, ".go") {
		return true
	}
	return filepath.Clean(ev.Name) == filepath.Clean(cfgPath)
}
