package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Veraticus/flcheck/internal/common"
	"github.com/Veraticus/flcheck/internal/config"
	"github.com/Veraticus/flcheck/internal/engine"
	"github.com/Veraticus/flcheck/internal/service"
	"github.com/Veraticus/flcheck/internal/storage"
	"github.com/spf13/cobra"
)

// initStorage opens the run history database and brings its schema up to date.
func initStorage(ctx context.Context, cfg *config.Config) (service.RunStore, error) {
	dbPath := cfg.DatabasePath
	if dbPath == "" {
		dbPath = config.ExpandPath(config.DefaultDatabasePath)
	}
	if err := config.EnsureParentDir(dbPath); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}
	store.SetLogger(logger)
	common.LogDebug(logger, "Opened run history", common.Fields{"path": dbPath})

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// sourcesFromConfig maps the configured file locations onto engine sources.
func sourcesFromConfig(cfg *config.Config) engine.Sources {
	return engine.Sources{
		RulesFile:      cfg.RulesFile,
		GuidelineFiles: cfg.GuidelineFiles,
		CategoriesFile: cfg.CategoriesFile,
		CountryFile:    cfg.CountryFile,
		TechnologyFile: cfg.TechnologyFile,
		LevelsFile:     cfg.Reference.FLLevels,
		CtrlAssFile:    cfg.Reference.CtrlAss,
		GuidelineFile:  cfg.Reference.GLTFL,
	}
}

// readInput returns the contents of path, or of the command's stdin for "" and "-".
func readInput(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", common.NewUserError("Could not read candidate codes", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", common.NewUserError("No candidate codes given", common.ErrEmptyInput)
	}
	return string(data), nil
}

func argOrEmpty(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
