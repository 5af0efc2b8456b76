package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Veraticus/flcheck/internal/cli"
	"github.com/Veraticus/flcheck/internal/common"
	"github.com/Veraticus/flcheck/internal/config"
	"github.com/Veraticus/flcheck/internal/engine"
	"github.com/Veraticus/flcheck/internal/exporter"
	"github.com/Veraticus/flcheck/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func validateCmd() *cobra.Command {
	var (
		noSave       bool
		noExport     bool
		jsonOutput   bool
		skipMask     bool
		allowMixed   bool
		hideProgress bool
	)

	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate candidate codes and produce upload files",
		Long: `Validate reads candidate functional locations, one per line, from a file or stdin.
Codes are checked against the generic mask and the guideline templates, compared with
the reference snapshots, and the missing values are written as upload CSV files.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(nil)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return common.NewUserError("Configuration is incomplete", err)
			}

			raw, err := readInput(cmd, argOrEmpty(args))
			if err != nil {
				return err
			}

			resources, err := engine.LoadResources(sourcesFromConfig(cfg), logger)
			if err != nil {
				return fmt.Errorf("failed to load resources: %w", err)
			}

			eng := engine.NewWithConfig(resources, engine.Config{
				SkipMask:         skipMask,
				AllowMixedLevels: allowMixed,
			}, logger)
			if !hideProgress && !jsonOutput {
				progress := cli.NewStageProgress(cmd.ErrOrStderr())
				progress.SetLogger(logger)
				eng.SetProgress(progress)
			}

			handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
			handler.SetLogger(logger)
			ctx := handler.HandleInterrupts(cmd.Context(), "Validation")

			report, err := eng.Run(ctx, raw)
			if err != nil {
				if handler.WasInterrupted() {
					return common.NewUserError("Validation interrupted", err)
				}
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return fmt.Errorf("failed to encode report: %w", err)
				}
			} else if err := cli.RenderReport(cmd.OutOrStdout(), report); err != nil {
				return fmt.Errorf("failed to render report: %w", err)
			}

			if !noExport {
				if err := exportReport(cmd, cfg, report); err != nil {
					return err
				}
			}

			if !noSave {
				if err := saveReport(cmd, cfg, report); err != nil {
					common.LogError(logger, err, "Failed to save run", common.Fields{"run": report.RunID})
				}
			}

			if !report.OK() {
				return common.NewUserError(
					fmt.Sprintf("Validation failed (%s)", report.Status), common.ErrValidationFailures)
			}
			return nil
		},
	}

	cmd.Flags().String("output-dir", "", "directory for upload CSV files")
	cmd.Flags().String("workbook", "", "write a diagnostic xlsx workbook to this path")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not record the run in the history database")
	cmd.Flags().BoolVar(&noExport, "no-export", false, "do not write upload files or the workbook")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the report as JSON")
	cmd.Flags().BoolVar(&skipMask, "skip-mask", false, "skip the generic mask check")
	cmd.Flags().BoolVar(&allowMixed, "allow-mixed-levels", false, "accept candidates spanning several level-1 or level-2 values")
	cmd.Flags().BoolVar(&hideProgress, "no-progress", false, "hide the progress bar")

	_ = viper.BindPFlag(config.KeyOutputDir, cmd.Flags().Lookup("output-dir"))
	_ = viper.BindPFlag(config.KeyWorkbook, cmd.Flags().Lookup("workbook"))

	return cmd
}

func exportReport(cmd *cobra.Command, cfg *config.Config, report *engine.Report) error {
	if report.Status == engine.StatusCompleted {
		if err := os.MkdirAll(cfg.OutputDir, 0o750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		paths, err := exporter.WriteUploadFiles(cfg.OutputDir, report.AllRecords())
		if err != nil {
			return fmt.Errorf("failed to write upload files: %w", err)
		}
		common.LogInfo(logger, "Wrote upload files", common.Fields{"dir": cfg.OutputDir, "files": len(paths)})
		for _, p := range paths {
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Wrote "+p))
		}
	}

	if cfg.Workbook != "" {
		if err := exporter.WriteWorkbook(cfg.Workbook, report); err != nil {
			return fmt.Errorf("failed to write workbook: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Wrote "+cfg.Workbook))
	}
	return nil
}

func saveReport(cmd *cobra.Command, cfg *config.Config, report *engine.Report) error {
	store, err := initStorage(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			logger.Warn("Failed to close database", "error", closeErr)
		}
	}()

	return store.SaveRun(cmd.Context(), runSummary(report), report.Outcomes, report.Findings)
}

func runSummary(report *engine.Report) model.RunSummary {
	return model.RunSummary{
		StartedAt:      report.StartedAt,
		ID:             report.RunID,
		Technology:     report.Technology,
		Country:        report.Country,
		Status:         string(report.Status),
		CandidateCount: len(report.Codes),
		ValidCount:     report.ValidCount(),
		RecordCount:    report.RecordCount(),
		Duration:       report.Duration,
	}
}
