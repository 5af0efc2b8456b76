package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Veraticus/flcheck/internal/classification"
	"github.com/Veraticus/flcheck/internal/cli"
	"github.com/Veraticus/flcheck/internal/common"
	"github.com/Veraticus/flcheck/internal/config"
	"github.com/Veraticus/flcheck/internal/engine"
	"github.com/Veraticus/flcheck/internal/hierarchy"
	"github.com/Veraticus/flcheck/internal/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func classifyCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "classify [file]",
		Short: "Partition candidate codes into categories",
		Long: `Classify assigns each candidate code to the first category with a matching pattern.
Categories come from the configured YAML file; without one, each guideline file is a category.
Codes claimed by no category land in Others.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(nil)
			if err != nil {
				return err
			}

			raw, err := readInput(cmd, argOrEmpty(args))
			if err != nil {
				return err
			}

			categories, err := loadCategories(cfg)
			if err != nil {
				return err
			}

			candidates := hierarchy.LevelsTable("candidates", hierarchy.BuildCodes(hierarchy.ParseLines(raw)))
			partition, err := classification.Classify(candidates, categories, hierarchy.ColumnCode, logger)
			if err != nil {
				return fmt.Errorf("failed to classify: %w", err)
			}

			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(partition.Names()))
			for _, b := range partition.Buckets() {
				rows = append(rows, []string{b.Name, strconv.Itoa(len(b.Rows))})
			}
			fmt.Fprintln(out, cli.FormatTitle("Classification"))
			fmt.Fprintln(out, cli.RenderTable([]string{"Category", "Codes"}, rows))

			if ok, reason := classification.ValidatePartition(candidates, partition); !ok {
				fmt.Fprintln(out, cli.FormatWarning("Partition is unsound: "+reason))
			}

			if outDir == "" {
				return nil
			}
			return writeBuckets(cmd, outDir, candidates.Header, partition)
		},
	}

	cmd.Flags().String("categories", "", "category definitions YAML file")
	cmd.Flags().StringVarP(&outDir, "output-dir", "o", "", "write one CSV per category to this directory")
	_ = viper.BindPFlag(config.KeyCategoriesFile, cmd.Flags().Lookup("categories"))

	return cmd
}

func loadCategories(cfg *config.Config) ([]classification.Category, error) {
	if cfg.CategoriesFile != "" {
		categories, err := classification.LoadCategoriesFile(cfg.CategoriesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load categories: %w", err)
		}
		return categories, nil
	}

	if err := cfg.ValidateTemplates(); err != nil {
		return nil, common.NewUserError("Set categories_file or the guideline sources", err)
	}
	ts, _, err := engine.LoadTemplates(cfg.RulesFile, cfg.GuidelineFiles, logger)
	if err != nil {
		return nil, err
	}
	return classification.CategoriesFromTemplates(ts.Templates()), nil
}

func writeBuckets(cmd *cobra.Command, dir string, header []string, p classification.Partition) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	for _, b := range p.Buckets() {
		if len(b.Rows) == 0 {
			continue
		}
		rows := make([][]string, 0, len(b.Rows))
		for _, r := range b.Rows {
			rows = append(rows, r.Values())
		}
		path := filepath.Join(dir, b.Name+".csv")
		if err := table.WriteCSVFile(path, header, rows); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Wrote "+path))
	}
	return nil
}
