package main

import (
	"fmt"
	"strconv"

	"github.com/Veraticus/flcheck/internal/cli"
	"github.com/Veraticus/flcheck/internal/common"
	"github.com/Veraticus/flcheck/internal/config"
	"github.com/Veraticus/flcheck/internal/engine"
	"github.com/Veraticus/flcheck/internal/table"
	"github.com/spf13/cobra"
)

func compileCmd() *cobra.Command {
	var (
		length  int
		outFile string
	)

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Show the guideline templates compiled to regular expressions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(nil)
			if err != nil {
				return err
			}
			if err := cfg.ValidateTemplates(); err != nil {
				return common.NewUserError("Configuration is incomplete", err)
			}

			ts, findings, err := engine.LoadTemplates(cfg.RulesFile, cfg.GuidelineFiles, logger)
			if err != nil {
				return fmt.Errorf("failed to compile templates: %w", err)
			}

			if outFile != "" {
				t := ts.Table()
				if err := table.WriteCSVFile(outFile, t.Header, t.Rows); err != nil {
					return fmt.Errorf("failed to write %s: %w", outFile, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Wrote "+outFile))
				return nil
			}

			out := cmd.OutOrStdout()
			for _, l := range ts.Lengths() {
				if length > 0 && l != length {
					continue
				}
				fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("Length %d", l)))
				var rows [][]string
				for _, tpl := range ts.ForLength(l) {
					rows = append(rows, []string{tpl.Source, strconv.Itoa(tpl.Row), tpl.FL, tpl.Regex})
				}
				fmt.Fprintln(out, cli.RenderTable([]string{"Source", "Row", "Template", "Regex"}, rows))
				fmt.Fprintln(out)
			}

			for _, f := range findings {
				fmt.Fprintln(out, cli.FormatWarning(f.String()))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&length, "length", 0, "only show templates with this number of levels")
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "write the compiled templates to a CSV file")

	return cmd
}
