package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/flcheck/internal/cli"
	"github.com/Veraticus/flcheck/internal/common"
	"github.com/Veraticus/flcheck/internal/config"
	"github.com/Veraticus/flcheck/internal/service"
	"github.com/Veraticus/flcheck/internal/storage"
	"github.com/spf13/cobra"
)

func runsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect the history of validation runs",
	}
	cmd.AddCommand(runsListCmd())
	cmd.AddCommand(runsShowCmd())
	return cmd
}

func runsListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(store service.RunStore) error {
				runs, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				return cli.RenderRuns(cmd.OutOrStdout(), runs)
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", storage.DefaultRunLimit, "maximum number of runs to show")
	return cmd
}

func runsShowCmd() *cobra.Command {
	var showFindings bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the outcomes of one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(store service.RunStore) error {
				run, err := store.GetRun(cmd.Context(), args[0])
				if errors.Is(err, storage.ErrRunNotFound) {
					return common.NewUserError("No run with id "+args[0], err)
				}
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				summary := fmt.Sprintf("Started:    %s\n", run.StartedAt.Local().Format(time.RFC3339)) +
					fmt.Sprintf("Country:    %s\n", run.Country) +
					fmt.Sprintf("Technology: %s\n", run.Technology) +
					fmt.Sprintf("Valid:      %d/%d\n", run.ValidCount, run.CandidateCount) +
					fmt.Sprintf("Records:    %d\n", run.RecordCount) +
					fmt.Sprintf("Duration:   %s", run.Duration.Round(time.Millisecond))
				fmt.Fprintln(out, cli.RenderBox(run.ID+" ("+run.Status+")", summary))

				outcomes, err := store.GetRunOutcomes(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				if len(outcomes) > 0 {
					if err := cli.RenderOutcomes(out, outcomes); err != nil {
						return err
					}
				}

				if !showFindings {
					return nil
				}
				findings, err := store.GetRunFindings(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				for _, f := range findings {
					fmt.Fprintln(out, cli.FormatWarning(f.String()))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&showFindings, "findings", false, "also list the run's findings")
	return cmd
}

func withStore(cmd *cobra.Command, fn func(service.RunStore) error) error {
	cfg, err := config.Load(nil)
	if err != nil {
		return err
	}
	store, err := initStorage(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			logger.Warn("Failed to close database", "error", closeErr)
		}
	}()
	return fn(store)
}
