package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/flcheck/internal/engine"
	"github.com/Veraticus/flcheck/internal/model"
)

// maxListed bounds how many items of a long list are printed.
const maxListed = 20

// RenderReport writes a human readable summary of a validation run.
func RenderReport(w io.Writer, r *engine.Report) error {
	var b strings.Builder

	b.WriteString(FormatTitle("Functional location check"))
	b.WriteString("\n")

	summary := fmt.Sprintf("Run:        %s\n", r.RunID) +
		fmt.Sprintf("Country:    %s\n", labelled(r.Country, r.CountryName)) +
		fmt.Sprintf("Technology: %s\n", labelled(r.Technology, r.TechnologyName)) +
		fmt.Sprintf("Codes:      %d\n", len(r.Codes)) +
		fmt.Sprintf("Valid:      %d\n", r.ValidCount()) +
		fmt.Sprintf("Records:    %d\n", r.RecordCount()) +
		fmt.Sprintf("Duration:   %s", r.Duration.Round(time.Millisecond))
	b.WriteString(RenderBox(statusLine(r.Status), summary))
	b.WriteString("\n\n")

	if len(r.Violations) > 0 {
		b.WriteString(FormatError(fmt.Sprintf("%d lines do not respect the mask", len(r.Violations))))
		b.WriteString("\n")
		rows := make([][]string, 0, len(r.Violations))
		for _, v := range r.Violations {
			rows = append(rows, []string{strconv.Itoa(v.Line), v.Code})
		}
		b.WriteString(RenderTable([]string{"Line", "Code"}, truncate(rows)))
		b.WriteString("\n\n")
	}

	if invalid := r.Invalid(); len(invalid) > 0 {
		b.WriteString(FormatError(fmt.Sprintf("%d codes failed verification", len(invalid))))
		b.WriteString("\n")
		rows := make([][]string, 0, len(invalid))
		for _, o := range invalid {
			rows = append(rows, []string{o.Code, string(o.Status), o.Message})
		}
		b.WriteString(RenderTable([]string{"Code", "Status", "Message"}, truncate(rows)))
		b.WriteString("\n\n")
	}

	if r.Partition != nil && !r.PartitionValid {
		b.WriteString(FormatWarning("Classification partition is unsound: " + r.PartitionReason))
		b.WriteString("\n\n")
	}

	for _, d := range r.Differences {
		if len(d.Values) == 0 {
			continue
		}
		b.WriteString(FormatInfo(fmt.Sprintf("%s: %d new values", d.Name, len(d.Values))))
		b.WriteString("\n  ")
		b.WriteString(SubtleStyle.Render(joinLimited(d.Values)))
		b.WriteString("\n")
	}

	if len(r.Findings) > 0 {
		b.WriteString("\n")
		b.WriteString(FormatWarning(fmt.Sprintf("%d findings", len(r.Findings))))
		b.WriteString("\n")
		rows := make([][]string, 0, len(r.Findings))
		for _, f := range r.Findings {
			rows = append(rows, []string{string(f.Kind), f.Subject, f.Message})
		}
		b.WriteString(RenderTable([]string{"Kind", "Subject", "Message"}, truncate(rows)))
		b.WriteString("\n")
	}

	if r.RecordCount() > 0 {
		b.WriteString("\n")
		rows := [][]string{}
		for _, kind := range model.TableKinds() {
			if n := len(r.Records[kind]); n > 0 {
				rows = append(rows, []string{string(kind), strconv.Itoa(n)})
			}
		}
		b.WriteString(RenderTable([]string{"Table", "Records"}, rows))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderRuns writes a table of stored runs.
func RenderRuns(w io.Writer, runs []model.RunSummary) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, FormatInfo("No runs recorded yet."))
		return err
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			run.Country,
			run.Technology,
			run.Status,
			fmt.Sprintf("%d/%d", run.ValidCount, run.CandidateCount),
			strconv.Itoa(run.RecordCount),
		})
	}
	_, err := fmt.Fprintln(w, RenderTable(
		[]string{"ID", "Started", "Country", "Tech", "Status", "Valid", "Records"}, rows))
	return err
}

// RenderOutcomes writes the per-code outcomes of a stored run.
func RenderOutcomes(w io.Writer, outcomes []model.MatchOutcome) error {
	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		status := SuccessStyle.Render(string(o.Status))
		if !o.Valid() {
			status = ErrorStyle.Render(string(o.Status))
		}
		rows = append(rows, []string{strconv.Itoa(o.Index), o.Code, status, o.Pattern})
	}
	_, err := fmt.Fprintln(w, RenderTable([]string{"#", "Code", "Status", "Pattern"}, rows))
	return err
}

func statusLine(status engine.RunStatus) string {
	switch status {
	case engine.StatusCompleted:
		return SuccessIcon + " Upload records ready"
	case engine.StatusUpToDate:
		return SuccessIcon + " Reference tables are up to date"
	case engine.StatusMaskFailed:
		return ErrorIcon + " Mask check failed"
	case engine.StatusInvalid:
		return ErrorIcon + " Verification failed"
	default:
		return string(status)
	}
}

func labelled(code, name string) string {
	if name == "" {
		return code
	}
	return code + " (" + name + ")"
}

func truncate(rows [][]string) [][]string {
	if len(rows) <= maxListed {
		return rows
	}
	out := append([][]string{}, rows[:maxListed]...)
	return append(out, []string{"…", fmt.Sprintf("%d more", len(rows)-maxListed)})
}

func joinLimited(values []string) string {
	if len(values) <= maxListed {
		return strings.Join(values, ", ")
	}
	return strings.Join(values[:maxListed], ", ") + fmt.Sprintf(", … (%d more)", len(values)-maxListed)
}
