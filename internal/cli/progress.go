package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/Veraticus/flcheck/internal/common"
	"github.com/Veraticus/flcheck/internal/engine"
	"github.com/schollz/progressbar/v3"
)

// StageProgress shows engine stages on a progress bar.
type StageProgress struct {
	writer io.Writer
	logger *slog.Logger
	bar    *progressbar.ProgressBar
}

var _ engine.Progress = (*StageProgress)(nil)

// NewStageProgress creates a progress bar writing to writer.
func NewStageProgress(writer io.Writer) *StageProgress {
	return &StageProgress{writer: writer, logger: common.NopLogger()}
}

// SetLogger sets the logger used to report terminal write failures.
func (p *StageProgress) SetLogger(logger *slog.Logger) {
	p.logger = common.OrNop(logger)
}

// Stage advances the bar to the given stage.
func (p *StageProgress) Stage(name string, index, total int) {
	if p.bar == nil {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(p.writer),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(30),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
			progressbar.OptionOnCompletion(func() {
				if _, err := fmt.Fprintln(p.writer); err != nil {
					p.logger.Warn("Failed to write newline after progress bar", "error", err)
				}
			}),
		)
	}

	p.bar.Describe(fmt.Sprintf("[cyan][bold]%-12s[reset]", name))
	if err := p.bar.Set(index - 1); err != nil {
		p.logger.Warn("Failed to update progress bar", "error", err)
	}
}

// Done completes the bar.
func (p *StageProgress) Done() {
	if p.bar == nil {
		return
	}
	if err := p.bar.Finish(); err != nil {
		p.logger.Warn("Failed to finish progress bar", "error", err)
	}
}
