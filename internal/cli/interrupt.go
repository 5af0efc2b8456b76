package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/Veraticus/flcheck/internal/common"
)

// InterruptHandler cancels a run on SIGINT or SIGTERM and tells the user what happened.
type InterruptHandler struct {
	writer      io.Writer
	logger      *slog.Logger
	cancelFunc  context.CancelFunc
	operation   string
	interrupted bool
	mu          sync.Mutex
}

// NewInterruptHandler creates a handler that reports to writer, or stdout when nil.
func NewInterruptHandler(writer io.Writer) *InterruptHandler {
	if writer == nil {
		writer = os.Stdout
	}
	return &InterruptHandler{writer: writer, logger: common.NopLogger(), operation: "Validation"}
}

// SetLogger sets the logger used to report terminal write failures.
func (h *InterruptHandler) SetLogger(logger *slog.Logger) {
	h.logger = common.OrNop(logger)
}

// HandleInterrupts returns a context canceled on the first interrupt signal.
// The operation name is used in the message shown to the user.
func (h *InterruptHandler) HandleInterrupts(ctx context.Context, operation string) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	h.cancelFunc = cancel
	if operation != "" {
		h.operation = operation
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case <-sigChan:
			h.interrupt()
		case <-ctx.Done():
		}
	}()

	return ctx
}

func (h *InterruptHandler) interrupt() {
	h.mu.Lock()
	if !h.interrupted {
		h.interrupted = true
		msg := "\n\n" + FormatWarning(h.operation+" interrupted!") +
			"\n" + FormatInfo("No upload files were written for this run.") + "\n"
		if _, err := fmt.Fprint(h.writer, msg); err != nil {
			h.logger.Warn("Failed to write interrupt message", "error", err)
		}
	}
	h.mu.Unlock()
	if h.cancelFunc != nil {
		h.cancelFunc()
	}
}

// WasInterrupted returns true if the process was interrupted.
func (h *InterruptHandler) WasInterrupted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.interrupted
}
