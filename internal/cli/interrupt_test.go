package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/Veraticus/flcheck/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInterruptHandler(t *testing.T) {
	tests := []struct {
		writer io.Writer
		name   string
	}{
		{name: "with custom writer", writer: &bytes.Buffer{}},
		{name: "with nil writer", writer: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewInterruptHandler(tt.writer)
			require.NotNil(t, handler)
			assert.NotNil(t, handler.writer)
			assert.False(t, handler.WasInterrupted())
		})
	}
}

func TestInterruptHandler_Interrupt(t *testing.T) {
	var output bytes.Buffer
	handler := NewInterruptHandler(&output)

	ctx := handler.HandleInterrupts(context.Background(), "Compile")
	handler.interrupt()
	handler.interrupt()

	<-ctx.Done()
	assert.True(t, handler.WasInterrupted())
	assert.Equal(t, 1, strings.Count(output.String(), "Compile interrupted!"))
	assert.Contains(t, output.String(), "No upload files were written")
}

func TestInterruptHandler_ParentCancel(t *testing.T) {
	var output bytes.Buffer
	handler := NewInterruptHandler(&output)

	parent, cancel := context.WithCancel(context.Background())
	ctx := handler.HandleInterrupts(parent, "")
	cancel()

	<-ctx.Done()
	assert.False(t, handler.WasInterrupted())
	assert.Empty(t, output.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("terminal closed")
}

func TestInterruptHandler_LogsWriteFailure(t *testing.T) {
	var logs bytes.Buffer
	logger, err := common.NewLogger(&logs, slog.LevelWarn, "json")
	require.NoError(t, err)

	handler := NewInterruptHandler(failingWriter{})
	handler.SetLogger(logger)
	_ = handler.HandleInterrupts(context.Background(), "")
	handler.interrupt()

	assert.True(t, handler.WasInterrupted())
	assert.Contains(t, logs.String(), "Failed to write interrupt message")
	assert.Contains(t, logs.String(), "terminal closed")

	handler.SetLogger(nil)
	assert.NotNil(t, handler.logger)
}
