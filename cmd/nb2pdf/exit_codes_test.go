package main

import (
	"errors"
	"fmt"
	"os"
	"testing"

	nb2pdf "github.com/nbexport/go-nb2pdf"
	"github.com/nbexport/go-nb2pdf/internal/assets"
)

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, ExitSuccess},
		{"engine init", nb2pdf.ErrEngineInit, ExitEngine},
		{"conversion failed", nb2pdf.ErrConversionFailed, ExitEngine},
		{"compilation failed", nb2pdf.ErrCompilation, ExitEngine},
		{"empty compilation", nb2pdf.ErrEmptyCompilation, ExitEngine},
		{"browser connect", nb2pdf.ErrBrowserConnect, ExitEngine},
		{"pdf generation", nb2pdf.ErrPDFGeneration, ExitEngine},
		{"file not found", os.ErrNotExist, ExitIO},
		{"permission denied", os.ErrPermission, ExitIO},
		{"read notebook", ErrReadNotebook, ExitIO},
		{"write output", ErrWriteOutput, ExitIO},
		{"no input", ErrNoInput, ExitUsage},
		{"bad extension", ErrInvalidExtension, ExitUsage},
		{"bad timeout", ErrInvalidTimeout, ExitUsage},
		{"config not found", ErrConfigNotFound, ExitUsage},
		{"config too large", ErrConfigTooLarge, ExitUsage},
		{"empty notebook", nb2pdf.ErrEmptyNotebook, ExitUsage},
		{"notebook parse", nb2pdf.ErrNotebookParse, ExitUsage},
		{"unknown backend", nb2pdf.ErrUnknownBackend, ExitUsage},
		{"style not found", assets.ErrStyleNotFound, ExitUsage},
		{"anything else", errors.New("surprise"), ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestExitCodeForWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("exporting analysis.ipynb: %w", nb2pdf.ErrCompilation)
	if got := exitCodeFor(wrapped); got != ExitEngine {
		t.Errorf("exitCodeFor(wrapped) = %d, want %d", got, ExitEngine)
	}

	joined := errors.Join(
		fmt.Errorf("a.ipynb: %w", ErrReadNotebook),
		fmt.Errorf("b.ipynb: %w", nb2pdf.ErrCompilation),
	)
	// Engine errors take priority in the taxonomy.
	if got := exitCodeFor(joined); got != ExitEngine {
		t.Errorf("exitCodeFor(joined) = %d, want %d", got, ExitEngine)
	}
}
