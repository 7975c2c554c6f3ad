package main

import (
	"errors"
	"os"

	nb2pdf "github.com/nbexport/go-nb2pdf"
	"github.com/nbexport/go-nb2pdf/internal/assets"
)

// Exit codes for the nb2pdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful export
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or notebook input
	ExitIO      = 3 // File not found, permission denied
	ExitEngine  = 4 // External engine errors (pandoc, typst, Chrome)
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Engine errors (exit 4)
	if errors.Is(err, nb2pdf.ErrEngineInit) ||
		errors.Is(err, nb2pdf.ErrConversionFailed) ||
		errors.Is(err, nb2pdf.ErrCompilation) ||
		errors.Is(err, nb2pdf.ErrEmptyCompilation) ||
		errors.Is(err, nb2pdf.ErrHTMLConversion) ||
		errors.Is(err, nb2pdf.ErrBrowserConnect) ||
		errors.Is(err, nb2pdf.ErrPageCreate) ||
		errors.Is(err, nb2pdf.ErrPageLoad) ||
		errors.Is(err, nb2pdf.ErrPDFGeneration) {
		return ExitEngine
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadNotebook) ||
		errors.Is(err, ErrWriteOutput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrOutputNotDir) ||
		errors.Is(err, ErrInvalidTimeout) ||
		errors.Is(err, ErrConfigNotFound) ||
		errors.Is(err, ErrEmptyConfigName) ||
		errors.Is(err, ErrConfigParse) ||
		errors.Is(err, ErrConfigTooLarge) ||
		errors.Is(err, nb2pdf.ErrEmptyNotebook) ||
		errors.Is(err, nb2pdf.ErrNotebookParse) ||
		errors.Is(err, nb2pdf.ErrUnknownBackend) ||
		errors.Is(err, assets.ErrStyleNotFound) ||
		errors.Is(err, assets.ErrInvalidAssetName) {
		return ExitUsage
	}

	return ExitGeneral
}
