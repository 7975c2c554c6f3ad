package nb2pdf

import "errors"

// Sentinel errors for library operations.
var (
	ErrEmptyNotebook = errors.New("notebook content cannot be empty")
	ErrNotebookParse = errors.New("failed to parse notebook JSON")

	// ErrConversionFailed indicates the markup converter reported an error
	// for the main document. Fatal; the engine's diagnostic text is attached.
	ErrConversionFailed = errors.New("notebook conversion failed")

	// ErrMathConversion indicates a single math fragment could not be
	// converted. Non-fatal; the splicer falls back to a literal block.
	ErrMathConversion = errors.New("math fragment conversion failed")

	// ErrCompilation indicates the typesetting engine failed outright.
	ErrCompilation = errors.New("PDF compilation failed")

	// ErrEmptyCompilation indicates the typesetting engine returned zero
	// bytes. Distinct from ErrCompilation: the engine itself did not fail.
	ErrEmptyCompilation = errors.New("PDF compilation produced empty output")

	// ErrEngineInit indicates an external engine failed its one-time
	// initialization. The next export retries; failures are never cached.
	ErrEngineInit = errors.New("engine initialization failed")

	ErrUnknownBackend = errors.New("unknown export backend")

	// Preview backend (headless Chrome) errors.
	ErrHTMLConversion = errors.New("HTML conversion failed")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")
)
