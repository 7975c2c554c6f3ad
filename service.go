package nb2pdf

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nbexport/go-nb2pdf/internal/assets"
)

// Backend selects the typesetting path for the final PDF.
type Backend string

const (
	// BackendTypst compiles pandoc's Typst output with the typst CLI.
	BackendTypst Backend = "typst"
	// BackendChrome renders pandoc's GFM output to HTML (goldmark + KaTeX)
	// and prints it with headless Chrome. A preview path for hosts without
	// a Typst toolchain.
	BackendChrome Backend = "chrome"
)

// Notebook and PDF file extensions for output path derivation.
const (
	NotebookExt = ".ipynb"
	PDFExt      = ".pdf"
)

// exportPhase tracks the linear pipeline state machine.
type exportPhase int

const (
	phaseIdle exportPhase = iota
	phasePreparing
	phaseConverting
	phaseCompiling
	phaseDone
	phaseFailed
)

func (p exportPhase) String() string {
	switch p {
	case phaseIdle:
		return "idle"
	case phasePreparing:
		return "preparing"
	case phaseConverting:
		return "converting"
	case phaseCompiling:
		return "compiling"
	case phaseDone:
		return "done"
	case phaseFailed:
		return "failed"
	}
	return "unknown"
}

// Input contains export parameters.
type Input struct {
	Notebook   []byte // raw ipynb JSON (required)
	MarkupOnly bool   // skip compilation, return intermediate markup (for debugging)
}

// ExportResult holds the pipeline products. PDF is non-empty by contract;
// an empty compile result fails the export instead.
type ExportResult struct {
	Markup []byte
	PDF    []byte
}

// Option configures a Service.
type Option func(*Service)

// serviceConfig holds internal configuration for Service.
type serviceConfig struct {
	timeout time.Duration
	backend Backend
	style   string
}

// defaultTimeout is used when no timeout is specified.
const defaultTimeout = 2 * time.Minute

// WithTimeout sets the per-step engine timeout for the preview backend.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("nb2pdf: WithTimeout duration must be positive")
	}
	return func(s *Service) {
		s.cfg.timeout = d
	}
}

// WithBackend selects the typesetting path. Validated at export time.
func WithBackend(b Backend) Option {
	return func(s *Service) {
		s.cfg.backend = b
	}
}

// WithStyle selects the embedded stylesheet for the preview backend.
func WithStyle(name string) Option {
	return func(s *Service) {
		s.cfg.style = name
	}
}

// WithProgress sets the progress reporter notified at phase transitions.
func WithProgress(r ProgressReporter) Option {
	return func(s *Service) {
		s.progress = r
	}
}

// Service orchestrates the notebook-to-PDF pipeline: math extraction,
// notebook conversion, math splicing, and PDF compilation.
type Service struct {
	cfg        serviceConfig
	converter  MarkupConverter
	typesetter TypesettingEngine
	renderer   HTMLRenderer
	printer    PDFPrinter
	progress   ProgressReporter
}

// New creates a Service with default configuration (Typst backend).
// Use options to customize behavior (e.g., WithBackend, WithTimeout).
func New(opts ...Option) *Service {
	s := &Service{
		cfg: serviceConfig{
			timeout: defaultTimeout,
			backend: BackendTypst,
			style:   assets.DefaultStyleName,
		},
		converter: NewPandocConverter(),
		renderer:  NewGoldmarkRenderer(),
		progress:  NopProgress{},
	}

	for _, opt := range opts {
		opt(s)
	}

	// Create engines if not injected (e.g., by tests)
	if s.typesetter == nil {
		s.typesetter = NewTypstEngine()
	}
	if s.printer == nil {
		s.printer = NewRodPrinter(s.cfg.timeout)
	}

	return s
}

// Export runs the full pipeline and returns the markup and PDF products.
// The pipeline is linear: Idle -> Preparing -> Converting -> Compiling ->
// Done, with any failure transitioning to Failed. The progress reporter is
// notified at each transition, including failure, before an error
// propagates. Recovers from internal panics to prevent crashes from
// propagating to callers.
func (s *Service) Export(ctx context.Context, input Input) (result *ExportResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	phase := phaseIdle
	s.transition(&phase, phasePreparing, "Preparing notebook export")

	fail := func(cause error) (*ExportResult, error) {
		s.transition(&phase, phaseFailed, "Export failed: "+cause.Error())
		return nil, cause
	}

	switch s.cfg.backend {
	case BackendTypst, BackendChrome:
	default:
		return fail(fmt.Errorf("%w: %q", ErrUnknownBackend, s.cfg.backend))
	}

	nb, err := ParseNotebook(input.Notebook)
	if err != nil {
		return fail(err)
	}

	mathMap := ExtractMath(nb)
	sanitized, err := nb.Encode()
	if err != nil {
		return fail(err)
	}

	// Both engines must have completed their one-time load before the
	// converter runs.
	if err := s.initEngines(ctx); err != nil {
		return fail(err)
	}

	target := FormatTypst
	if s.cfg.backend == BackendChrome {
		target = FormatGFM
	}

	s.transition(&phase, phaseConverting, "Converting notebook")
	conv, err := s.converter.ConvertNotebook(ctx, sanitized, target)
	if err != nil {
		return fail(err)
	}

	markup := SpliceMath(conv.Markup, s.buildPatches(ctx, mathMap, target))

	res := &ExportResult{Markup: []byte(markup)}
	if input.MarkupOnly {
		s.transition(&phase, phaseDone, "Export complete (markup only)")
		return res, nil
	}

	s.transition(&phase, phaseCompiling, "Compiling PDF")
	pdf, err := s.compile(ctx, markup, conv.MediaFiles)
	if err != nil {
		return fail(err)
	}
	if len(pdf) == 0 {
		// Even an empty notebook must produce a minimal document.
		return fail(ErrEmptyCompilation)
	}

	res.PDF = pdf
	s.transition(&phase, phaseDone, fmt.Sprintf("Exported PDF (%d bytes)", len(pdf)))
	return res, nil
}

// Close releases resources held by the preview backend's browser.
func (s *Service) Close() error {
	if s.printer != nil {
		return s.printer.Close()
	}
	return nil
}

// initEngines awaits the one-time initialization of the converter and the
// backend's typesetting engine. Init failures surface as ErrEngineInit and
// are retried on the next export.
func (s *Service) initEngines(ctx context.Context) error {
	if err := s.converter.Init(ctx); err != nil {
		return err
	}
	if s.cfg.backend == BackendChrome {
		return s.printer.Init(ctx)
	}
	return s.typesetter.Init(ctx)
}

// buildPatches converts each extracted math fragment for splicing. A failed
// fragment conversion is isolated: the patch falls back to a literal block
// so one malformed formula cannot fail the whole document.
func (s *Service) buildPatches(ctx context.Context, m *MathMap, target string) []MathPatch {
	entries := m.Entries()
	patches := make([]MathPatch, 0, len(entries))
	for _, entry := range entries {
		p := MathPatch{Token: entry.Token, Source: entry.Source}
		if target == FormatGFM {
			// KaTeX typesets display math in the browser; no converter
			// round-trip needed.
			p.Markup = "$$" + entry.Source + "$$"
		} else if markup, err := s.converter.ConvertMathFragment(ctx, entry.Source, target); err != nil {
			p.Failed = true
			s.notify("Math fragment not converted: " + entry.Token)
		} else {
			p.Markup = markup
		}
		patches = append(patches, p)
	}
	return patches
}

// compile runs the backend-specific final stage.
func (s *Service) compile(ctx context.Context, markup string, media map[string][]byte) ([]byte, error) {
	if s.cfg.backend == BackendChrome {
		css, err := assets.LoadStyle(s.cfg.style)
		if err != nil {
			return nil, err
		}
		htmlDoc, err := s.renderer.Render(ctx, markup, css)
		if err != nil {
			return nil, err
		}
		return s.printer.PrintHTML(ctx, htmlDoc, media)
	}

	s.typesetter.Reset()
	s.typesetter.MapFile(MainMarkupPath, []byte(markup))
	for name, content := range media {
		s.typesetter.MapFile(name, content)
	}
	return s.typesetter.CompileToPDF(ctx, MainMarkupPath)
}

// transition advances the state machine and notifies the reporter.
// Reporters are best-effort: a panicking reporter never affects the export.
func (s *Service) transition(phase *exportPhase, next exportPhase, message string) {
	defer func() { _ = recover() }()
	prev := *phase
	*phase = next
	switch {
	case prev == phaseIdle:
		s.progress.Start(message)
	case next == phaseDone || next == phaseFailed:
		s.progress.Finish(message)
	default:
		s.progress.Update(message)
	}
}

// notify sends an informational update, shielded like transition.
func (s *Service) notify(message string) {
	defer func() { _ = recover() }()
	s.progress.Update(message)
}

// OutputPath derives the PDF output path from a notebook path: the .ipynb
// extension is replaced by .pdf (case-sensitive exact match); anything else
// gets .pdf appended.
func OutputPath(notebookPath string) string {
	if strings.HasSuffix(notebookPath, NotebookExt) {
		return strings.TrimSuffix(notebookPath, NotebookExt) + PDFExt
	}
	return notebookPath + PDFExt
}
