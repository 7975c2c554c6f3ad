// Package nb2pdf exports Jupyter notebooks to PDF by chaining pandoc
// (notebook to markup) and a typesetting engine (markup to PDF).
//
// # Quick Start
//
// Create a service, export a notebook, and close when done:
//
//	svc := nb2pdf.New()
//	defer svc.Close()
//
//	raw, _ := os.ReadFile("analysis.ipynb")
//	result, err := svc.Export(ctx, nb2pdf.Input{Notebook: raw})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile(nb2pdf.OutputPath("analysis.ipynb"), result.PDF, 0644)
//
// The result contains the PDF bytes (result.PDF) and the intermediate
// markup (result.Markup) for debugging. Use Input.MarkupOnly to skip
// compilation.
//
// # Math Preservation
//
// Pandoc drops or mangles LaTeX math embedded in notebook outputs. The
// pipeline therefore runs in two stages: before conversion, every
// text/latex output is replaced by a unique placeholder token carried in
// text/plain; after conversion, each placeholder's fenced literal block in
// the markup is replaced by the math converted through pandoc's native
// math handling. A fragment that cannot be converted degrades to a literal
// block showing the raw source; it never fails the export.
//
// # Export Pipeline
//
//  1. Math extraction (placeholder substitution over notebook outputs)
//  2. Notebook conversion via pandoc (standalone, media extracted)
//  3. Math splicing (fence scanning over the converted markup)
//  4. PDF compilation via typst, or headless Chrome for the preview backend
//
// # Configuration
//
// Use functional options to customize the service:
//
//	svc := nb2pdf.New(
//	    nb2pdf.WithBackend(nb2pdf.BackendChrome),
//	    nb2pdf.WithTimeout(2 * time.Minute),
//	    nb2pdf.WithProgress(nb2pdf.WriterProgress{W: os.Stderr}),
//	)
//
// # Parallel Processing
//
// For batch export, use ServicePool to bound concurrent engine processes:
//
//	pool := nb2pdf.NewServicePool(4)
//	defer pool.Close()
//
//	svc := pool.Acquire()
//	defer pool.Release(svc)
//	result, err := svc.Export(ctx, input)
//
// # Engine Requirements
//
// The default backend requires the pandoc and typst binaries on PATH. The
// preview backend (BackendChrome) requires pandoc and Chrome/Chromium; the
// go-rod library downloads a managed Chromium on first run. For containers
// and CI, set ROD_NO_SANDBOX=1 and optionally ROD_BROWSER_BIN.
package nb2pdf
