package nb2pdf

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// PDFPrinter abstracts HTML to PDF printing for the preview backend.
type PDFPrinter interface {
	Init(ctx context.Context) error
	// PrintHTML renders a standalone HTML document to PDF. Media files are
	// staged next to the document so relative references resolve.
	PrintHTML(ctx context.Context, htmlContent string, media map[string][]byte) ([]byte, error)
	Close() error
}

// PDF page dimensions in inches (US Letter format).
const (
	paperWidthInches  = 8.5
	paperHeightInches = 11
	marginInches      = 0.5
)

// RodPrinter prints HTML to PDF using headless Chrome via go-rod. Rod
// downloads Chromium on first run if no browser is found.
type RodPrinter struct {
	browser *rod.Browser
	guard   initGuard
	timeout time.Duration
}

// NewRodPrinter creates a RodPrinter with the given page-load timeout.
func NewRodPrinter(timeout time.Duration) *RodPrinter {
	return &RodPrinter{timeout: timeout}
}

// Init launches and connects to the browser once. Concurrent first users
// await the same launch; a failed launch is retried on the next export.
func (p *RodPrinter) Init(_ context.Context) error {
	return p.guard.do(func() error {
		l := launcher.New()

		// Use pre-installed browser if specified (Docker/containerized environments)
		if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
			l = l.Bin(bin)
		}

		// NoSandbox required for CI and containerized environments
		if os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" {
			l = l.NoSandbox(true)
		}

		u, err := l.Launch()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
		}

		browser := rod.New().ControlURL(u)
		if err := browser.Connect(); err != nil {
			return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
		}
		p.browser = browser
		return nil
	})
}

// Close releases browser resources.
func (p *RodPrinter) Close() error {
	if p.browser != nil {
		err := p.browser.Close()
		p.browser = nil
		return err
	}
	return nil
}

// PrintHTML stages the document and its media in a scratch directory, opens
// it in headless Chrome, and prints it to PDF.
func (p *RodPrinter) PrintHTML(ctx context.Context, htmlContent string, media map[string][]byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := p.Init(ctx); err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "nb2pdf-preview-*")
	if err != nil {
		return nil, fmt.Errorf("creating preview dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	docPath := filepath.Join(dir, "index.html")
	if err := os.WriteFile(docPath, []byte(htmlContent), 0600); err != nil {
		return nil, fmt.Errorf("writing preview document: %w", err)
	}
	for name, content := range media {
		full := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(full), 0750); err != nil {
			return nil, fmt.Errorf("staging media %s: %w", name, err)
		}
		if err := os.WriteFile(full, content, 0600); err != nil {
			return nil, fmt.Errorf("staging media %s: %w", name, err)
		}
	}

	return p.renderFromFile(ctx, docPath)
}

// renderFromFile opens a local HTML file and renders it to PDF. Returns
// explicit errors instead of panicking when browser operations fail.
func (p *RodPrinter) renderFromFile(ctx context.Context, filePath string) ([]byte, error) {
	page, err := p.browser.Page(proto.TargetCreateTarget{URL: "file://" + filePath})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer page.Close()

	timeout := p.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}

	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	// Let the deferred KaTeX auto-renderer finish before printing.
	if err := page.Timeout(timeout).WaitIdle(timeout); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := page.PDF(&proto.PagePrintToPDF{
		PaperWidth:      floatPtr(paperWidthInches),
		PaperHeight:     floatPtr(paperHeightInches),
		MarginTop:       floatPtr(marginInches),
		MarginBottom:    floatPtr(marginInches),
		MarginLeft:      floatPtr(marginInches),
		MarginRight:     floatPtr(marginInches),
		PrintBackground: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	pdfBuf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return pdfBuf, nil
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}

// Compile-time interface check.
var _ PDFPrinter = (*RodPrinter)(nil)
