package nb2pdf

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// MainMarkupPath is the fixed shadow-filesystem path the final document is
// mapped at before compilation.
const MainMarkupPath = "main.typ"

// TypesettingEngine abstracts the external markup-to-PDF compiler. The
// shadow filesystem is an in-memory path -> bytes mapping the engine
// compiles from; it is reset per export so no stale files leak between
// exports. An engine instance serves one export at a time.
type TypesettingEngine interface {
	Init(ctx context.Context) error
	Reset()
	MapFile(path string, content []byte)
	CompileToPDF(ctx context.Context, mainPath string) ([]byte, error)
}

// TypstEngine compiles Typst markup by invoking the typst CLI. The shadow
// filesystem is flushed to a scratch directory for each compilation.
type TypstEngine struct {
	runner CommandRunner
	guard  initGuard
	files  map[string][]byte
}

// NewTypstEngine creates a TypstEngine with a real command runner.
func NewTypstEngine() *TypstEngine {
	return &TypstEngine{
		runner: ExecRunner{},
		files:  make(map[string][]byte),
	}
}

// Init locates the typst binary once; concurrent callers share the attempt
// and failures are retried on the next export.
func (e *TypstEngine) Init(ctx context.Context) error {
	return e.guard.do(func() error {
		if _, err := exec.LookPath("typst"); err != nil {
			return fmt.Errorf("%w: typst: %v", ErrEngineInit, err)
		}
		if _, _, err := e.runner.Run(ctx, "", nil, "typst", "--version"); err != nil {
			return fmt.Errorf("%w: typst --version: %v", ErrEngineInit, err)
		}
		return nil
	})
}

// Reset clears the shadow filesystem.
func (e *TypstEngine) Reset() {
	e.files = make(map[string][]byte)
}

// MapFile stages content at a slash-separated relative path in the shadow
// filesystem.
func (e *TypstEngine) MapFile(path string, content []byte) {
	e.files[path] = content
}

// CompileToPDF flushes the shadow filesystem to a scratch directory,
// compiles mainPath there, and returns the produced PDF bytes. An empty
// result is returned as-is; the orchestrator distinguishes empty output
// from compiler failure.
func (e *TypstEngine) CompileToPDF(ctx context.Context, mainPath string) ([]byte, error) {
	dir, err := os.MkdirTemp("", "nb2pdf-typst-*")
	if err != nil {
		return nil, fmt.Errorf("creating compile dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	for p, content := range e.files {
		full := filepath.Join(dir, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(full), 0750); err != nil {
			return nil, fmt.Errorf("staging %s: %w", p, err)
		}
		if err := os.WriteFile(full, content, 0600); err != nil {
			return nil, fmt.Errorf("staging %s: %w", p, err)
		}
	}

	outPath := filepath.Join(dir, "output.pdf")
	_, stderr, runErr := e.runner.Run(ctx, dir, nil, "typst",
		"compile",
		"--root", dir,
		filepath.Join(dir, filepath.FromSlash(mainPath)),
		outPath,
	)
	if runErr != nil {
		return nil, fmt.Errorf("%w: %v: %s", ErrCompilation, runErr, strings.TrimSpace(string(stderr)))
	}

	pdf, err := os.ReadFile(outPath) // #nosec G304 -- path inside our own scratch dir
	if err != nil {
		return nil, fmt.Errorf("%w: reading output: %v", ErrCompilation, err)
	}
	return pdf, nil
}

// Compile-time interface check.
var _ TypesettingEngine = (*TypstEngine)(nil)
