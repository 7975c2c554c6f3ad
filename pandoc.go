package nb2pdf

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Target markup formats the converter is asked to produce.
const (
	FormatTypst = "typst"
	FormatGFM   = "gfm"
)

// errorMarker signals conversion failure on pandoc's stderr. This
// string-sniffing contract matches the wrapped engine's convention and must
// be preserved exactly.
const errorMarker = "ERROR"

// mediaDirName is the relative directory pandoc extracts media into. It is
// relative so the emitted markup references media by the same paths the
// typesetting engine sees in its shadow filesystem.
const mediaDirName = "media"

// CommandRunner abstracts subprocess execution to enable testing without
// real engines. dir is the working directory ("" = inherit), stdin is piped
// to the process.
type CommandRunner interface {
	Run(ctx context.Context, dir string, stdin []byte, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner implements CommandRunner using os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, dir string, stdin []byte, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// ConversionResult is the converter's output for a whole-notebook call.
type ConversionResult struct {
	// Markup is the converted document, containing the math placeholders
	// as literal fenced blocks.
	Markup string
	// MediaFiles maps the relative filename referenced in Markup to the
	// extracted bytes (embedded images and other binary outputs).
	MediaFiles map[string][]byte
}

// MarkupConverter abstracts the external notebook-to-markup engine.
type MarkupConverter interface {
	// Init performs the engine's one-time load; safe for concurrent use.
	Init(ctx context.Context) error
	// ConvertNotebook converts a sanitized ipynb document to the target
	// markup in standalone mode with media extraction.
	ConvertNotebook(ctx context.Context, notebook []byte, toFormat string) (*ConversionResult, error)
	// ConvertMathFragment round-trips one math source through the
	// converter's native math handling ($$ ... $$ input, non-standalone).
	ConvertMathFragment(ctx context.Context, source, toFormat string) (string, error)
}

// PandocConverter converts notebooks by invoking the pandoc CLI.
type PandocConverter struct {
	runner CommandRunner
	guard  initGuard
}

// NewPandocConverter creates a PandocConverter with a real command runner.
func NewPandocConverter() *PandocConverter {
	return &PandocConverter{runner: ExecRunner{}}
}

// Init locates the pandoc binary and probes it once. Concurrent callers
// share a single in-flight probe; a failed probe is retried on the next
// call rather than cached.
func (c *PandocConverter) Init(ctx context.Context) error {
	return c.guard.do(func() error {
		if _, err := exec.LookPath("pandoc"); err != nil {
			return fmt.Errorf("%w: pandoc: %v", ErrEngineInit, err)
		}
		if _, _, err := c.runner.Run(ctx, "", nil, "pandoc", "--version"); err != nil {
			return fmt.Errorf("%w: pandoc --version: %v", ErrEngineInit, err)
		}
		return nil
	})
}

// ConvertNotebook converts the sanitized notebook to the target markup in
// standalone mode. Media is extracted to a scratch directory and reified
// into the result as filename -> bytes; the markup references those files
// by the same relative paths.
func (c *PandocConverter) ConvertNotebook(ctx context.Context, notebook []byte, toFormat string) (*ConversionResult, error) {
	workDir, err := os.MkdirTemp("", "nb2pdf-pandoc-*")
	if err != nil {
		return nil, fmt.Errorf("creating media scratch dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	stdout, stderr, runErr := c.runner.Run(ctx, workDir, notebook, "pandoc",
		"-f", "ipynb",
		"-t", toFormat,
		"--standalone",
		"--extract-media="+mediaDirName,
	)
	if msg := string(stderr); strings.Contains(msg, errorMarker) {
		return nil, fmt.Errorf("%w: %s", ErrConversionFailed, strings.TrimSpace(msg))
	}
	if runErr != nil {
		return nil, fmt.Errorf("%w: %v: %s", ErrConversionFailed, runErr, strings.TrimSpace(string(stderr)))
	}

	media, err := collectMedia(workDir)
	if err != nil {
		return nil, err
	}
	return &ConversionResult{Markup: string(stdout), MediaFiles: media}, nil
}

// ConvertMathFragment converts one math source via pandoc's markdown
// display-math path. Errors here are per-fragment: the caller falls back to
// a literal block instead of failing the export.
func (c *PandocConverter) ConvertMathFragment(ctx context.Context, source, toFormat string) (string, error) {
	input := []byte("$$" + source + "$$")
	stdout, stderr, runErr := c.runner.Run(ctx, "", input, "pandoc",
		"-f", "markdown",
		"-t", toFormat,
	)
	if msg := string(stderr); strings.Contains(msg, errorMarker) {
		return "", fmt.Errorf("%w: %s", ErrMathConversion, strings.TrimSpace(msg))
	}
	if runErr != nil {
		return "", fmt.Errorf("%w: %v", ErrMathConversion, runErr)
	}
	markup := strings.TrimSpace(string(stdout))
	if markup == "" {
		return "", fmt.Errorf("%w: converter produced no output", ErrMathConversion)
	}
	return markup, nil
}

// collectMedia reads every file pandoc extracted under workDir, keyed by
// its slash-separated path relative to workDir.
func collectMedia(workDir string) (map[string][]byte, error) {
	media := make(map[string][]byte)
	root := filepath.Join(workDir, mediaDirName)
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		content, err := os.ReadFile(p) // #nosec G304 -- path comes from our own scratch dir
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(workDir, p)
		if err != nil {
			return err
		}
		media[filepath.ToSlash(rel)] = content
		return nil
	})
	if os.IsNotExist(err) {
		// No media in the notebook; pandoc never created the directory.
		return media, nil
	}
	if err != nil {
		return nil, fmt.Errorf("collecting extracted media: %w", err)
	}
	return media, nil
}

// Compile-time interface check.
var _ MarkupConverter = (*PandocConverter)(nil)
