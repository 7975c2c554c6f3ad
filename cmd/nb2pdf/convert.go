package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	nb2pdf "github.com/nbexport/go-nb2pdf"
)

// Sentinel errors for CLI conversion operations.
var (
	ErrNoInput          = errors.New("no input notebooks given")
	ErrInvalidExtension = errors.New("file must have .ipynb extension")
	ErrReadNotebook     = errors.New("failed to read notebook file")
	ErrWriteOutput      = errors.New("failed to write output file")
	ErrOutputNotDir     = errors.New("output must be a directory when exporting multiple notebooks")
	ErrInvalidTimeout   = errors.New("invalid timeout")
)

// exportParams is the merged result of config file and flags (flags win).
type exportParams struct {
	engine     nb2pdf.Backend
	style      string
	timeout    time.Duration
	workers    int
	output     string
	markupOnly bool
	quiet      bool
	verbose    bool
}

// runConvert validates inputs, merges config and flags, and exports every
// notebook through a service pool.
func runConvert(flags *convertFlags, inputs []string, env *Environment) error {
	if len(inputs) == 0 {
		return ErrNoInput
	}
	for _, in := range inputs {
		if !strings.HasSuffix(in, nb2pdf.NotebookExt) {
			return fmt.Errorf("%w: %q", ErrInvalidExtension, in)
		}
	}

	params, err := mergeParams(flags)
	if err != nil {
		return err
	}
	if len(inputs) > 1 && params.output != "" && !isDir(params.output) {
		return fmt.Errorf("%w: %q", ErrOutputNotDir, params.output)
	}

	opts := []nb2pdf.Option{nb2pdf.WithBackend(params.engine)}
	if params.style != "" {
		opts = append(opts, nb2pdf.WithStyle(params.style))
	}
	if params.timeout > 0 {
		opts = append(opts, nb2pdf.WithTimeout(params.timeout))
	}
	if params.verbose {
		opts = append(opts, nb2pdf.WithProgress(nb2pdf.WriterProgress{W: env.Stderr}))
	}

	pool := nb2pdf.NewServicePool(nb2pdf.ResolvePoolSize(params.workers), opts...)
	defer pool.Close()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, input := range inputs {
		wg.Add(1)
		go func(input string) {
			defer wg.Done()
			outPath, err := exportOne(pool, params, input)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", input, err))
				return
			}
			if !params.quiet {
				fmt.Fprintf(env.Stdout, "Created %s\n", outPath)
			}
		}(input)
	}
	wg.Wait()

	return errors.Join(errs...)
}

// exportOne runs a single notebook through a pooled service and writes the
// result. Returns the written path.
func exportOne(pool *nb2pdf.ServicePool, params *exportParams, input string) (string, error) {
	raw, err := os.ReadFile(input) // #nosec G304 -- input path is user-provided
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadNotebook, err)
	}

	svc := pool.Acquire()
	defer pool.Release(svc)

	ctx := context.Background()
	if params.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, params.timeout)
		defer cancel()
	}

	result, err := svc.Export(ctx, nb2pdf.Input{
		Notebook:   raw,
		MarkupOnly: params.markupOnly,
	})
	if err != nil {
		return "", err
	}

	outPath := outputPathFor(input, params)
	content := result.PDF
	if params.markupOnly {
		content = result.Markup
	}
	if err := os.WriteFile(outPath, content, 0600); err != nil {
		return "", fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return outPath, nil
}

// mergeParams merges the config file (if any) and flags; flags win.
func mergeParams(flags *convertFlags) (*exportParams, error) {
	cfg := DefaultConfig()
	if flags.config != "" {
		loaded, err := LoadConfig(flags.config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	params := &exportParams{
		engine:     nb2pdf.BackendTypst,
		style:      cfg.Export.Style,
		workers:    cfg.Export.Workers,
		output:     cfg.Output.DefaultDir,
		markupOnly: flags.markupOnly,
		quiet:      flags.quiet,
		verbose:    flags.verbose,
	}
	if cfg.Export.Engine != "" {
		params.engine = nb2pdf.Backend(cfg.Export.Engine)
	}
	if flags.engine != "" {
		params.engine = nb2pdf.Backend(flags.engine)
	}
	if flags.style != "" {
		params.style = flags.style
	}
	if flags.workers > 0 {
		params.workers = flags.workers
	}
	if flags.output != "" {
		params.output = flags.output
	}

	timeout := cfg.Export.Timeout
	if flags.timeout != "" {
		timeout = flags.timeout
	}
	if timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTimeout, timeout)
		}
		params.timeout = d
	}

	return params, nil
}

// outputPathFor derives the destination path for one input notebook.
func outputPathFor(input string, params *exportParams) string {
	out := nb2pdf.OutputPath(input)
	if params.markupOnly {
		ext := ".typ"
		if params.engine == nb2pdf.BackendChrome {
			ext = ".md"
		}
		out = strings.TrimSuffix(out, nb2pdf.PDFExt) + ext
	}
	if params.output == "" {
		return out
	}
	if isDir(params.output) {
		return filepath.Join(params.output, filepath.Base(out))
	}
	return params.output
}

// isDir returns true if path exists and is a directory.
func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
