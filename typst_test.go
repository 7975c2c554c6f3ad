package nb2pdf

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestTypstEngineCompileToPDF(t *testing.T) {
	t.Run("flushes shadow filesystem and reads compiled output", func(t *testing.T) {
		wantPDF := []byte("%PDF-1.7 fake")
		var staged map[string][]byte
		runner := &mockRunner{
			onRun: func(dir string, args []string) error {
				staged = map[string][]byte{}
				for _, p := range []string{MainMarkupPath, "media/plot.png"} {
					content, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(p)))
					if err != nil {
						return err
					}
					staged[p] = content
				}
				return os.WriteFile(filepath.Join(dir, "output.pdf"), wantPDF, 0600)
			},
		}
		eng := &TypstEngine{runner: runner, files: make(map[string][]byte)}
		eng.MapFile(MainMarkupPath, []byte("= Doc\n"))
		eng.MapFile("media/plot.png", []byte{0x89, 'P', 'N', 'G'})

		pdf, err := eng.CompileToPDF(context.Background(), MainMarkupPath)
		if err != nil {
			t.Fatalf("CompileToPDF: %v", err)
		}
		if string(pdf) != string(wantPDF) {
			t.Errorf("pdf = %q, want %q", pdf, wantPDF)
		}
		if string(staged[MainMarkupPath]) != "= Doc\n" {
			t.Errorf("staged main = %q", staged[MainMarkupPath])
		}
		if len(staged["media/plot.png"]) != 4 {
			t.Error("media file was not staged next to the main document")
		}

		call := runner.lastCall(t)
		if call.name != "typst" || call.args[0] != "compile" {
			t.Errorf("command = %s %v, want typst compile", call.name, call.args)
		}
	})

	t.Run("compiler failure wraps ErrCompilation", func(t *testing.T) {
		runner := &mockRunner{err: errors.New("exit status 1"), stderr: []byte("error: unknown variable")}
		eng := &TypstEngine{runner: runner, files: map[string][]byte{MainMarkupPath: []byte("bad")}}

		_, err := eng.CompileToPDF(context.Background(), MainMarkupPath)
		if !errors.Is(err, ErrCompilation) {
			t.Fatalf("err = %v, want ErrCompilation", err)
		}
	})

	t.Run("missing output wraps ErrCompilation", func(t *testing.T) {
		// Runner "succeeds" but never writes output.pdf.
		runner := &mockRunner{}
		eng := &TypstEngine{runner: runner, files: map[string][]byte{MainMarkupPath: []byte("= x")}}

		_, err := eng.CompileToPDF(context.Background(), MainMarkupPath)
		if !errors.Is(err, ErrCompilation) {
			t.Fatalf("err = %v, want ErrCompilation", err)
		}
	})

	t.Run("empty output is returned as-is", func(t *testing.T) {
		runner := &mockRunner{
			onRun: func(dir string, _ []string) error {
				return os.WriteFile(filepath.Join(dir, "output.pdf"), nil, 0600)
			},
		}
		eng := &TypstEngine{runner: runner, files: map[string][]byte{MainMarkupPath: []byte("")}}

		pdf, err := eng.CompileToPDF(context.Background(), MainMarkupPath)
		if err != nil {
			t.Fatalf("CompileToPDF: %v", err)
		}
		if len(pdf) != 0 {
			t.Errorf("pdf = %q, want empty", pdf)
		}
	})
}

func TestTypstEngineReset(t *testing.T) {
	eng := NewTypstEngine()
	eng.MapFile(MainMarkupPath, []byte("old"))
	eng.MapFile("media/a.png", []byte("a"))

	eng.Reset()

	if len(eng.files) != 0 {
		t.Errorf("files after Reset = %v, want empty", eng.files)
	}

	eng.MapFile(MainMarkupPath, []byte("new"))
	if string(eng.files[MainMarkupPath]) != "new" {
		t.Error("MapFile after Reset should stage fresh content")
	}
}
