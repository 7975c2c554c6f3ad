package nb2pdf

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestGoldmarkRendererRender(t *testing.T) {
	renderer := NewGoldmarkRenderer()

	t.Run("produces standalone document", func(t *testing.T) {
		doc, err := renderer.Render(context.Background(), "# Notebook\n\nSome *prose*.\n", "body { margin: 0; }")
		if err != nil {
			t.Fatalf("Render: %v", err)
		}
		for _, want := range []string{
			"<!DOCTYPE html>",
			"<h1 id=\"notebook\">Notebook</h1>",
			"<em>prose</em>",
			"body { margin: 0; }",
			"katex",
		} {
			if !strings.Contains(doc, want) {
				t.Errorf("document missing %q", want)
			}
		}
	})

	t.Run("math spans survive for the browser", func(t *testing.T) {
		doc, err := renderer.Render(context.Background(), "before\n\n$$x^2$$\n\nafter\n", "")
		if err != nil {
			t.Fatalf("Render: %v", err)
		}
		if !strings.Contains(doc, "$$x^2$$") {
			t.Error("display math delimiters must reach the browser untouched")
		}
	})

	t.Run("highlights code inline", func(t *testing.T) {
		doc, err := renderer.Render(context.Background(), "```go\nfunc main() {}\n```\n", "")
		if err != nil {
			t.Fatalf("Render: %v", err)
		}
		// WithClasses(false) puts colors in style attributes.
		if !strings.Contains(doc, "style=") {
			t.Error("code block should be highlighted with inline styles")
		}
	})

	t.Run("tables render via GFM", func(t *testing.T) {
		doc, err := renderer.Render(context.Background(), "| a | b |\n|---|---|\n| 1 | 2 |\n", "")
		if err != nil {
			t.Fatalf("Render: %v", err)
		}
		if !strings.Contains(doc, "<table>") {
			t.Error("GFM tables should render as <table>")
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := renderer.Render(ctx, "# x", ""); !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	})
}
