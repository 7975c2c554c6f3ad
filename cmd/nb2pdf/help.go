package main

import (
	"fmt"
	"io"
)

// printUsage writes the top-level usage text.
func printUsage(w io.Writer) {
	fmt.Fprint(w, `nb2pdf - export Jupyter notebooks to PDF

Usage:
  nb2pdf [flags] <notebook.ipynb> [more.ipynb ...]
  nb2pdf doctor [--json]
  nb2pdf version

Flags:
  -o, --output PATH     output file, or directory for multiple inputs
  -e, --engine NAME     typesetting backend: typst (default), chrome
      --style NAME      embedded style for the chrome backend (plain, github)
  -t, --timeout DUR     per-notebook export timeout (e.g., 30s, 2m)
  -w, --workers N       parallel workers (0 = auto)
  -c, --config NAME     config file name or path
      --markup-only     write intermediate markup instead of PDF
  -q, --quiet           only show errors
  -v, --verbose         show pipeline phase transitions

Exit codes:
  0 success, 1 general error, 2 usage error, 3 I/O error, 4 engine error

The typst backend requires pandoc and typst on PATH. The chrome backend
requires pandoc and Chrome/Chromium (downloaded automatically on first run).
Run "nb2pdf doctor" to check your installation.
`)
}
