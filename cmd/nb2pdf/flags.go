package main

import (
	"os"

	flag "github.com/spf13/pflag"
)

// convertFlags holds all flags for the default convert command.
type convertFlags struct {
	config     string
	output     string
	workers    int
	timeout    string
	engine     string
	style      string
	markupOnly bool
	quiet      bool
	verbose    bool
}

// parseConvertFlags parses convert flags and returns positional args
// (input notebook paths).
func parseConvertFlags(args []string) (*convertFlags, []string, error) {
	fs := flag.NewFlagSet("nb2pdf", flag.ContinueOnError)
	f := &convertFlags{}

	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-notebook export timeout (e.g., 30s, 2m)")
	fs.StringVarP(&f.engine, "engine", "e", "", "typesetting backend: typst, chrome")
	fs.StringVar(&f.style, "style", "", "embedded style name for the chrome backend")
	fs.BoolVar(&f.markupOnly, "markup-only", false, "write intermediate markup instead of PDF")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show phase transitions")

	fs.Usage = func() { printUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}
