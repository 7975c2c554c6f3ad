package nb2pdf

import (
	"strconv"
	"strings"
)

// PlaceholderPrefix is the stem of the synthetic tokens substituted for math
// content so it survives the lossy conversion step intact. Tokens are the
// prefix plus a monotonic per-extraction counter, so they are pairwise
// distinct and never collide with real notebook text.
const PlaceholderPrefix = "PDFEXPORTER_MATH_"

// displayWrapperPrefix is the wrapper IPython puts around display-math
// reprs: $\displaystyle <expr>$.
const displayWrapperPrefix = `$\displaystyle`

// MathEntry maps one placeholder token to the raw math source it stands for.
type MathEntry struct {
	Token  string
	Source string
}

// MathMap records extracted math in extraction order. Order matters: the
// splicer consumes entries left to right, matching placeholder numbering.
// A MathMap lives for a single export and is never persisted.
type MathMap struct {
	entries []MathEntry
}

// Len returns the number of extracted math fragments.
func (m *MathMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Entries returns the recorded entries in extraction order.
func (m *MathMap) Entries() []MathEntry {
	if m == nil {
		return nil
	}
	return m.entries
}

func (m *MathMap) add(token, source string) {
	m.entries = append(m.entries, MathEntry{Token: token, Source: source})
}

// ExtractMath scans every output of every cell, in cell order then output
// order, and rewrites math-bearing outputs in place:
//
//   - update_display_data outputs are renamed to display_data (pandoc's
//     ipynb reader does not recognize the former kind),
//   - the text/latex representation is recorded in the returned MathMap
//     under a fresh placeholder token,
//   - text/plain is overwritten with the token so pandoc's most-preserving
//     path carries it through as literal text,
//   - text/latex is removed so pandoc does not independently attempt (and
//     fail) to render it.
//
// The notebook must be exclusively owned by the caller; outputs are mutated
// directly. Extraction never fails: malformed math is stored raw and later
// falls back to a literal block.
func ExtractMath(nb *Notebook) *MathMap {
	m := &MathMap{}
	counter := 0
	for _, cell := range nb.Cells {
		for _, out := range cell.Outputs {
			if out.OutputType == OutputUpdateDisplayData {
				out.OutputType = OutputDisplayData
			}
			latex, ok := out.Data[MIMELatex]
			if !ok {
				continue
			}
			source := stripDisplayWrapper(strings.TrimSpace(latex.String()))
			token := PlaceholderPrefix + strconv.Itoa(counter)
			counter++
			m.add(token, source)

			if out.Data == nil {
				out.Data = make(map[string]MultilineText)
			}
			out.Data[MIMEPlain] = MultilineText{token}
			delete(out.Data, MIMELatex)
		}
	}
	return m
}

// stripDisplayWrapper removes a single $\displaystyle ... $ wrapper if
// present, returning the bare expression. Anything else passes through
// unchanged.
func stripDisplayWrapper(s string) string {
	if !strings.HasPrefix(s, displayWrapperPrefix) || !strings.HasSuffix(s, "$") {
		return s
	}
	inner := s[len(displayWrapperPrefix) : len(s)-1]
	if inner == "" {
		return s
	}
	return strings.TrimSpace(inner)
}
