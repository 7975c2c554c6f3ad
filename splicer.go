package nb2pdf

import "strings"

// fenceChar delimits literal blocks in the converter's output. Pandoc emits
// placeholder blocks as bare backtick fences with no language tag; the
// scanning below relies on that contract and must be revisited if the
// pinned converter version changes its raw-block shape.
const fenceChar = '`'

// MathPatch is the splice instruction for one placeholder: the converted
// markup for the math, or (when Failed is set) the raw source to embed as a
// literal fallback block so the reader at least sees it.
type MathPatch struct {
	Token  string
	Markup string
	Source string
	Failed bool
}

// SpliceMath replaces each placeholder's enclosing fenced literal block with
// the converted math markup, patch by patch in extraction order. Positions
// are recomputed on the mutated document for every patch; no offsets are
// carried across replacements.
//
// Per-patch recovery policy: a placeholder absent from the document, or one
// without a locatable enclosing fence, is skipped without error. The
// converter dropping a block is not a failure, and a malformed document must
// never be corrupted by a misplaced splice.
func SpliceMath(doc string, patches []MathPatch) string {
	for _, p := range patches {
		doc = spliceOne(doc, p)
	}
	return doc
}

func spliceOne(doc string, p MathPatch) string {
	idx := strings.Index(doc, p.Token)
	if idx < 0 {
		return doc
	}

	// Opening fence: nearest fence character before the token, extended
	// backward over the maximal run. Fences may be wider than the minimal
	// three characters when the converter nests blocks.
	open := strings.LastIndexByte(doc[:idx], fenceChar)
	if open < 0 {
		return doc
	}
	start := open
	for start > 0 && doc[start-1] == fenceChar {
		start--
	}

	// Closing fence: next fence character after the token, extended forward
	// over the maximal run. The closing width is not assumed to match the
	// opening width.
	rest := idx + len(p.Token)
	off := strings.IndexByte(doc[rest:], fenceChar)
	if off < 0 {
		return doc
	}
	end := rest + off
	for end < len(doc) && doc[end] == fenceChar {
		end++
	}

	repl := strings.TrimSpace(p.Markup)
	if p.Failed {
		repl = fallbackBlock(p.Source)
	}
	return doc[:start] + repl + doc[end:]
}

// fallbackBlock wraps unconvertible math source in a generic literal block.
func fallbackBlock(source string) string {
	return "```\n" + source + "\n```"
}
