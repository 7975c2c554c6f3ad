package nb2pdf

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Cell types and output kinds defined by the nbformat spec.
const (
	CellTypeCode     = "code"
	CellTypeMarkdown = "markdown"
	CellTypeRaw      = "raw"

	OutputDisplayData       = "display_data"
	OutputExecuteResult     = "execute_result"
	OutputUpdateDisplayData = "update_display_data"
	OutputStream            = "stream"
)

// MIME types the exporter cares about.
const (
	MIMELatex = "text/latex"
	MIMEPlain = "text/plain"
)

// MultilineText is notebook text that serializes as either a single string
// or a list of line fragments. It always marshals back as a list, which is
// valid nbformat and what pandoc's ipynb reader expects.
type MultilineText []string

// UnmarshalJSON accepts both the string and list-of-strings encodings.
func (t *MultilineText) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = MultilineText{s}
		return nil
	}
	var lines []string
	if err := json.Unmarshal(data, &lines); err != nil {
		return fmt.Errorf("text is neither string nor string list: %w", err)
	}
	*t = MultilineText(lines)
	return nil
}

// String joins the fragments into one string. Fragments already carry their
// own newlines per the nbformat spec, so no separator is inserted.
func (t MultilineText) String() string {
	if len(t) == 1 {
		return t[0]
	}
	return strings.Join(t, "")
}

// Output is one entry of a code cell's outputs list.
type Output struct {
	OutputType     string                   `json:"output_type"`
	Name           string                   `json:"name,omitempty"`
	Text           MultilineText            `json:"text,omitempty"`
	Data           map[string]MultilineText `json:"data,omitempty"`
	Metadata       json.RawMessage          `json:"metadata,omitempty"`
	ExecutionCount json.RawMessage          `json:"execution_count,omitempty"`
	EName          string                   `json:"ename,omitempty"`
	EValue         string                   `json:"evalue,omitempty"`
	Traceback      []string                 `json:"traceback,omitempty"`
}

// Cell is one notebook cell. Fields the exporter never touches are kept as
// raw JSON so a sanitized notebook round-trips without loss.
type Cell struct {
	CellType       string          `json:"cell_type"`
	ID             string          `json:"id,omitempty"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
	Source         MultilineText   `json:"source"`
	ExecutionCount json.RawMessage `json:"execution_count,omitempty"`
	Outputs        []*Output       `json:"outputs,omitempty"`
	Attachments    json.RawMessage `json:"attachments,omitempty"`
}

// Notebook is the decoded ipynb document.
type Notebook struct {
	Cells         []*Cell         `json:"cells"`
	Metadata      json.RawMessage `json:"metadata,omitempty"`
	NBFormat      int             `json:"nbformat,omitempty"`
	NBFormatMinor int             `json:"nbformat_minor,omitempty"`
}

// ParseNotebook decodes raw ipynb JSON. The returned notebook is exclusively
// owned by the caller; mutating it never aliases the input bytes.
func ParseNotebook(data []byte) (*Notebook, error) {
	if len(data) == 0 {
		return nil, ErrEmptyNotebook
	}
	var nb Notebook
	if err := json.Unmarshal(data, &nb); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotebookParse, err)
	}
	return &nb, nil
}

// Encode serializes the notebook back to ipynb JSON for the converter.
func (nb *Notebook) Encode() ([]byte, error) {
	data, err := json.Marshal(nb)
	if err != nil {
		return nil, fmt.Errorf("encoding notebook: %w", err)
	}
	return data, nil
}
