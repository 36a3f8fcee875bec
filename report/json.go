package report

import (
	"encoding/json"
)

// JSONFormatter formats file reports as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// FileJSON is a file report in JSON form.
type FileJSON struct {
	Path     string        `json:"path"`
	Changed  bool          `json:"changed"`
	Written  bool          `json:"written"`
	Error    string        `json:"error,omitempty"`
	Warnings []string      `json:"warnings,omitempty"`
	Rewrites []RewriteJSON `json:"rewrites"`
}

// RewriteJSON is a single rewrite in JSON form.
type RewriteJSON struct {
	Line    int    `json:"line"`
	Offset  int    `json:"offset"`
	Find    string `json:"find"`
	Replace string `json:"replace"`
	Group   string `json:"group"`
	Warning string `json:"warning,omitempty"`
	Nested  bool   `json:"nested,omitempty"`
}

// Format formats a single file as a JSON object on one line.
func (jf *JSONFormatter) Format(f File) string {
	data, _ := json.Marshal(jf.toJSON(f))
	return string(data)
}

// FormatAll formats a run as an indented JSON array.
func (jf *JSONFormatter) FormatAll(files []File) string {
	data, _ := json.MarshalIndent(jf.FormatAllToSlice(files), "", "  ")
	return string(data)
}

// FormatAllToSlice returns the reports as FileJSON values.
func (jf *JSONFormatter) FormatAllToSlice(files []File) []FileJSON {
	result := make([]FileJSON, 0, len(files))
	for _, f := range files {
		result = append(result, jf.toJSON(f))
	}
	return result
}

func (jf *JSONFormatter) toJSON(f File) FileJSON {
	out := FileJSON{
		Path:     f.Path,
		Changed:  f.Changed,
		Written:  f.Written,
		Warnings: f.Warnings(),
		Rewrites: make([]RewriteJSON, 0, len(f.Rewrites)),
	}
	if f.Err != nil {
		out.Error = f.Err.Error()
	}
	for _, rw := range f.Rewrites {
		out.Rewrites = append(out.Rewrites, RewriteJSON{
			Line:    rw.Line,
			Offset:  rw.Offset,
			Find:    rw.Find,
			Replace: rw.Replace,
			Group:   rw.Entry.Group.String(),
			Warning: rw.Warning(),
			Nested:  rw.Nested,
		})
	}
	return out
}
