package rewrite

import (
	"bytes"
	"io"
)

// Span is a contiguous piece of output: either a slice of the original
// input or a replacement literal.
type Span struct {
	Text     []byte
	Replaced bool `repr:"omitempty"`
}

// Spans is an append-only sequence of output spans. Joining the spans in
// order yields the rewritten document.
type Spans []Span

// appendOriginal appends an unreplaced slice of the input. Empty slices are
// dropped so they never show up as separate spans.
func (s *Spans) appendOriginal(b []byte) {
	if len(b) == 0 {
		return
	}
	*s = append(*s, Span{Text: b})
}

// appendReplacement appends a replacement literal. Empty replacements are
// deletions and produce no span.
func (s *Spans) appendReplacement(text string) {
	if text == "" {
		return
	}
	*s = append(*s, Span{Text: []byte(text), Replaced: true})
}

// Len returns the total number of bytes across all spans.
func (s Spans) Len() int {
	n := 0
	for _, span := range s {
		n += len(span.Text)
	}
	return n
}

// Join concatenates the spans with no separator. Zero spans join to an
// empty, non-nil slice.
func (s Spans) Join() []byte {
	if len(s) == 1 {
		return s[0].Text
	}
	out := make([]byte, 0, s.Len())
	for _, span := range s {
		out = append(out, span.Text...)
	}
	return out
}

// WriteTo streams the joined spans to w.
func (s Spans) WriteTo(w io.Writer) (int64, error) {
	var n int64
	for _, span := range s {
		m, err := w.Write(span.Text)
		n += int64(m)
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// String returns the joined spans as a string.
func (s Spans) String() string {
	var buf bytes.Buffer
	_, _ = s.WriteTo(&buf)
	return buf.String()
}
