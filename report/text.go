package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/HandmadeMath/HandmadeMath-sub000/output"
	"github.com/HandmadeMath/HandmadeMath-sub000/rewrite"
)

// TextFormatter prints one diagnostic line per rewrite:
//
//	src/camera.c:12  HMM_Perspective(fov → HMM_Perspective_RH(HMM_AngleDeg(fov)
//	  warning: angles are now given in radians by default; ...
//
// Locations are padded to a common width within a file.
type TextFormatter struct {
	styles *output.Styles
	nested bool
}

// TextFormatterOption configures a TextFormatter.
type TextFormatterOption func(*TextFormatter)

// WithStyles colors the output.
func WithStyles(styles *output.Styles) TextFormatterOption {
	return func(tf *TextFormatter) {
		tf.styles = styles
	}
}

// WithNested also prints rewrites made inside wrapped angle arguments, as
// --verbose does.
func WithNested() TextFormatterOption {
	return func(tf *TextFormatter) {
		tf.nested = true
	}
}

// NewTextFormatter creates a text formatter.
func NewTextFormatter(opts ...TextFormatterOption) *TextFormatter {
	tf := &TextFormatter{}
	for _, opt := range opts {
		opt(tf)
	}
	return tf
}

// Format renders the rewrites of one file. A failed file renders as
// "path: error".
func (tf *TextFormatter) Format(f File) string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s\n",
			tf.style((*output.Styles).FilePath, f.Path),
			tf.style((*output.Styles).Error, f.Err.Error()))
	}

	var (
		rewrites []rewrite.Rewrite
		width    int
	)
	pathWidth := runewidth.StringWidth(f.Path)
	for _, rw := range f.Rewrites {
		if rw.Nested && !tf.nested {
			continue
		}
		rewrites = append(rewrites, rw)
		width = max(width, pathWidth+1+len(strconv.Itoa(rw.Line)))
	}

	var buf strings.Builder
	for _, rw := range rewrites {
		line := strconv.Itoa(rw.Line)
		pad := width - (pathWidth + 1 + len(line))

		buf.WriteString(tf.style((*output.Styles).FilePath, f.Path))
		buf.WriteString(":")
		buf.WriteString(tf.style((*output.Styles).Line, line))
		buf.WriteString(strings.Repeat(" ", pad+2))
		buf.WriteString(tf.style((*output.Styles).Find, rw.Find))
		buf.WriteString(" → ")
		buf.WriteString(tf.style((*output.Styles).Replace, rw.Replace))
		buf.WriteByte('\n')

		if w := rw.Warning(); w != "" {
			buf.WriteString("  ")
			buf.WriteString(tf.style((*output.Styles).Warning, "warning:"))
			buf.WriteString(" ")
			buf.WriteString(w)
			buf.WriteByte('\n')
		}
	}
	return buf.String()
}

// FormatAll renders every file in order.
func (tf *TextFormatter) FormatAll(files []File) string {
	var buf strings.Builder
	for _, f := range files {
		buf.WriteString(tf.Format(f))
	}
	return buf.String()
}

func (tf *TextFormatter) style(fn func(*output.Styles, string) string, text string) string {
	if tf.styles == nil || text == "" {
		return text
	}
	return fn(tf.styles, text)
}
