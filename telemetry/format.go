package telemetry

import (
	"fmt"
	"io"
	"time"

	"github.com/HandmadeMath/HandmadeMath-sub000/output"
)

const slowOperation = 100 * time.Millisecond

type counter struct {
	name  string
	value int
}

// formatTree writes a timer and its children:
//
//	migrate 2 files: 4ms
//	├─ main.c: 2ms
//	│  └─ rewrite.scan: 1ms
//	└─ camera.c: 2ms
func formatTree(w io.Writer, root *timerNode, styles *output.Styles) {
	name := root.name
	if styles != nil {
		name = styles.Keyword(name)
	}
	_, _ = fmt.Fprintf(w, "%s: %s\n", name, formatDuration(root.duration()))

	for i, child := range root.children {
		formatNode(w, child, "", i == len(root.children)-1, styles)
	}
}

func formatNode(w io.Writer, node *timerNode, prefix string, last bool, styles *output.Styles) {
	branch, extension := "├─ ", "│  "
	if last {
		branch, extension = "└─ ", "   "
	}

	d := node.duration()
	tree, timing := prefix+branch, formatDuration(d)
	if styles != nil {
		tree = styles.Dim(tree)
		timing = styles.Timing(timing, d >= slowOperation)
	}
	_, _ = fmt.Fprintf(w, "%s%s: %s\n", tree, node.name, timing)

	for i, child := range node.children {
		formatNode(w, child, prefix+extension, i == len(node.children)-1, styles)
	}
}

func formatCounters(w io.Writer, counts []counter, styles *output.Styles) {
	width := 0
	for _, c := range counts {
		width = max(width, len(c.name))
	}
	for _, c := range counts {
		label := fmt.Sprintf("%-*s", width, c.name)
		if styles != nil {
			label = styles.Dim(label)
		}
		_, _ = fmt.Fprintf(w, "%s  %d\n", label, c.value)
	}
}

// duration of an unfinished timer runs until now.
func (n *timerNode) duration() time.Duration {
	if n.end.IsZero() {
		return time.Since(n.start)
	}
	return n.end.Sub(n.start)
}

// formatDuration shows milliseconds below one second and seconds above.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.0fms", float64(d)/float64(time.Millisecond))
	}
	return fmt.Sprintf("%.2fs", float64(d)/float64(time.Second))
}
