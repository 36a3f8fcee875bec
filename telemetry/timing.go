package telemetry

import (
	"io"
	"sync"
	"time"

	"github.com/HandmadeMath/HandmadeMath-sub000/output"
)

// TimingCollector records a tree of timed operations plus counters. It is
// safe for concurrent use.
type TimingCollector struct {
	mu      sync.Mutex
	roots   []*timerNode
	current *timerNode
	counts  map[string]int
	order   []string
}

type timerNode struct {
	name     string
	start    time.Time
	end      time.Time
	parent   *timerNode
	children []*timerNode
}

// NewTimingCollector creates an empty collector.
func NewTimingCollector() *TimingCollector {
	return &TimingCollector{counts: make(map[string]int)}
}

// Start begins timing an operation. While it runs, further Start calls
// nest under it.
func (c *TimingCollector) Start(name string) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	node := &timerNode{name: name, start: time.Now(), parent: c.current}
	if c.current == nil {
		c.roots = append(c.roots, node)
	} else {
		c.current.children = append(c.current.children, node)
	}
	c.current = node

	return &timingTimer{collector: c, node: node, current: true}
}

// Count adds n to the named counter. Counters are reported in the order
// they were first touched.
func (c *TimingCollector) Count(name string, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.counts[name]; !ok {
		c.order = append(c.order, name)
	}
	c.counts[name] += n
}

// Counter returns the current value of a counter.
func (c *TimingCollector) Counter(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[name]
}

// Report writes the timing tree followed by the counters.
func (c *TimingCollector) Report(w io.Writer, styles *output.Styles) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, root := range c.roots {
		formatTree(w, root, styles)
	}
	if len(c.order) > 0 {
		counts := make([]counter, 0, len(c.order))
		for _, name := range c.order {
			counts = append(counts, counter{name: name, value: c.counts[name]})
		}
		formatCounters(w, counts, styles)
	}
}

type timingTimer struct {
	collector *TimingCollector
	node      *timerNode
	current   bool // started through Start and so moved the cursor
}

// End stops the timer. Ending a timer twice keeps the first end time.
func (t *timingTimer) End() {
	t.collector.mu.Lock()
	defer t.collector.mu.Unlock()

	if t.node.end.IsZero() {
		t.node.end = time.Now()
	}
	if t.current && t.collector.current == t.node {
		t.collector.current = t.node.parent
	}
}

// Child starts a nested timer without moving the collector's cursor, so
// children of one timer may run concurrently.
func (t *timingTimer) Child(name string) Timer {
	t.collector.mu.Lock()
	defer t.collector.mu.Unlock()

	node := &timerNode{name: name, start: time.Now(), parent: t.node}
	t.node.children = append(t.node.children, node)

	return &timingTimer{collector: t.collector, node: node}
}
