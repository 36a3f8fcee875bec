package rewrite

import (
	"github.com/HandmadeMath/HandmadeMath-sub000/table"
)

// matcher holds the scan state for a single input. A fresh matcher is built
// for every call to Engine.Rewrite, so no progress ever leaks between files.
type matcher struct {
	engine *Engine
	tbl    *table.Table
	src    []byte
	base   int // offset of src within the whole document
	lines  lineCounter
	nested bool

	progress []int // per entry, bytes matched ending at the cursor
	ctx      scanContext

	prefix     int  // entry index of the open prefix, -1 when none
	prefixAt   int  // offset where the open prefix starts
	prefixDone bool // the open prefix was emitted by an earlier commit
	segment    int  // where the next name segment of the open prefix starts

	pos int // start of input not yet emitted
	i   int // scan cursor

	spans    Spans
	rewrites []Rewrite
}

func newMatcher(e *Engine, src []byte, base, line int, nested bool) *matcher {
	return &matcher{
		engine:   e,
		tbl:      e.table,
		src:      src,
		base:     base,
		lines:    lineCounter{src: src, line: line},
		nested:   nested,
		progress: make([]int, e.table.Len()),
		prefix:   -1,
	}
}

// run scans until the input is exhausted, then flushes the remaining slice.
func (m *matcher) run() {
	for m.i < len(m.src) {
		m.step()
	}
	m.spans.appendOriginal(m.src[m.pos:])
}

// step consumes the byte under the cursor. It either advances the cursor
// by one or commits a rewrite, which moves both pos and the cursor past the
// consumed input.
func (m *matcher) step() {
	c := m.src[m.i]

	if m.ctx != neutral && isBoundary(c) {
		m.closeContext()
	}

	if m.advancePrefixes(c) {
		m.i++
		return
	}
	if m.ctx == neutral {
		m.i++
		return
	}

	switch m.ctx {
	case inTypePrefix:
		lo, hi := m.tbl.Range(table.TypeName)
		m.advance(lo, hi, c)
		if idx := m.completed(lo, hi); idx >= 0 {
			m.commitTag(idx)
			return
		}
		m.clearCompleted(lo, hi)

	case inFunctionPrefix:
		lo, _ := m.tbl.Range(table.FunctionType)
		_, hi := m.tbl.Range(table.Handedness)
		m.advance(lo, hi, c)

		// A confirmed call of a handedness marker covers any tag ending
		// on the same byte (Mat4ToQuaternion ends like Quaternion). The
		// marker must be a whole segment, so HMM_InvLookAt stays as is.
		hlo, hhi := m.tbl.Range(table.Handedness)
		if idx := m.completed(hlo, hhi); idx >= 0 && m.peek(m.i+1) == '(' &&
			m.i+1-len(m.tbl.Entry(idx).Find) == m.segment {
			m.commitHandedness(idx)
			return
		}

		_, thi := m.tbl.Range(table.FunctionVerb)
		if idx := m.completed(lo, thi); idx >= 0 && !m.isTypeName(idx) {
			m.commitTag(idx)
			return
		}
		m.clearCompleted(lo, hi)
	}

	m.i++
}

// advancePrefixes feeds c to every prefix marker. It reports whether a
// marker completed, in which case a new context is open.
func (m *matcher) advancePrefixes(c byte) bool {
	lo, _ := m.tbl.Range(table.PrefixType)
	_, hi := m.tbl.Range(table.PrefixFunction)
	m.advance(lo, hi, c)

	idx := m.completed(lo, hi)
	if idx < 0 {
		return false
	}

	e := m.tbl.Entry(idx)
	m.ctx = contextFor(e.Group)
	m.prefix = idx
	m.prefixAt = m.i + 1 - len(e.Find)
	m.prefixDone = false
	m.segment = m.i + 1
	m.progress[idx] = 0
	m.resetGated()
	return true
}

func (m *matcher) advance(lo, hi int, c byte) {
	for i := lo; i < hi; i++ {
		m.progress[i] = m.tbl.Advance(i, m.progress[i], c)
	}
}

// completed returns the first entry in [lo, hi) whose match is complete.
func (m *matcher) completed(lo, hi int) int {
	for i := lo; i < hi; i++ {
		if m.tbl.Complete(i, m.progress[i]) {
			return i
		}
	}
	return -1
}

// clearCompleted resets counters that completed without committing.
func (m *matcher) clearCompleted(lo, hi int) {
	for i := lo; i < hi; i++ {
		if m.tbl.Complete(i, m.progress[i]) {
			m.progress[i] = 0
		}
	}
}

// resetGated zeroes every counter after the prefix markers. Prefix
// markers occupy the leading groups of a table.
func (m *matcher) resetGated() {
	_, hi := m.tbl.Range(table.PrefixFunction)
	for i := hi; i < len(m.progress); i++ {
		m.progress[i] = 0
	}
}

func (m *matcher) closeContext() {
	m.ctx = neutral
	m.prefix = -1
	m.prefixDone = false
	m.resetGated()
}

// restart resets all progress and resumes scanning at pos.
func (m *matcher) restart() {
	clear(m.progress)
	m.i = m.pos
}

func (m *matcher) peek(i int) byte {
	if i < len(m.src) {
		return m.src[i]
	}
	return 0
}

// isTypeName reports whether a function type tag that just completed is a
// whole 2.x type name such as HMM_Vec2 rather than part of a 1.x function.
// Those are left alone so that migrated files are stable.
func (m *matcher) isTypeName(idx int) bool {
	e := m.tbl.Entry(idx)
	if e.Group != table.FunctionType || m.prefixDone || m.prefix < 0 {
		return false
	}
	start := m.i + 1 - len(e.Find)
	if start != m.prefixAt+len(m.tbl.Entry(m.prefix).Find) {
		return false
	}

	end := m.i + 1
	if end < len(m.src) && !isBoundary(m.src[end]) {
		return false
	}
	for end < len(m.src) && isSpace(m.src[end]) {
		end++
	}
	return m.peek(end) != '('
}

// emitLead flushes the pending input up to start, emitting the open
// prefix's replacement if no earlier commit did. It returns where the
// consumed region begins and the replacement text emitted for it.
func (m *matcher) emitLead(start int) (int, []byte) {
	if m.prefixDone || m.prefix < 0 || m.prefixAt < m.pos {
		m.spans.appendOriginal(m.src[m.pos:start])
		return start, nil
	}

	p := m.tbl.Entry(m.prefix)
	between := m.src[m.prefixAt+len(p.Find) : start]

	m.spans.appendOriginal(m.src[m.pos:m.prefixAt])
	m.spans.appendReplacement(p.Replace)
	m.spans.appendOriginal(between)
	m.prefixDone = true

	lead := make([]byte, 0, len(p.Replace)+len(between))
	lead = append(lead, p.Replace...)
	lead = append(lead, between...)
	return m.prefixAt, lead
}

// commitTag replaces a type name or function tag, upper-casing a
// dimensional suffix that directly follows it.
func (m *matcher) commitTag(idx int) {
	e := m.tbl.Entry(idx)
	end := m.i + 1
	start := end - len(e.Find)

	from, out := m.emitLead(start)
	m.spans.appendReplacement(e.Replace)
	out = append(out, e.Replace...)

	if end < len(m.src) && e.HasSuffix(m.src[end]) {
		upper := string(m.src[end] - 'a' + 'A')
		m.spans.appendReplacement(upper)
		out = append(out, upper...)
		end++
	}

	m.record(from, end, out, e)
	m.pos = end
	m.segment = end
	m.restart()
}

// commitHandedness rewrites a legacy call to its right-handed variant,
// wrapping the first argument in the angle helper when the entry asks.
func (m *matcher) commitHandedness(idx int) {
	e := m.tbl.Entry(idx)
	end := m.i + 1
	start := end - len(e.Find)

	from, out := m.emitLead(start)
	call := e.Replace + m.engine.handedSuffix + "("
	m.spans.appendReplacement(call)
	out = append(out, call...)
	end++ // '('

	var nested []Rewrite
	if e.WrapAngle {
		if argEnd, ok := firstArgument(m.src, end); ok {
			sub := newMatcher(m.engine, m.src[end:argEnd], m.base+end, m.lines.at(end), true)
			sub.run()

			open := m.engine.angleHelper + "("
			m.spans.appendReplacement(open)
			m.spans = append(m.spans, sub.spans...)
			m.spans.appendReplacement(")")

			out = append(out, open...)
			out = append(out, sub.spans.Join()...)
			out = append(out, ')')
			nested = sub.rewrites
			end = argEnd
		}
	}

	m.record(from, end, out, e)
	m.rewrites = append(m.rewrites, nested...)
	m.pos = end
	m.closeContext()
	m.restart()
}

func (m *matcher) record(from, to int, replace []byte, e table.Entry) {
	m.rewrites = append(m.rewrites, Rewrite{
		Line:    m.lines.at(from),
		Offset:  m.base + from,
		Find:    string(m.src[from:to]),
		Replace: string(replace),
		Entry:   e,
		Nested:  m.nested,
	})
}

// lineCounter maps offsets to 1-indexed line numbers, counting forward
// from the last offset asked for.
type lineCounter struct {
	src  []byte
	off  int
	line int
}

func (l *lineCounter) at(offset int) int {
	if offset < l.off {
		// Offsets only move backwards across a nested argument; recount.
		for i := offset; i < l.off; i++ {
			if l.src[i] == '\n' {
				l.line--
			}
		}
		l.off = offset
		return l.line
	}
	for ; l.off < offset && l.off < len(l.src); l.off++ {
		if l.src[l.off] == '\n' {
			l.line++
		}
	}
	return l.line
}
