package rewrite

import "github.com/HandmadeMath/HandmadeMath-sub000/table"

// scanContext records which kind of prefixed identifier the cursor is in.
// The two prefix markers are case-distinct, so the contexts are exclusive.
type scanContext uint8

const (
	neutral scanContext = iota
	inTypePrefix
	inFunctionPrefix
)

func (c scanContext) String() string {
	switch c {
	case inTypePrefix:
		return "type"
	case inFunctionPrefix:
		return "function"
	default:
		return "neutral"
	}
}

// contextFor maps a completed prefix group to the context it opens.
func contextFor(g table.Group) scanContext {
	if g == table.PrefixType {
		return inTypePrefix
	}
	return inFunctionPrefix
}

// isBoundary reports whether c cannot be part of an identifier and so ends
// any open prefix context.
func isBoundary(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f',
		'(', ')', '[', ']', '{', '}', ';', ',', '.',
		'+', '-', '*', '/', '%', '=', '<', '>', '!',
		'&', '|', '^', '~', '?', ':', '"', '\'', '#', '\\':
		return true
	}
	return false
}

// isBlank reports horizontal whitespace.
func isBlank(c byte) bool {
	return c == ' ' || c == '\t'
}

// isSpace reports whitespace that may sit between a name and its call
// parenthesis.
func isSpace(c byte) bool {
	return isBlank(c) || c == '\n' || c == '\r'
}
