package rewrite

// firstArgument finds the end of the first argument of a call whose opening
// parenthesis ends right before from. The argument ends at the first comma
// or closing parenthesis outside any nested brackets and string or
// character literals. It reports false for an empty argument, a stray
// closing bracket, or an argument still open at the end of src.
func firstArgument(src []byte, from int) (int, bool) {
	depth := 0
	for i := from; i < len(src); i++ {
		switch c := src[i]; c {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth == 0 {
				return i, c == ')' && !blank(src[from:i])
			}
			depth--
		case ',':
			if depth == 0 {
				return i, !blank(src[from:i])
			}
		case '"', '\'':
			i = skipLiteral(src, i)
		}
	}
	return 0, false
}

// skipLiteral returns the index of the quote closing the literal opened at
// i, or the last index of src if it is never closed.
func skipLiteral(src []byte, i int) int {
	quote := src[i]
	for i++; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case quote:
			return i
		}
	}
	return len(src) - 1
}

func blank(b []byte) bool {
	for _, c := range b {
		if !isSpace(c) {
			return false
		}
	}
	return true
}
