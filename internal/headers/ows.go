package headers

// TrimOWS trims up to n bytes of [optional whitespace (OWS)]
// from the start of and/or the end of s.
// If neither end of s carries more than n bytes of OWS,
// it returns the trimmed result and true.
// Otherwise, it returns s and false.
//
// [optional whitespace (OWS)]: https://httpwg.org/specs/rfc9110.html#whitespace
func TrimOWS(s string, n int) (string, bool) {
	start := 0
	for start < len(s) && isOWS(s[start]) {
		start++
	}
	if start > n {
		return s, false
	}
	if start == len(s) { // s consists only of OWS
		return "", true
	}
	end := len(s)
	for end > start && isOWS(s[end-1]) {
		end--
	}
	if len(s)-end > n {
		return s, false
	}
	return s[start:end], true
}

func isOWS(b byte) bool {
	return b == ' ' || b == '\t'
}
