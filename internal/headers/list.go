package headers

import (
	"strings"

	"github.com/taisey/cors/internal/util"
)

const (
	MaxOWSBytes      = 1  // number of leading/trailing OWS bytes tolerated
	MaxEmptyElements = 16 // number of empty list elements tolerated
	MaxElements      = 64 // number of non-empty list elements tolerated
)

// NormalizeList parses values as the lines of one [list-based field]
// (such as Access-Control-Request-Headers) and returns its elements,
// byte-lowercased, in the order in which they appear.
//
// Although the Fetch standard requires browsers to send a single ACRH line
// free of whitespace, intermediaries may split it across several lines or
// sprinkle some optional whitespace (OWS) around its elements.
// RFC 9110 asks recipients to tolerate arbitrarily long OWS and
// "a reasonable number" of empty elements, but doing so exposes servers
// to adversarial preflight requests. Therefore, NormalizeList tolerates
// at most [MaxOWSBytes] OWS bytes around each element, at most
// [MaxEmptyElements] empty elements, and at most [MaxElements] elements
// overall. It also rejects elements that are not valid header names.
// In every one of those cases, its ok result is false.
//
// [list-based field]: https://httpwg.org/specs/rfc9110.html#abnf.extension
func NormalizeList(values []string) (elems []string, ok bool) {
	var empty int
	for _, line := range values {
		for {
			elem, rest, more := strings.Cut(line, ValueSep)
			elem, ok = TrimOWS(elem, MaxOWSBytes)
			if !ok {
				return nil, false
			}
			if elem == "" {
				empty++
				if empty > MaxEmptyElements {
					return nil, false
				}
			} else {
				if len(elems) == MaxElements || !IsValid(elem) {
					return nil, false
				}
				elems = append(elems, util.ByteLowercase(elem))
			}
			if !more {
				break
			}
			line = rest
		}
	}
	return elems, true
}
