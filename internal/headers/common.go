// Package headers knows the names, values and list syntax of the HTTP
// headers that take part in the CORS protocol.
package headers

import (
	"net/http"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// header names in canonical format
const (
	// common request headers
	Origin = "Origin"

	// preflight-only request headers
	ACRM = "Access-Control-Request-Method"
	ACRH = "Access-Control-Request-Headers"

	// common response headers
	ACAO = "Access-Control-Allow-Origin"
	ACAC = "Access-Control-Allow-Credentials"

	// preflight-only response headers
	ACAM = "Access-Control-Allow-Methods"
	ACAH = "Access-Control-Allow-Headers"
	ACMA = "Access-Control-Max-Age"

	// actual-only response headers
	ACEH = "Access-Control-Expose-Headers"

	Vary = "Vary"
)

const Authorization = "authorization" // note: byte-lowercase

const (
	ValueTrue     = "true"
	ValueWildcard = "*"
	ValueSep      = ","
)

// IsValid reports whether name is a valid header name,
// [per the Fetch standard].
//
// [per the Fetch standard]: https://fetch.spec.whatwg.org/#header-name
func IsValid(name string) bool {
	return httpguts.ValidHeaderFieldName(name)
}

// IsValidValue reports whether v is a valid header value.
func IsValidValue(v string) bool {
	return httpguts.ValidHeaderFieldValue(v)
}

// First, if k is present in hdrs, returns the first value associated to k
// and true; otherwise, it returns "", false.
// Precondition: k is in canonical format (see [http.CanonicalHeaderKey]).
//
// Contrary to [http.Header.Get], First distinguishes an absent header
// from a header whose value is empty.
func First(hdrs http.Header, k string) (string, bool) {
	v, found := hdrs[k]
	if !found || len(v) == 0 {
		return "", false
	}
	return v[0], true
}

// AddVary adds name to the Vary header of hdrs unless one of the
// existing Vary elements already equals name (case-insensitively)
// or is a single asterisk.
// Calling AddVary repeatedly with the same name is therefore a no-op
// after the first call.
func AddVary(hdrs http.Header, name string) {
	for _, line := range hdrs[Vary] {
		for elem := range strings.SplitSeq(line, ValueSep) {
			elem = strings.TrimSpace(elem)
			if elem == ValueWildcard || strings.EqualFold(elem, name) {
				return
			}
		}
	}
	// Add rather than set: outer middleware may already have listed other
	// elements, which must not be clobbered.
	hdrs.Add(Vary, name)
}
