// Package methods classifies HTTP method names as the Fetch standard does.
package methods

import (
	"net/http"

	"github.com/taisey/cors/internal/util"
	"golang.org/x/net/http/httpguts"
)

// IsValid reports whether name is a valid method, [per the Fetch standard].
//
// [per the Fetch standard]: https://fetch.spec.whatwg.org/#concept-method
func IsValid(name string) bool {
	// The method production is identical to that of header names.
	return httpguts.ValidHeaderFieldName(name)
}

// Normalize [normalizes] name: the byte-uppercase form of name is returned
// if it is one of DELETE, GET, HEAD, OPTIONS, POST, or PUT;
// otherwise, name is returned unchanged.
//
// [normalizes]: https://fetch.spec.whatwg.org/#concept-method-normalize
func Normalize(name string) string {
	upper := util.ByteUppercase(name)
	switch upper {
	case http.MethodDelete,
		http.MethodGet,
		http.MethodHead,
		http.MethodOptions,
		http.MethodPost,
		http.MethodPut:
		return upper
	default:
		return name
	}
}

// IsForbidden reports whether name is a forbidden method,
// [per the Fetch standard]. The comparison is case-insensitive.
//
// [per the Fetch standard]: https://fetch.spec.whatwg.org/#forbidden-method
func IsForbidden(name string) bool {
	switch util.ByteUppercase(name) {
	case http.MethodConnect, http.MethodTrace, "TRACK":
		return true
	default:
		return false
	}
}

// IsSafelisted reports whether name is a CORS-safelisted method,
// [per the Fetch standard]. The comparison is case-sensitive.
//
// [per the Fetch standard]: https://fetch.spec.whatwg.org/#cors-safelisted-method
func IsSafelisted(name string) bool {
	switch name {
	case http.MethodGet, http.MethodHead, http.MethodPost:
		return true
	default:
		return false
	}
}
