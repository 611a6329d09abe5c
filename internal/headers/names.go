package headers

import "strings"

// The functions below share one precondition:
// name is a valid and [byte-lowercase] header name.
//
// [byte-lowercase]: https://infra.spec.whatwg.org/#byte-lowercase

// IsForbiddenRequestHeaderName reports whether name is a
// forbidden request-header name [per the Fetch standard].
//
// [per the Fetch standard]: https://fetch.spec.whatwg.org/#forbidden-header-name
func IsForbiddenRequestHeaderName(name string) bool {
	if _, found := forbiddenRequestHeaderNames[name]; found {
		return true
	}
	return strings.HasPrefix(name, "proxy-") || strings.HasPrefix(name, "sec-")
}

var forbiddenRequestHeaderNames = setOf(
	"accept-charset",
	"accept-encoding",
	"access-control-request-headers",
	"access-control-request-method",
	"connection",
	"content-length",
	"cookie",
	"cookie2",
	"date",
	"dnt",
	"expect",
	"host",
	"keep-alive",
	"origin",
	"referer",
	"set-cookie",
	"te",
	"trailer",
	"transfer-encoding",
	"upgrade",
	"via",
)

// IsProhibitedRequestHeaderName reports whether name is a CORS response
// header that has no place in a request. Attempts to allow such request
// headers almost always stem from some misunderstanding of CORS.
func IsProhibitedRequestHeaderName(name string) bool {
	return IsCORSResponseHeaderName(name)
}

// IsCORSResponseHeaderName reports whether name is one of the response
// headers written by CORS middleware.
func IsCORSResponseHeaderName(name string) bool {
	_, found := corsResponseHeaderNames[name]
	return found
}

var corsResponseHeaderNames = setOf(
	"access-control-allow-origin",
	"access-control-allow-credentials",
	"access-control-allow-methods",
	"access-control-allow-headers",
	"access-control-max-age",
	"access-control-expose-headers",
)

// IsForbiddenResponseHeaderName reports whether name is a
// forbidden response-header name [per the Fetch standard].
//
// [per the Fetch standard]: https://fetch.spec.whatwg.org/#forbidden-response-header-name
func IsForbiddenResponseHeaderName(name string) bool {
	return name == "set-cookie" || name == "set-cookie2"
}

// IsProhibitedResponseHeaderName reports whether name has no business being
// exposed to clients. Attempts to expose such response headers almost
// always stem from some misunderstanding of CORS.
func IsProhibitedResponseHeaderName(name string) bool {
	_, found := prohibitedResponseHeaderNames[name]
	return found
}

var prohibitedResponseHeaderNames = setOf(
	"origin",
	"access-control-request-method",
	"access-control-request-headers",
	"access-control-allow-methods",
	"access-control-allow-headers",
	"access-control-max-age",
)

// IsSafelistedResponseHeaderName reports whether name is a
// safelisted response-header name [per the Fetch standard].
//
// [per the Fetch standard]: https://fetch.spec.whatwg.org/#cors-safelisted-response-header-name
func IsSafelistedResponseHeaderName(name string) bool {
	_, found := safelistedResponseHeaderNames[name]
	return found
}

var safelistedResponseHeaderNames = setOf(
	"cache-control",
	"content-language",
	"content-length",
	"content-type",
	"expires",
	"last-modified",
	"pragma",
)

func setOf(names ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, name := range names {
		m[name] = struct{}{}
	}
	return m
}
