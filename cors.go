package cors

import (
	"net/http"
	"strings"

	"github.com/taisey/cors/internal/headers"
	"github.com/taisey/cors/internal/methods"
)

// An OriginMatch is the verdict of a middleware about some origin.
type OriginMatch struct {
	// Allowed reports whether the origin is allowed.
	Allowed bool
	// Echo is the value of Access-Control-Allow-Origin for that origin;
	// it is empty if the origin is not allowed.
	Echo string
}

func (icfg *internalConfig) matchOrigin(origin string) OriginMatch {
	switch {
	case icfg.anyOrigin && !icfg.credentialed:
		return OriginMatch{Allowed: true, Echo: headers.ValueWildcard}
	case icfg.anyOrigin,
		icfg.matcher.Contains(origin),
		icfg.originFunc != nil && icfg.originFunc(origin):
		return OriginMatch{Allowed: true, Echo: origin}
	default:
		return OriginMatch{}
	}
}

// varyByOrigin reports whether responses to actual requests depend on the
// value of the Origin request header.
func (icfg *internalConfig) varyByOrigin() bool {
	return !icfg.anyOrigin || icfg.credentialed
}

// IsPreflight reports whether a request whose method and headers are
// method and reqHdrs is a CORS-preflight request, i.e. an OPTIONS request
// that carries both an Origin and an Access-Control-Request-Method header;
// see https://fetch.spec.whatwg.org/#cors-preflight-request.
// Framework adapters use it to decide whether to call [*Middleware.Preflight].
func IsPreflight(method string, reqHdrs http.Header) bool {
	if method != http.MethodOptions {
		return false
	}
	_, hasOrigin := headers.First(reqHdrs, headers.Origin)
	_, hasACRM := headers.First(reqHdrs, headers.ACRM)
	return hasOrigin && hasACRM
}

// preflightOutcome describes how a preflight request fared.
type preflightOutcome uint8

const (
	preflightOK preflightOutcome = iota
	preflightOriginRejected
	preflightMethodRejected
	preflightHeadersRejected
)

func (o preflightOutcome) String() string {
	switch o {
	case preflightOK:
		return "ok"
	case preflightOriginRejected:
		return "origin not allowed"
	case preflightMethodRejected:
		return "method not allowed"
	case preflightHeadersRejected:
		return "request headers not allowed"
	default:
		return "unknown"
	}
}

// preflight synthesizes the response to a preflight request whose headers
// are reqHdrs.
func (icfg *internalConfig) preflight(reqHdrs http.Header, debug bool) (*Response, preflightOutcome) {
	res := Response{
		Status: icfg.preflightStatus,
		Header: make(http.Header),
	}
	outcome := icfg.writePreflightHeaders(res.Header, reqHdrs, debug)
	if outcome == preflightOriginRejected {
		res.Status = icfg.preflightFailStatus
	}
	return &res, outcome
}

// writePreflightHeaders sets, in resHdrs, the CORS headers of the response
// to a preflight request whose headers are reqHdrs.
// Headers that signal a failed check are omitted, unless debug is true,
// in which case the configured values are listed instead so that browsers
// can print a helpful message.
func (icfg *internalConfig) writePreflightHeaders(
	resHdrs http.Header,
	reqHdrs http.Header,
	debug bool,
) preflightOutcome {
	// Note: Vary has no bearing on the browser's preflight cache;
	// see https://fetch.spec.whatwg.org/#concept-cache.
	origin, _ := headers.First(reqHdrs, headers.Origin)
	match := icfg.matchOrigin(origin)
	if !match.Allowed {
		return preflightOriginRejected
	}
	resHdrs.Set(headers.ACAO, match.Echo)
	if icfg.credentialed {
		// Preflight requests never carry credentials; see
		// https://fetch.spec.whatwg.org/#example-xhr-credentials.
		resHdrs.Set(headers.ACAC, headers.ValueTrue)
	}
	for name, values := range icfg.extra {
		resHdrs[name] = append([]string(nil), values...)
	}

	outcome := preflightOK
	acrm, _ := headers.First(reqHdrs, headers.ACRM)
	if acam, ok := icfg.allowMethods(acrm); ok {
		if acam != "" {
			resHdrs.Set(headers.ACAM, acam)
		}
	} else {
		outcome = preflightMethodRejected
		if debug && icfg.acam != "" {
			resHdrs.Set(headers.ACAM, icfg.acam)
		}
	}

	if acah, ok := icfg.allowHeaders(reqHdrs[headers.ACRH]); ok {
		if acah != "" {
			resHdrs.Set(headers.ACAH, acah)
		}
	} else {
		if outcome == preflightOK {
			outcome = preflightHeadersRejected
		}
		if debug && icfg.acah != "" {
			resHdrs.Set(headers.ACAH, icfg.acah)
		}
	}

	if outcome == preflightOK && icfg.acma != "" {
		resHdrs.Set(headers.ACMA, icfg.acma)
	}
	return outcome
}

// allowMethods returns the value of ACAM in response to a preflight
// request whose ACRM value is acrm, and whether acrm is allowed.
// An empty result means that ACAM should be omitted.
func (icfg *internalConfig) allowMethods(acrm string) (string, bool) {
	if icfg.allowAnyMethod {
		if icfg.credentialed {
			// Browsers read an asterisk as a literal method name
			// when the request is credentialed.
			return acrm, true
		}
		return headers.ValueWildcard, true
	}
	// CORS-safelisted methods need no explicit allowance; see
	// https://fetch.spec.whatwg.org/#ref-for-cors-safelisted-method%E2%91%A2.
	allowed := methods.IsSafelisted(acrm) || icfg.allowedMethods.Contains(acrm)
	switch {
	case !allowed:
		return "", false
	case icfg.echoMethod:
		return acrm, true
	default:
		return icfg.acam, true
	}
}

// allowHeaders returns the value of ACAH in response to a preflight
// request whose ACRH field lines are acrh, and whether every name listed
// in acrh is allowed.
// An empty result means that ACAH should be omitted.
func (icfg *internalConfig) allowHeaders(acrh []string) (string, bool) {
	// Browsers send at most one ACRH line, but intermediaries may split it;
	// see https://github.com/rs/cors/issues/184.
	names, ok := headers.NormalizeList(acrh)
	if !ok {
		return "", false
	}
	if len(names) == 0 {
		return icfg.acah, true
	}
	for _, name := range names {
		if !icfg.isAllowedRequestHeader(name) {
			return "", false
		}
	}
	return strings.Join(names, headers.ValueSep), true
}

// inject sets, in resHdrs, the CORS headers of the response to a request
// whose method and headers are method and reqHdrs.
// Other headers are left untouched; calling inject more than once on the
// same response has the same effect as calling it once.
func (icfg *internalConfig) inject(method string, reqHdrs, resHdrs http.Header, debug bool) {
	if IsPreflight(method, reqHdrs) {
		icfg.writePreflightHeaders(resHdrs, reqHdrs, debug)
		return
	}
	// Browsers send at most one Origin header; see
	// https://fetch.spec.whatwg.org/#http-network-or-cache-fetch (step 12).
	origin, found := headers.First(reqHdrs, headers.Origin)
	if !found {
		// not a CORS request; see https://fetch.spec.whatwg.org/#cors-request
		icfg.injectNonCORS(method, resHdrs)
		return
	}
	icfg.injectActual(method, origin, resHdrs)
}

func (icfg *internalConfig) injectNonCORS(method string, resHdrs http.Header) {
	if icfg.varyByOrigin() {
		if method != http.MethodOptions {
			// See https://fetch.spec.whatwg.org/#cors-protocol-and-http-caches.
			headers.AddVary(resHdrs, headers.Origin)
		}
		return
	}
	resHdrs.Set(headers.ACAO, headers.ValueWildcard)
	if icfg.aceh != "" {
		// see https://github.com/whatwg/fetch/issues/1601
		resHdrs.Set(headers.ACEH, icfg.aceh)
	}
}

func (icfg *internalConfig) injectActual(method, origin string, resHdrs http.Header) {
	// Responses to OPTIONS requests are not cacheable; see
	// https://httpwg.org/specs/rfc9110.html#rfc.section.9.3.7.
	if icfg.varyByOrigin() && method != http.MethodOptions {
		headers.AddVary(resHdrs, headers.Origin)
	}
	match := icfg.matchOrigin(origin)
	if !match.Allowed {
		return
	}
	resHdrs.Set(headers.ACAO, match.Echo)
	if icfg.credentialed {
		// Whether the request carries credentials is not observable on the
		// server; ACAC is therefore always included.
		resHdrs.Set(headers.ACAC, headers.ValueTrue)
	}
	if icfg.aceh != "" {
		resHdrs.Set(headers.ACEH, icfg.aceh)
	}
}
