package cors

import (
	"errors"
	"maps"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/taisey/cors/cfgerrors"
	"github.com/taisey/cors/internal/headers"
	"github.com/taisey/cors/internal/methods"
	"github.com/taisey/cors/internal/origins"
	"github.com/taisey/cors/internal/util"
)

// A MethodsStrategy decides what a middleware lists in the
// Access-Control-Allow-Methods header of its preflight responses.
type MethodsStrategy uint8

const (
	// AllowListedMethods lists every allowed method, in the order in which
	// they were configured. Browsers can then reuse a cached preflight
	// response for any of those methods.
	AllowListedMethods MethodsStrategy = iota
	// EchoRequestedMethod lists only the method named in the
	// Access-Control-Request-Method header, and only if that method is
	// allowed.
	EchoRequestedMethod
)

// A Config configures a [Middleware].
// Attempts to use settings described as "prohibited" result in a failure
// to build the middleware; the resulting error can be inspected with
// package [github.com/taisey/cors/cfgerrors].
//
// # Origins
//
// Origins lists the [Web origins] allowed to access the server.
// Each element is either an exact origin, a single asterisk, or a pattern:
//
//	Origins: []string{
//	  "https://example.com",   // exact origin
//	  "https://*.example.com", // one or more subdomain labels
//	  "http://localhost:*",    // any (possibly implicit) port
//	},
//
// Exact origins are compared byte for byte against the Origin request
// header; in particular, the comparison is case-sensitive. Origins must be
// given in ASCII serialized form, with IPv4 hosts in dotted-quad notation
// and IPv6 hosts in their compressed form. Default ports (80 for http, 443
// for https) must be elided. The null origin and the file scheme are
// prohibited.
//
// A single asterisk allows all origins. When credentialed access is
// disabled, middleware then respond with
//
//	Access-Control-Allow-Origin: *
//
// When credentialed access is enabled, browsers reject that value;
// middleware then echo the request's origin instead.
//
// Allowing arbitrary subdomains of a [public suffix] (e.g. https://*.com or
// https://*.github.io) is prohibited unless
// [Config.DangerouslyTolerateSubdomainsOfPublicSuffixes] is set.
//
// # OriginFunc
//
// OriginFunc, if non-nil, is consulted for any origin that Origins does not
// already allow; the origin is allowed if OriginFunc returns true.
// Origins may be left empty when OriginFunc is set.
// OriginFunc must be safe for concurrent use.
//
// # Credentialed
//
// Credentialed allows [credentialed access] (e.g. with cookies) in addition
// to anonymous access. Clients that only send an Authorization header do not
// need it; allow request-header name "Authorization" instead.
//
// # Methods
//
// Methods lists the allowed methods. Method names are case-sensitive,
// except that the standard names (DELETE, GET, HEAD, OPTIONS, POST, PUT)
// are uppercased. A single asterisk allows all methods.
// [Forbidden method names] (CONNECT, TRACE, TRACK) are prohibited.
//
// GET, HEAD, and POST need no explicit allowance, but they are listed in
// Access-Control-Allow-Methods if configured.
//
// # RequestHeaders
//
// RequestHeaders lists the allowed request-header names, which are
// case-insensitive. A single asterisk allows all names, except that, when
// credentialed access is disabled, "Authorization" must additionally be
// listed to be allowed. [Forbidden request-header names] and the names of
// CORS response headers are prohibited.
//
// # ResponseHeaders
//
// ResponseHeaders lists the response-header names exposed to clients.
// A single asterisk exposes all of them but is prohibited when credentialed
// access is enabled. Safelisted names are tolerated and ignored;
// forbidden names (Set-Cookie, Set-Cookie2) and the names of CORS request
// headers are prohibited.
//
// # MaxAgeInSeconds
//
// MaxAgeInSeconds bounds how long browsers may cache preflight responses.
// The zero value omits Access-Control-Max-Age (browsers then default to
// five seconds); -1 disables caching. Other negative values and values
// above 86400 are prohibited.
//
// # PreflightHeaders
//
// PreflightHeaders are added to every preflight response sent to an allowed
// origin. Names and values must be valid; the names of CORS headers and of
// Vary are prohibited, as are Set-Cookie and Set-Cookie2.
//
// # MethodsStrategy
//
// MethodsStrategy selects the content of Access-Control-Allow-Methods;
// see [AllowListedMethods] and [EchoRequestedMethod].
//
// # PreflightStatus and PreflightFailureStatus
//
// PreflightStatus is the status of preflight responses; it defaults to 200
// and must be a 2xx code. PreflightFailureStatus is the status of preflight
// responses sent to disallowed origins; it defaults to PreflightStatus and
// must be a 2xx, 4xx, or 5xx code.
//
// [Forbidden method names]: https://fetch.spec.whatwg.org/#forbidden-method
// [Forbidden request-header names]: https://fetch.spec.whatwg.org/#forbidden-request-header
// [Web origins]: https://developer.mozilla.org/en-US/docs/Glossary/Origin
// [credentialed access]: https://fetch.spec.whatwg.org/#concept-request-credentials-mode
// [public suffix]: https://publicsuffix.org/
type Config struct {
	// Precludes comparability, unkeyed struct literals, and conversion to and
	// from third-party types.
	_ [0]func()

	Origins                                       []string
	OriginFunc                                    func(origin string) bool `json:"-"`
	Credentialed                                  bool
	Methods                                       []string
	RequestHeaders                                []string
	ResponseHeaders                               []string
	MaxAgeInSeconds                               int
	PreflightHeaders                              map[string]string
	MethodsStrategy                               MethodsStrategy
	PreflightStatus                               int
	PreflightFailureStatus                        int
	DangerouslyTolerateSubdomainsOfPublicSuffixes bool
}

// internalConfig is the validated form of a Config.
// It is never mutated once newInternalConfig has returned.
type internalConfig struct {
	matcher                      origins.Matcher
	anyOrigin                    bool
	originFunc                   func(string) bool
	credentialed                 bool
	allowAnyMethod               bool
	allowedMethods               util.OrderedSet // allowedMethods.Size() > 0 => !allowAnyMethod
	acam                         string          // allowed methods, comma-separated
	echoMethod                   bool
	asteriskReqHdrs              bool
	allowAuthorization           bool
	allowedReqHdrs               util.OrderedSet // byte-lowercase; empty if asteriskReqHdrs
	acah                         string          // value of ACAH when ACRH is absent
	aceh                         string
	acma                         string
	extra                        http.Header // canonical keys
	preflightStatus              int
	preflightFailStatus          int
	tolerateSubsOfPublicSuffixes bool
}

const defaultPreflightStatus = http.StatusOK

func newInternalConfig(cfg *Config) (*internalConfig, error) {
	if cfg == nil {
		return nil, nil
	}
	icfg := internalConfig{
		originFunc:                   cfg.OriginFunc,
		credentialed:                 cfg.Credentialed,
		echoMethod:                   cfg.MethodsStrategy == EchoRequestedMethod,
		tolerateSubsOfPublicSuffixes: cfg.DangerouslyTolerateSubdomainsOfPublicSuffixes,
	}

	// Accumulate errors in a slice so as to call errors.Join at most once.
	errs := icfg.validateOriginPatterns(cfg.Origins)
	errs = icfg.validateMethods(errs, cfg.Methods)
	errs = icfg.validateRequestHeaders(errs, cfg.RequestHeaders)
	errs = icfg.validateMaxAge(errs, cfg.MaxAgeInSeconds)
	errs = icfg.validateResponseHeaders(errs, cfg.ResponseHeaders)
	errs = icfg.validatePreflightHeaders(errs, cfg.PreflightHeaders)
	errs = icfg.validateStatuses(errs, cfg.PreflightStatus, cfg.PreflightFailureStatus)

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return &icfg, nil
}

func (icfg *internalConfig) validateOriginPatterns(rawPatterns []string) []error {
	if len(rawPatterns) == 0 {
		if icfg.originFunc != nil {
			return nil
		}
		err := &cfgerrors.UnacceptableOriginPatternError{
			Reason: "missing",
		}
		return []error{err}
	}
	var errs []error
	for _, raw := range rawPatterns {
		if raw == headers.ValueWildcard {
			icfg.anyOrigin = true
			continue
		}
		pattern, err := origins.ParsePattern(raw)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !icfg.tolerateSubsOfPublicSuffixes &&
			pattern.Kind == origins.ArbitrarySubdomains &&
			pattern.HostIsEffectiveTLD() {
			err := &cfgerrors.IncompatibleOriginPatternError{
				Value:  raw,
				Reason: "psl",
			}
			errs = append(errs, err)
			continue
		}
		icfg.matcher.Add(pattern)
	}
	if icfg.anyOrigin {
		// Neither the patterns nor the predicate matter anymore.
		icfg.matcher = origins.Matcher{}
		icfg.originFunc = nil
	}
	return errs
}

func (icfg *internalConfig) validateMethods(errs []error, names []string) []error {
	for _, name := range names {
		if name == headers.ValueWildcard {
			icfg.allowAnyMethod = true
			continue
		}
		if !methods.IsValid(name) {
			err := &cfgerrors.UnacceptableMethodError{
				Value:  name,
				Reason: "invalid",
			}
			errs = append(errs, err)
			continue
		}
		if methods.IsForbidden(name) {
			err := &cfgerrors.UnacceptableMethodError{
				Value:  name,
				Reason: "forbidden",
			}
			errs = append(errs, err)
			continue
		}
		icfg.allowedMethods.Add(methods.Normalize(name))
	}
	if icfg.allowAnyMethod {
		icfg.allowedMethods = util.OrderedSet{}
		return errs
	}
	// The elements of a list-based field may be separated simply by commas.
	icfg.acam = strings.Join(icfg.allowedMethods.ToSlice(), headers.ValueSep)
	return errs
}

func (icfg *internalConfig) validateRequestHeaders(errs []error, names []string) []error {
	var allowed util.OrderedSet
	for _, name := range names {
		if name == headers.ValueWildcard {
			icfg.asteriskReqHdrs = true
			continue
		}
		if !headers.IsValid(name) {
			err := &cfgerrors.UnacceptableHeaderNameError{
				Value:  name,
				Type:   "request",
				Reason: "invalid",
			}
			errs = append(errs, err)
			continue
		}
		// Browsers byte-lowercase the names they list in ACRH; see
		// https://fetch.spec.whatwg.org/#cors-unsafe-request-header-names.
		normalized := util.ByteLowercase(name)
		if normalized == headers.Authorization {
			icfg.allowAuthorization = true
			allowed.Add(normalized)
			continue
		}
		if headers.IsForbiddenRequestHeaderName(normalized) {
			err := &cfgerrors.UnacceptableHeaderNameError{
				Value:  name,
				Type:   "request",
				Reason: "forbidden",
			}
			errs = append(errs, err)
			continue
		}
		if headers.IsProhibitedRequestHeaderName(normalized) {
			err := &cfgerrors.UnacceptableHeaderNameError{
				Value:  name,
				Type:   "request",
				Reason: "prohibited",
			}
			errs = append(errs, err)
			continue
		}
		allowed.Add(normalized)
	}
	switch {
	case icfg.asteriskReqHdrs && icfg.credentialed:
		// The asterisk then covers Authorization too, but browsers read an
		// asterisk in ACAH as a literal name; responses echo ACRH instead.
		icfg.allowAuthorization = true
	case icfg.asteriskReqHdrs && icfg.allowAuthorization:
		// The wildcard does not cover Authorization; see
		// https://fetch.spec.whatwg.org/#cors-non-wildcard-request-header-name.
		icfg.acah = headers.ValueWildcard + headers.ValueSep + headers.Authorization
	case icfg.asteriskReqHdrs:
		icfg.acah = headers.ValueWildcard
	default:
		icfg.allowedReqHdrs = allowed
		icfg.acah = strings.Join(allowed.ToSlice(), headers.ValueSep)
	}
	return errs
}

// isAllowedRequestHeader reports whether name, which must be byte-lowercase,
// is allowed by icfg.
func (icfg *internalConfig) isAllowedRequestHeader(name string) bool {
	if icfg.asteriskReqHdrs {
		return name != headers.Authorization || icfg.allowAuthorization
	}
	return icfg.allowedReqHdrs.Contains(name)
}

func (icfg *internalConfig) validateMaxAge(errs []error, delta int) []error {
	const (
		// see https://fetch.spec.whatwg.org/#cors-preflight-fetch-0, step 7.9
		defaultMaxAge = 5
		// Firefox caps max-age at 24h; Chromium and Safari cap it lower.
		upperBound = 86400
		// sentinel value for disabling preflight caching
		disableCaching = -1
	)
	switch {
	case delta < disableCaching || upperBound < delta:
		err := &cfgerrors.MaxAgeOutOfBoundsError{
			Value:   delta,
			Default: defaultMaxAge,
			Max:     upperBound,
			Disable: disableCaching,
		}
		return append(errs, err)
	case delta == disableCaching:
		icfg.acma = "0"
	case delta > 0:
		icfg.acma = strconv.Itoa(delta)
	}
	return errs
}

func (icfg *internalConfig) validateResponseHeaders(errs []error, names []string) []error {
	var (
		exposed   util.OrderedSet
		exposeAll bool
	)
	for _, name := range names {
		if name == headers.ValueWildcard {
			if icfg.credentialed {
				// Browsers read an asterisk in ACEH as a literal name when
				// the request is credentialed.
				err := new(cfgerrors.IncompatibleWildcardResponseHeaderNameError)
				errs = append(errs, err)
				continue
			}
			exposeAll = true
			continue
		}
		if !headers.IsValid(name) {
			err := &cfgerrors.UnacceptableHeaderNameError{
				Value:  name,
				Type:   "response",
				Reason: "invalid",
			}
			errs = append(errs, err)
			continue
		}
		normalized := util.ByteLowercase(name)
		if headers.IsForbiddenResponseHeaderName(normalized) {
			err := &cfgerrors.UnacceptableHeaderNameError{
				Value:  name,
				Type:   "response",
				Reason: "forbidden",
			}
			errs = append(errs, err)
			continue
		}
		if headers.IsProhibitedResponseHeaderName(normalized) {
			err := &cfgerrors.UnacceptableHeaderNameError{
				Value:  name,
				Type:   "response",
				Reason: "prohibited",
			}
			errs = append(errs, err)
			continue
		}
		if headers.IsSafelistedResponseHeaderName(normalized) {
			continue
		}
		exposed.Add(normalized)
	}
	switch {
	case exposeAll:
		icfg.aceh = headers.ValueWildcard
	case exposed.Size() > 0:
		icfg.aceh = strings.Join(exposed.ToSlice(), headers.ValueSep)
	}
	return errs
}

func (icfg *internalConfig) validatePreflightHeaders(errs []error, hdrs map[string]string) []error {
	if len(hdrs) == 0 {
		return errs
	}
	icfg.extra = make(http.Header, len(hdrs))
	// Iterate in a deterministic order so that errors are too.
	for _, name := range slices.Sorted(maps.Keys(hdrs)) {
		value := hdrs[name]
		if !headers.IsValid(name) || !headers.IsValidValue(value) {
			err := &cfgerrors.UnacceptablePreflightHeaderError{
				Name:   name,
				Value:  value,
				Reason: "invalid",
			}
			errs = append(errs, err)
			continue
		}
		normalized := util.ByteLowercase(name)
		if headers.IsForbiddenResponseHeaderName(normalized) {
			err := &cfgerrors.UnacceptablePreflightHeaderError{
				Name:   name,
				Value:  value,
				Reason: "forbidden",
			}
			errs = append(errs, err)
			continue
		}
		if headers.IsCORSResponseHeaderName(normalized) ||
			headers.IsProhibitedResponseHeaderName(normalized) ||
			normalized == "vary" {
			err := &cfgerrors.UnacceptablePreflightHeaderError{
				Name:   name,
				Value:  value,
				Reason: "prohibited",
			}
			errs = append(errs, err)
			continue
		}
		icfg.extra.Add(name, value)
	}
	return errs
}

func (icfg *internalConfig) validateStatuses(errs []error, ok, fail int) []error {
	if ok == 0 {
		ok = defaultPreflightStatus
	}
	if ok < 200 || 299 < ok {
		err := &cfgerrors.UnacceptableStatusError{
			Value: ok,
			Field: "PreflightStatus",
		}
		errs = append(errs, err)
	}
	if fail == 0 {
		fail = ok
	}
	if fail < 200 || 599 < fail || 300 <= fail && fail < 400 {
		err := &cfgerrors.UnacceptableStatusError{
			Value: fail,
			Field: "PreflightFailureStatus",
		}
		errs = append(errs, err)
	}
	icfg.preflightStatus = ok
	icfg.preflightFailStatus = fail
	return errs
}

// newConfig returns a Config on the basis of icfg.
// The soundness of the result is guaranteed only if icfg is the result of a
// previous call to newInternalConfig.
func newConfig(icfg *internalConfig) *Config {
	if icfg == nil {
		return nil
	}
	// Note: do not hold (in cfg) any references to mutable fields of icfg.
	cfg := Config{
		OriginFunc:   icfg.originFunc,
		Credentialed: icfg.credentialed,

		DangerouslyTolerateSubdomainsOfPublicSuffixes: icfg.tolerateSubsOfPublicSuffixes,
	}

	if icfg.anyOrigin {
		cfg.Origins = []string{headers.ValueWildcard}
	} else if !icfg.matcher.IsEmpty() {
		cfg.Origins = icfg.matcher.Elems()
	}

	switch {
	case icfg.allowAnyMethod:
		cfg.Methods = []string{headers.ValueWildcard}
	case icfg.allowedMethods.Size() > 0:
		cfg.Methods = icfg.allowedMethods.ToSlice()
	}
	if icfg.echoMethod {
		cfg.MethodsStrategy = EchoRequestedMethod
	}

	switch {
	case icfg.asteriskReqHdrs && !icfg.credentialed && icfg.allowAuthorization:
		cfg.RequestHeaders = []string{headers.ValueWildcard, headers.Authorization}
	case icfg.asteriskReqHdrs:
		cfg.RequestHeaders = []string{headers.ValueWildcard}
	case icfg.allowedReqHdrs.Size() > 0:
		cfg.RequestHeaders = icfg.allowedReqHdrs.ToSlice()
	}

	if icfg.aceh != "" {
		cfg.ResponseHeaders = strings.Split(icfg.aceh, headers.ValueSep)
	}

	switch icfg.acma {
	case "":
	case "0":
		cfg.MaxAgeInSeconds = -1
	default:
		cfg.MaxAgeInSeconds, _ = strconv.Atoi(icfg.acma) // safe, by construction
	}

	if len(icfg.extra) > 0 {
		cfg.PreflightHeaders = make(map[string]string, len(icfg.extra))
		for name, values := range icfg.extra {
			cfg.PreflightHeaders[name] = values[0]
		}
	}

	cfg.PreflightStatus = icfg.preflightStatus
	cfg.PreflightFailureStatus = icfg.preflightFailStatus
	return &cfg
}
