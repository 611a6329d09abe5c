package cors

import (
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/taisey/cors/internal/headers"
)

// A Middleware is a CORS middleware.
// Apply it to a [Handler] with [*Middleware.Decorate] or to an
// [http.Handler] with [*Middleware.Wrap].
//
// The zero value is ready to use but is a mere "passthrough" middleware,
// i.e. a middleware that simply delegates to the handler(s) it decorates.
// To obtain a proper CORS middleware, call [NewMiddleware] with a valid
// [Config], or use a [Builder].
//
// Middleware have a debug mode, toggled by [*Middleware.SetDebug].
// When debug mode is off, failed preflight checks simply omit the
// corresponding CORS headers. When it is on, they list the configured
// methods or request headers instead, which lets browsers print a more
// helpful error message; rejections are also logged at debug level.
//
// A Middleware must not be copied after first use.
//
// Middleware are safe for concurrent use by multiple goroutines.
type Middleware struct {
	icfg       atomic.Pointer[internalConfig]
	debug      atomic.Bool
	translator Translator
	logger     *slog.Logger
}

// An Option customizes a [Middleware] at construction time.
type Option func(*Middleware)

// WithTranslator sets the [Translator] that turns the failures of decorated
// handlers into responses. The default is [DefaultTranslator].
func WithTranslator(t Translator) Option {
	return func(m *Middleware) {
		if t != nil {
			m.translator = t
		}
	}
}

// WithLogger sets the logger on which the middleware reports recovered
// panics and, in debug mode, preflight rejections.
// By default, nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Middleware) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewMiddleware creates a CORS middleware that behaves in accordance with cfg.
// If cfg is invalid, it returns a nil [*Middleware] and some non-nil error.
// Otherwise, it returns a pointer to a CORS [Middleware] and a nil error.
//
// The debug mode of the resulting middleware is off.
//
// Mutating the fields of cfg after NewMiddleware has returned does not alter
// the middleware's behavior; use [*Middleware.Reconfigure] instead.
//
// If you need to programmatically handle the configuration errors constitutive
// of the resulting error, rely on package [github.com/taisey/cors/cfgerrors].
func NewMiddleware(cfg Config, opts ...Option) (*Middleware, error) {
	icfg, err := newInternalConfig(&cfg)
	if err != nil {
		return nil, err
	}
	m := Middleware{
		translator: DefaultTranslator,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.icfg.Store(icfg)
	return &m, nil
}

// Reconfigure reconfigures m in accordance with cfg,
// leaving m's debug mode, translator, and logger unchanged.
// If cfg is nil, it turns m into a passthrough middleware.
// If *cfg is invalid, it leaves m unchanged and returns some non-nil error.
// The following statement is guaranteed to be a no-op:
//
//	m.Reconfigure(m.Config())
//
// You can safely reconfigure a middleware even as it's concurrently
// processing requests.
func (m *Middleware) Reconfigure(cfg *Config) error {
	icfg, err := newInternalConfig(cfg)
	if err != nil {
		return err
	}
	m.icfg.Store(icfg)
	return nil
}

// SetDebug turns debug mode on (if b is true) or off (otherwise).
func (m *Middleware) SetDebug(b bool) {
	m.debug.Store(b)
}

// Debug reports whether m's debug mode is on.
func (m *Middleware) Debug() bool {
	return m.debug.Load()
}

// Config returns a pointer to a deep copy of m's current configuration;
// if m is a passthrough middleware, it simply returns nil.
// The result may differ from the [Config] with which m was created or last
// reconfigured (e.g. header names are byte-lowercased and defaults are
// spelled out) but describes the same policy.
func (m *Middleware) Config() *Config {
	return newConfig(m.icfg.Load())
}

// MatchOrigin reports whether m allows origin and, if so, what m would list
// in the Access-Control-Allow-Origin header of the response.
// A passthrough middleware allows no origin.
func (m *Middleware) MatchOrigin(origin string) OriginMatch {
	icfg := m.icfg.Load()
	if icfg == nil {
		return OriginMatch{}
	}
	return icfg.matchOrigin(origin)
}

// Preflight synthesizes the response to a CORS-preflight request whose
// headers are reqHdrs. It is meant for requests whose method is OPTIONS and
// that carry an Access-Control-Request-Method header.
//
// If the request's origin is not allowed, the response carries no CORS
// headers. A passthrough middleware returns nil.
func (m *Middleware) Preflight(reqHdrs http.Header) *Response {
	icfg := m.icfg.Load()
	if icfg == nil {
		return nil
	}
	res, outcome := icfg.preflight(reqHdrs, m.debug.Load())
	m.logPreflight(reqHdrs, outcome)
	return res
}

// Inject adds the CORS headers appropriate for a request whose method and
// headers are method and reqHdrs to the response headers resHdrs.
// CORS headers are set by name; all other headers are left untouched.
// Inject is idempotent and ignores the status of the response.
//
// If the request is a CORS-preflight request, the headers of the
// corresponding preflight response (see [*Middleware.Preflight]) are
// injected.
func (m *Middleware) Inject(method string, reqHdrs, resHdrs http.Header) {
	icfg := m.icfg.Load()
	if icfg == nil {
		return
	}
	icfg.inject(method, reqHdrs, resHdrs, m.debug.Load())
}

// Decorate applies the CORS middleware to h.
//
// The resulting handler answers CORS-preflight requests itself, without
// ever calling h. For all other requests, it calls h; if h fails (by
// returning an error or by panicking), the middleware's [Translator] turns
// the failure into a response. In every case, the response then gets
// its CORS headers. If the translator itself fails, its error is returned
// as is.
func (m *Middleware) Decorate(h Handler) Handler {
	return HandlerFunc(func(r *http.Request) (*Response, error) {
		icfg := m.icfg.Load()
		if icfg == nil { // passthrough middleware
			return h.Handle(r)
		}
		debug := m.debug.Load()
		if IsPreflight(r.Method, r.Header) {
			res, outcome := icfg.preflight(r.Header, debug)
			m.logPreflight(r.Header, outcome)
			return res, nil
		}
		res, err := handle(h, r)
		if err != nil {
			m.logFault(r, err)
			res, err = m.translate(r, err)
			if err != nil {
				return nil, err
			}
		}
		res = normalize(res)
		icfg.inject(r.Method, r.Header, res.Header, debug)
		return res, nil
	})
}

// Translator wraps t so that the responses it produces carry the CORS
// headers that m would have injected.
//
// Decorate already translates the failures of the handlers it decorates.
// Translator is for failures that occur outside of the middleware, e.g. in
// an outer decorator that rejects a request before the middleware ever sees
// it; pass its result to [HTTPHandler] or use it as a framework's error
// handler. Preflight requests then get the headers of a preflight response,
// but the status chosen by t.
func (m *Middleware) Translator(t Translator) Translator {
	if t == nil {
		t = DefaultTranslator
	}
	return func(r *http.Request, err error) (*Response, error) {
		res, terr := t(r, err)
		if terr != nil {
			return nil, terr
		}
		res = normalize(res)
		m.Inject(r.Method, r.Header, res.Header)
		return res, nil
	}
}

func (m *Middleware) translate(r *http.Request, err error) (*Response, error) {
	t := m.translator
	if t == nil { // zero Middleware, reconfigured
		t = DefaultTranslator
	}
	return t(r, err)
}

func (m *Middleware) log() *slog.Logger {
	if m.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return m.logger
}

func (m *Middleware) logFault(r *http.Request, err error) {
	if perr, ok := err.(*PanicError); ok {
		m.log().Error("cors: recovered from panic",
			"method", r.Method,
			"path", r.URL.Path,
			"panic", perr.Value,
			"stack", string(perr.Stack),
		)
	}
}

// send writes res to w; a write failure, usually a client that went away,
// is only logged.
func (m *Middleware) send(w http.ResponseWriter, r *http.Request, res *Response) {
	if err := res.Send(w); err != nil {
		m.log().Debug("cors: failed to write response",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}
}

func (m *Middleware) logPreflight(reqHdrs http.Header, outcome preflightOutcome) {
	if outcome == preflightOK || !m.debug.Load() {
		return
	}
	m.log().Debug("cors: preflight rejected",
		"origin", reqHdrs.Get(headers.Origin),
		"method", reqHdrs.Get(headers.ACRM),
		"headers", reqHdrs.Values(headers.ACRH),
		"reason", outcome.String(),
	)
}
