package cors

import "maps"

// A Builder accumulates the settings of a CORS policy step by step.
// Its methods return the Builder itself so that calls can be chained:
//
//	m, err := cors.NewBuilder("https://example.com").
//		AllowRequestMethods(http.MethodGet, http.MethodPost).
//		AllowRequestHeaders("Content-Type").
//		ExposeHeaders("X-Request-Id").
//		Build()
//
// Nothing is validated until [*Builder.Build] is called.
// The zero value is a Builder that allows no origin.
type Builder struct {
	cfg Config
}

// NewBuilder returns a Builder for a policy that allows the given origins
// (see [Config.Origins]).
func NewBuilder(origins ...string) *Builder {
	var b Builder
	b.cfg.Origins = append(b.cfg.Origins, origins...)
	return &b
}

// AllowOrigins allows more origins.
func (b *Builder) AllowOrigins(origins ...string) *Builder {
	b.cfg.Origins = append(b.cfg.Origins, origins...)
	return b
}

// OriginFunc sets the predicate consulted for origins that the listed
// origins do not allow (see [Config.OriginFunc]).
func (b *Builder) OriginFunc(f func(origin string) bool) *Builder {
	b.cfg.OriginFunc = f
	return b
}

// AllowCredentials enables credentialed access.
func (b *Builder) AllowCredentials() *Builder {
	b.cfg.Credentialed = true
	return b
}

// AllowRequestMethods allows more methods.
func (b *Builder) AllowRequestMethods(methods ...string) *Builder {
	b.cfg.Methods = append(b.cfg.Methods, methods...)
	return b
}

// AllowRequestHeaders allows more request-header names.
func (b *Builder) AllowRequestHeaders(names ...string) *Builder {
	b.cfg.RequestHeaders = append(b.cfg.RequestHeaders, names...)
	return b
}

// ExposeHeaders exposes more response-header names.
func (b *Builder) ExposeHeaders(names ...string) *Builder {
	b.cfg.ResponseHeaders = append(b.cfg.ResponseHeaders, names...)
	return b
}

// MaxAge sets the max-age of preflight responses (see
// [Config.MaxAgeInSeconds]).
func (b *Builder) MaxAge(seconds int) *Builder {
	b.cfg.MaxAgeInSeconds = seconds
	return b
}

// PreflightResponseHeader adds a header to preflight responses.
// A later call with the same name replaces the value.
func (b *Builder) PreflightResponseHeader(name, value string) *Builder {
	if b.cfg.PreflightHeaders == nil {
		b.cfg.PreflightHeaders = make(map[string]string)
	}
	b.cfg.PreflightHeaders[name] = value
	return b
}

// EchoRequestedMethod makes preflight responses list only the requested
// method (see [EchoRequestedMethod]).
func (b *Builder) EchoRequestedMethod() *Builder {
	b.cfg.MethodsStrategy = EchoRequestedMethod
	return b
}

// PreflightStatus sets the status of successful preflight responses.
func (b *Builder) PreflightStatus(status int) *Builder {
	b.cfg.PreflightStatus = status
	return b
}

// PreflightFailureStatus sets the status of preflight responses sent to
// disallowed origins.
func (b *Builder) PreflightFailureStatus(status int) *Builder {
	b.cfg.PreflightFailureStatus = status
	return b
}

// Config returns a copy of the configuration accumulated so far.
func (b *Builder) Config() Config {
	cfg := b.cfg
	cfg.Origins = append([]string(nil), b.cfg.Origins...)
	cfg.Methods = append([]string(nil), b.cfg.Methods...)
	cfg.RequestHeaders = append([]string(nil), b.cfg.RequestHeaders...)
	cfg.ResponseHeaders = append([]string(nil), b.cfg.ResponseHeaders...)
	cfg.PreflightHeaders = maps.Clone(b.cfg.PreflightHeaders)
	return cfg
}

// Build validates the accumulated configuration and returns the
// corresponding middleware (see [NewMiddleware]).
// The Builder can be reused afterwards without affecting the middleware.
func (b *Builder) Build(opts ...Option) (*Middleware, error) {
	return NewMiddleware(b.Config(), opts...)
}
