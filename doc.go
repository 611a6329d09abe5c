/*
Package cors provides middleware for [Cross-Origin Resource Sharing (CORS)].

A [Middleware] answers [CORS-preflight requests] on behalf of the handler it
decorates and adds CORS response headers to every other response of that
handler, whatever way the response came about:

  - the handler returned a [*Response];
  - the handler ended the request early with a [*StatusError] or a
    [*ResponseError];
  - the handler failed in some other way (including by panicking) and a
    [Translator] turned that failure into a response.

Build a Middleware from a [Config] with [NewMiddleware], or step by step with
a [Builder]. Configurations are validated extensively; the resulting errors
can be inspected with package [github.com/taisey/cors/cfgerrors].

Handlers that follow the [Handler] interface are decorated with
[*Middleware.Decorate] and served with [HTTPHandler]. Classic
[net/http] handlers are wrapped with [*Middleware.Wrap]. Failures that happen
outside of the middleware (e.g. in an outer decorator) still get CORS headers
if they are translated by the [Translator] returned by
[*Middleware.Translator].

Keep the following rules in mind:

  - Preflight requests use OPTIONS as their method; do not prevent OPTIONS
    requests from reaching the middleware.
  - Preflight requests are not authenticated; authentication should not
    take place ahead of the middleware, but the middleware may decorate
    an authenticating handler.
  - Intermediaries should not alter the CORS headers set by the middleware,
    and must preserve the elements of its Vary header.
  - Multiple CORS middleware must not be stacked.

[CORS-preflight requests]: https://developer.mozilla.org/en-US/docs/Glossary/Preflight_request
[Cross-Origin Resource Sharing (CORS)]: https://developer.mozilla.org/en-US/docs/Web/HTTP/CORS
*/
package cors
