/*
Package cfgerrors provides functionalities for programmatically handling
configuration errors produced by package [github.com/taisey/cors].

Most programs simply log or print configuration errors.
Programs that let their users edit CORS policies (e.g. through a policy file
or an admin endpoint) can instead inspect the individual errors with [All]
and report each mistake in their own words.
*/
package cfgerrors

import (
	"fmt"
	"iter"
)

// An UnacceptableOriginPatternError indicates an unacceptable origin pattern.
// The Reason field may take one of three values:
//   - "missing": no origin pattern was specified;
//   - "invalid": the origin pattern is invalid;
//   - "prohibited": the origin pattern is prohibited by this library.
//
// For more details, see [github.com/taisey/cors.Config.Origins].
type UnacceptableOriginPatternError struct {
	Value  string // the unacceptable value that was specified
	Reason string // missing | invalid | prohibited
}

func (err *UnacceptableOriginPatternError) Error() string {
	if err.Reason == "missing" {
		return "cors: at least one origin must be allowed"
	}
	const tmpl = "cors: %s origin pattern %q"
	return fmt.Sprintf(tmpl, err.Reason, err.Value)
}

// An UnacceptableMethodError indicates an unacceptable method.
// The Reason field may take one of two values:
//   - "invalid": the method is invalid;
//   - "forbidden": the method is forbidden by [the Fetch standard].
//
// For more details, see [github.com/taisey/cors.Config.Methods].
//
// [the Fetch standard]: https://fetch.spec.whatwg.org
type UnacceptableMethodError struct {
	Value  string // the unacceptable value that was specified
	Reason string // invalid | forbidden
}

func (err *UnacceptableMethodError) Error() string {
	const tmpl = "cors: %s method %q"
	return fmt.Sprintf(tmpl, err.Reason, err.Value)
}

// An UnacceptableHeaderNameError indicates an unacceptable header name.
// The Type field may take one of two values:
//   - "request";
//   - "response".
//
// The Reason field may take one of three values:
//   - "invalid": the header name is invalid;
//   - "prohibited": the header name is prohibited by this library;
//   - "forbidden": the header name is forbidden by [the Fetch standard].
//
// For more details, see [github.com/taisey/cors.Config.RequestHeaders] and
// [github.com/taisey/cors.Config.ResponseHeaders].
//
// [the Fetch standard]: https://fetch.spec.whatwg.org
type UnacceptableHeaderNameError struct {
	Value  string // the unacceptable value that was specified
	Type   string // request | response
	Reason string // invalid | prohibited | forbidden
}

func (err *UnacceptableHeaderNameError) Error() string {
	const tmpl = "cors: %s %s-header name %q"
	return fmt.Sprintf(tmpl, err.Reason, err.Type, err.Value)
}

// A MaxAgeOutOfBoundsError indicates a max-age value that's either too low
// or too high.
//
// For more details, see [github.com/taisey/cors.Config.MaxAgeInSeconds].
type MaxAgeOutOfBoundsError struct {
	Value   int // the unacceptable value that was specified
	Default int // max-age value used by browsers if MaxAgeInSeconds is 0
	Max     int // maximum max-age value permitted by this library
	Disable int // sentinel value for disabling preflight caching
}

func (err *MaxAgeOutOfBoundsError) Error() string {
	const tmpl = "cors: out-of-bounds max-age value %d (default: %d; max: %d; disable caching: %d)"
	return fmt.Sprintf(tmpl, err.Value, err.Default, err.Max, err.Disable)
}

// An IncompatibleOriginPatternError indicates an origin pattern that
// encompasses arbitrary subdomains of a public suffix (Reason == "psl")
// while [github.com/taisey/cors.Config.DangerouslyTolerateSubdomainsOfPublicSuffixes]
// is unset.
//
// For more details, see [github.com/taisey/cors.Config.Origins].
type IncompatibleOriginPatternError struct {
	Value  string // the origin pattern
	Reason string // psl
}

func (err *IncompatibleOriginPatternError) Error() string {
	const tmpl = "cors: for security reasons, origin patterns like %q that encompass subdomains of a public suffix are by default prohibited"
	return fmt.Sprintf(tmpl, err.Value)
}

// An IncompatibleWildcardResponseHeaderNameError indicates an attempt
// to both expose all response headers and enable credentialed access.
// For more details, see [github.com/taisey/cors.Config.ResponseHeaders].
type IncompatibleWildcardResponseHeaderNameError struct{}

func (*IncompatibleWildcardResponseHeaderNameError) Error() string {
	return "cors: you cannot both expose all response headers and enable credentialed access"
}

// An UnacceptablePreflightHeaderError indicates an unacceptable extra
// preflight-response header.
// The Reason field may take one of three values:
//   - "invalid": the header name or value is invalid;
//   - "prohibited": the header name is one that this library manages itself
//     (e.g. Access-Control-Allow-Origin or Vary);
//   - "forbidden": the header name is forbidden by [the Fetch standard].
//
// For more details, see [github.com/taisey/cors.Config.PreflightHeaders].
//
// [the Fetch standard]: https://fetch.spec.whatwg.org
type UnacceptablePreflightHeaderError struct {
	Name   string // the name of the header
	Value  string // the value of the header
	Reason string // invalid | prohibited | forbidden
}

func (err *UnacceptablePreflightHeaderError) Error() string {
	const tmpl = "cors: %s preflight-response header %q: %q"
	return fmt.Sprintf(tmpl, err.Reason, err.Name, err.Value)
}

// An UnacceptableStatusError indicates a preflight status code outside of
// the range permitted by this library.
// The Field field may take one of two values:
//   - "PreflightStatus": only 2xx status codes are permitted;
//   - "PreflightFailureStatus": only 2xx, 4xx, and 5xx status codes are
//     permitted.
//
// For more details, see [github.com/taisey/cors.Config.PreflightStatus].
type UnacceptableStatusError struct {
	Value int    // the unacceptable value that was specified
	Field string // PreflightStatus | PreflightFailureStatus
}

func (err *UnacceptableStatusError) Error() string {
	const tmpl = "cors: unacceptable status %d for %s"
	return fmt.Sprintf(tmpl, err.Value, err.Field)
}

// All returns an iterator over the CORS-configuration errors contained in
// err's error tree, in the order in which they were detected. All only supports error values returned by
// [github.com/taisey/cors.NewMiddleware],
// [github.com/taisey/cors.Middleware.Reconfigure], and
// [github.com/taisey/cors.Builder.Build]; it should not be called on
// any other error value.
func All(err error) iter.Seq[error] {
	return func(yield func(error) bool) {
		every(err, yield)
	}
}

func every(err error, f func(error) bool) bool {
	switch err := err.(type) {
	// Configuration errors are only ever joined, never wrapped.
	case interface{ Unwrap() []error }:
		for _, err := range err.Unwrap() {
			if !every(err, f) {
				return false
			}
		}
		return true
	default:
		return f(err)
	}
}
