package cfgerrors_test

import (
	"errors"
	"net/http"
	"slices"
	"strings"
	"testing"

	"github.com/taisey/cors/cfgerrors"
)

var (
	errOrigin = &cfgerrors.UnacceptableOriginPatternError{Value: "null", Reason: "prohibited"}
	errMethod = &cfgerrors.UnacceptableMethodError{Value: http.MethodConnect, Reason: "forbidden"}
	errHeader = &cfgerrors.UnacceptableHeaderNameError{Value: "Origin", Type: "request", Reason: "prohibited"}
	errMaxAge = &cfgerrors.MaxAgeOutOfBoundsError{Value: -2, Default: 5, Max: 86_400, Disable: -1}
	errStatus = &cfgerrors.UnacceptableStatusError{Value: 301, Field: "PreflightStatus"}
)

func TestAll(t *testing.T) {
	cases := []struct {
		desc  string
		err   error
		want  []error
		limit int // stop iterating after that many elements; 0 means never
	}{
		{
			desc: "single error",
			err:  errOrigin,
			want: []error{errOrigin},
		}, {
			desc: "flat join",
			err:  errors.Join(errOrigin, errMethod, errHeader),
			want: []error{errOrigin, errMethod, errHeader},
		}, {
			desc: "nested joins",
			err: errors.Join(
				errors.Join(errOrigin),
				errors.Join(errMethod, errors.Join(errHeader, errMaxAge)),
				errStatus,
			),
			want: []error{errOrigin, errMethod, errHeader, errMaxAge, errStatus},
		}, {
			desc:  "early break",
			err:   errors.Join(errors.Join(errOrigin, errMethod), errHeader),
			want:  []error{errOrigin},
			limit: 1,
		},
	}
	for _, tc := range cases {
		f := func(t *testing.T) {
			var got []error
			for err := range cfgerrors.All(tc.err) {
				got = append(got, err)
				if len(got) == tc.limit {
					break
				}
			}
			if !slices.Equal(got, tc.want) {
				t.Errorf("got %v; want %v", got, tc.want)
			}
		}
		t.Run(tc.desc, f)
	}
}

func TestErrorMessages(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{
			err:  &cfgerrors.UnacceptableOriginPatternError{Reason: "missing"},
			want: "cors: at least one origin must be allowed",
		}, {
			err:  &cfgerrors.UnacceptableOriginPatternError{Value: "foo", Reason: "invalid"},
			want: `cors: invalid origin pattern "foo"`,
		}, {
			err:  errMethod,
			want: `cors: forbidden method "CONNECT"`,
		}, {
			err:  errHeader,
			want: `cors: prohibited request-header name "Origin"`,
		}, {
			err:  errMaxAge,
			want: "cors: out-of-bounds max-age value -2 (default: 5; max: 86400; disable caching: -1)",
		}, {
			err:  &cfgerrors.IncompatibleOriginPatternError{Value: "https://*.com", Reason: "psl"},
			want: `cors: for security reasons, origin patterns like "https://*.com" that encompass subdomains of a public suffix are by default prohibited`,
		}, {
			err:  new(cfgerrors.IncompatibleWildcardResponseHeaderNameError),
			want: "cors: you cannot both expose all response headers and enable credentialed access",
		}, {
			err:  &cfgerrors.UnacceptablePreflightHeaderError{Name: "Vary", Value: "Origin", Reason: "prohibited"},
			want: `cors: prohibited preflight-response header "Vary": "Origin"`,
		}, {
			err:  errStatus,
			want: "cors: unacceptable status 301 for PreflightStatus",
		},
	}
	for _, tc := range cases {
		f := func(t *testing.T) {
			got := tc.err.Error()
			if got != tc.want {
				t.Errorf("got %q; want %q", got, tc.want)
			}
			if !strings.HasPrefix(got, "cors: ") {
				t.Errorf("missing package-name prefix in %q", got)
			}
		}
		t.Run(tc.want, f)
	}
}

// comparability checks
var (
	_ map[cfgerrors.UnacceptableOriginPatternError]struct{}
	_ map[cfgerrors.UnacceptableMethodError]struct{}
	_ map[cfgerrors.UnacceptableHeaderNameError]struct{}
	_ map[cfgerrors.MaxAgeOutOfBoundsError]struct{}
	_ map[cfgerrors.IncompatibleOriginPatternError]struct{}
	_ map[cfgerrors.IncompatibleWildcardResponseHeaderNameError]struct{}
	_ map[cfgerrors.UnacceptablePreflightHeaderError]struct{}
	_ map[cfgerrors.UnacceptableStatusError]struct{}
)
