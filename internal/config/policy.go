package config

import (
	"fmt"
	"net/http"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"github.com/taisey/cors"
)

// Policy is the file representation of a CORS policy.
type Policy struct {
	Origins                []string          `mapstructure:"origins"`
	Credentialed           bool              `mapstructure:"credentialed"`
	Methods                []string          `mapstructure:"methods"`
	RequestHeaders         []string          `mapstructure:"request_headers"`
	ResponseHeaders        []string          `mapstructure:"response_headers"`
	MaxAge                 int               `mapstructure:"max_age"`
	PreflightHeaders       map[string]string `mapstructure:"preflight_headers"`
	EchoRequestedMethod    bool              `mapstructure:"echo_requested_method"`
	PreflightStatus        int               `mapstructure:"preflight_status"`
	PreflightFailureStatus int               `mapstructure:"preflight_failure_status"`

	TolerateSubdomainsOfPublicSuffixes bool `mapstructure:"dangerously_tolerate_subdomains_of_public_suffixes"`
}

// DefaultPolicy is the policy of the demo server when no policy file is set.
func DefaultPolicy() *Policy {
	return &Policy{
		Origins:          []string{"http://example.com"},
		Methods:          []string{http.MethodGet, http.MethodPost},
		RequestHeaders:   []string{"allow_request_header"},
		ResponseHeaders:  []string{"expose_header_1", "expose_header_2"},
		PreflightHeaders: map[string]string{"x-preflight-cors": "Hello CORS"},
	}
}

// LoadPolicy reads the policy file at path. The file type is inferred from
// its extension. Unknown keys are reported as errors.
func LoadPolicy(path string) (*Policy, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading policy file %s: %w", path, err)
	}
	return decodePolicy(v.AllSettings())
}

func decodePolicy(settings map[string]any) (*Policy, error) {
	var p Policy
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           &p,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(settings); err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}
	return &p, nil
}

// CORSConfig converts p to a [cors.Config]; the result is validated only
// when a middleware is built from it.
func (p *Policy) CORSConfig() cors.Config {
	cfg := cors.Config{
		Origins:                p.Origins,
		Credentialed:           p.Credentialed,
		Methods:                p.Methods,
		RequestHeaders:         p.RequestHeaders,
		ResponseHeaders:        p.ResponseHeaders,
		MaxAgeInSeconds:        p.MaxAge,
		PreflightHeaders:       p.PreflightHeaders,
		PreflightStatus:        p.PreflightStatus,
		PreflightFailureStatus: p.PreflightFailureStatus,

		DangerouslyTolerateSubdomainsOfPublicSuffixes: p.TolerateSubdomainsOfPublicSuffixes,
	}
	if p.EchoRequestedMethod {
		cfg.MethodsStrategy = cors.EchoRequestedMethod
	}
	return cfg
}
