package main

import (
	"testing"

	"github.com/jessevdk/go-flags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taisey/cors/internal/config"
)

func TestOptions(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want config.Config
	}{
		{
			name: "no flags",
			args: []string{},
			want: baseConfig(),
		}, {
			name: "all flags",
			args: []string{"-p", "policy.yaml", "--framework=gin", "--port", "9090", "--debug"},
			want: func() config.Config {
				cfg := baseConfig()
				cfg.Policy = config.PolicyConfig{File: "policy.yaml", Debug: true}
				cfg.Server.Framework = config.FrameworkGin
				cfg.Server.Port = 9090
				return cfg
			}(),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts, err := parseOptions(tc.args)
			require.NoError(t, err)
			cfg := baseConfig()
			opts.apply(&cfg)
			assert.Equal(t, tc.want, cfg)
		})
	}
}

func TestOptionsRejectsUnknownFramework(t *testing.T) {
	_, err := parseOptions([]string{"--framework", "echo"})
	require.Error(t, err)
	var ferr *flags.Error
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, flags.ErrInvalidChoice, ferr.Type)
}

func baseConfig() config.Config {
	return config.Config{
		Server: config.ServerConfig{Host: "0.0.0.0", Port: 8080, Framework: config.FrameworkHTTP},
		Log:    config.LogConfig{Level: "info", Format: "json"},
	}
}
