package main

import (
	"github.com/jessevdk/go-flags"

	"github.com/taisey/cors/internal/config"
)

// Options are the command-line flags of corsdemo. The struct tags are
// interpreted by github.com/jessevdk/go-flags. A flag, when set, takes
// precedence over its CORSDEMO_* environment variable.
type Options struct {
	Policy    string `short:"p" long:"policy" description:"CORS policy file (YAML, JSON, or TOML)"`
	Framework string `short:"f" long:"framework" choice:"http" choice:"gin" choice:"fiber" description:"framework serving the routes"`
	Port      int    `long:"port" description:"port to listen on"`
	Debug     bool   `long:"debug" description:"enable the CORS debug mode"`
}

func parseOptions(args []string) (*Options, error) {
	opts := &Options{}
	parser := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash)
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}
	return opts, nil
}

// apply overrides the settings of cfg with the flags that were set.
func (o *Options) apply(cfg *config.Config) {
	if o.Policy != "" {
		cfg.Policy.File = o.Policy
	}
	if o.Framework != "" {
		cfg.Server.Framework = o.Framework
	}
	if o.Port != 0 {
		cfg.Server.Port = o.Port
	}
	if o.Debug {
		cfg.Policy.Debug = true
	}
}
