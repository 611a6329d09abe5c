// Command corsdemo serves a few routes behind a CORS middleware, on net/http,
// Gin, or Fiber. Every route ends requests in a different way (success,
// early status, early response, panic, failure of an outer decorator) and
// every response carries CORS headers.
//
// The net/http variant also serves /admin/cors, which reads and replaces
// the CORS policy, and /admin/cors/debug. They have no authentication and
// only answer clients connecting from the loopback interface; the command
// is meant for local demos.
//
// Settings come from CORSDEMO_* environment variables (see package
// internal/config), some of which can be overridden by flags:
//
//	corsdemo [--policy FILE] [--framework http|gin|fiber] [--port N] [--debug]
package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/taisey/cors"
	"github.com/taisey/cors/internal/config"
	"github.com/taisey/cors/internal/logger"
	"github.com/taisey/cors/internal/server"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Printf("fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	opts, err := parseOptions(args)
	if err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	opts.apply(cfg)

	log := logger.New(cfg.Log)
	log.Info("starting application",
		"addr", cfg.Server.Addr(),
		"framework", cfg.Server.Framework,
		"log_level", cfg.Log.Level,
	)

	mw, err := newCORSMiddleware(cfg.Policy, log)
	if err != nil {
		return err
	}

	srv := server.New(cfg, log, mw)
	return srv.Run()
}

func newCORSMiddleware(cfg config.PolicyConfig, log *slog.Logger) (*cors.Middleware, error) {
	policy := config.DefaultPolicy()
	if cfg.File != "" {
		var err error
		if policy, err = config.LoadPolicy(cfg.File); err != nil {
			return nil, err
		}
	}
	mw, err := cors.NewMiddleware(
		policy.CORSConfig(),
		cors.WithLogger(logger.WithComponent(log, "cors")),
	)
	if err != nil {
		return nil, err
	}
	mw.SetDebug(cfg.Debug)
	return mw, nil
}
