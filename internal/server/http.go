package server

import (
	"encoding/json"
	"net"
	"net/http"
	"net/netip"

	"github.com/taisey/cors"
	"github.com/taisey/cors/cfgerrors"
	"github.com/taisey/cors/internal/logger"
)

func (s *Server) httpMux() http.Handler {
	mw := s.cors
	// Translates the failures that occur outside of the middleware, i.e.
	// in the decorators of the /cors_* routes.
	translate := mw.Translator(cors.DefaultTranslator)
	serve := func(h cors.Handler) http.Handler {
		return cors.HTTPHandler(mw.Decorate(h), translate)
	}
	outerFailure := func(err error) http.Handler {
		return cors.HTTPHandler(failBefore(err)(mw.Decorate(cors.HandlerFunc(hello))), translate)
	}

	mux := http.NewServeMux()
	mux.Handle("/hello", serve(cors.HandlerFunc(hello)))
	mux.Handle("/status-error", serve(cors.HandlerFunc(statusError)))
	mux.Handle("/response-error", serve(cors.HandlerFunc(responseError)))
	mux.Handle("/panic", serve(cors.HandlerFunc(panicking)))
	mux.Handle("/cors_status_exception", outerFailure(&cors.StatusError{Status: http.StatusInternalServerError}))
	mux.Handle("/cors_response_exception", outerFailure(&cors.ResponseError{Response: errorResponse()}))
	mux.Handle("/legacy", mw.Wrap(http.HandlerFunc(legacyHello)))

	mux.Handle("GET /admin/cors", loopbackOnly(s.getPolicy))
	mux.Handle("PUT /admin/cors", loopbackOnly(s.putPolicy))
	mux.Handle("PUT /admin/cors/debug", loopbackOnly(s.putDebug))
	return s.requestID(mux)
}

func (s *Server) getPolicy(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.cors.Config())
}

// putPolicy replaces the CORS policy; configuration mistakes are reported
// individually.
func (s *Server) putPolicy(w http.ResponseWriter, r *http.Request) {
	log := logger.WithRequestID(s.log, requestIDFrom(r.Context()))
	var cfg cors.Config
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		writeJSON(w, http.StatusBadRequest, errorsBody{Errors: []string{err.Error()}})
		return
	}
	if err := s.cors.Reconfigure(&cfg); err != nil {
		var body errorsBody
		for err := range cfgerrors.All(err) {
			body.Errors = append(body.Errors, err.Error())
		}
		log.Warn("rejected CORS policy", "errors", body.Errors)
		writeJSON(w, http.StatusBadRequest, body)
		return
	}
	log.Info("CORS policy replaced", "origins", cfg.Origins)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) putDebug(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Debug bool `json:"debug"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorsBody{Errors: []string{err.Error()}})
		return
	}
	s.cors.SetDebug(body.Debug)
	w.WriteHeader(http.StatusNoContent)
}

// loopbackOnly restricts h to clients on the same host. The admin
// endpoints have no authentication.
func loopbackOnly(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		addr, err := netip.ParseAddr(host)
		if err != nil || !addr.Unmap().IsLoopback() {
			writeJSON(w, http.StatusForbidden, errorsBody{Errors: []string{"admin endpoints are only served to local clients"}})
			return
		}
		h(w, r)
	})
}

type errorsBody struct {
	Errors []string `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
