package cors

import (
	"net/http"
	"runtime/debug"
)

// Wrap applies the CORS middleware to h.
//
// Contrary to [*Middleware.Decorate], Wrap does not buffer responses:
// CORS headers are injected when h commits its response header, i.e. when h
// first calls WriteHeader, Write, or Flush, or when h returns.
// A panic that occurs before h commits its response is translated by the
// middleware's [Translator]; a panic that occurs afterwards propagates,
// since the response can no longer be replaced.
//
// Because CORS-preflight requests use OPTIONS as their method, do not
// prevent OPTIONS requests from reaching the resulting handler.
func (m *Middleware) Wrap(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		icfg := m.icfg.Load()
		if icfg == nil { // passthrough middleware
			h.ServeHTTP(w, r)
			return
		}
		dbg := m.debug.Load()
		if IsPreflight(r.Method, r.Header) {
			res, outcome := icfg.preflight(r.Header, dbg)
			m.logPreflight(r.Header, outcome)
			m.send(w, r, res)
			return
		}
		iw := interceptor{
			ResponseWriter: w,
			inject: func() {
				icfg.inject(r.Method, r.Header, w.Header(), dbg)
			},
		}
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == http.ErrAbortHandler || iw.committed {
				panic(v)
			}
			err := &PanicError{Value: v, Stack: debug.Stack()}
			m.logFault(r, err)
			res, terr := m.translate(r, err)
			if terr != nil {
				panic(terr)
			}
			res = normalize(res)
			icfg.inject(r.Method, r.Header, res.Header, dbg)
			m.send(w, r, res)
		}()
		h.ServeHTTP(&iw, r)
		iw.commit()
	})
}

// An interceptor runs inject right before the wrapped handler commits its
// response header.
type interceptor struct {
	http.ResponseWriter
	inject    func()
	committed bool
}

func (iw *interceptor) commit() {
	if iw.committed {
		return
	}
	iw.committed = true
	iw.inject()
}

func (iw *interceptor) WriteHeader(status int) {
	// Informational responses do not commit the final response header.
	if status >= 200 || status == http.StatusSwitchingProtocols {
		iw.commit()
	}
	iw.ResponseWriter.WriteHeader(status)
}

func (iw *interceptor) Write(p []byte) (int, error) {
	iw.commit()
	return iw.ResponseWriter.Write(p)
}

// Flush implements [http.Flusher].
func (iw *interceptor) Flush() {
	iw.commit()
	http.NewResponseController(iw.ResponseWriter).Flush()
}

// Unwrap gives [http.ResponseController] access to the underlying
// http.ResponseWriter.
func (iw *interceptor) Unwrap() http.ResponseWriter {
	return iw.ResponseWriter
}
