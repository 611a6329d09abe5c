package cfgerrors_test

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"

	"github.com/taisey/cors"
	"github.com/taisey/cors/cfgerrors"
)

// The server below lets tenants edit their own CORS policy; it reports
// the resulting configuration mistakes (if any) in its own words.
func Example() {
	var app TenantApp

	mux := http.NewServeMux()
	mux.HandleFunc("POST /configure-cors", app.handleReconfigureCORS)

	api := http.NewServeMux()
	api.HandleFunc("GET /hello", handleHello)
	mux.Handle("/", app.corsMiddleware.Wrap(api))

	if err := http.ListenAndServe(":8080", mux); err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

type TenantApp struct {
	corsMiddleware cors.Middleware
}

func (app *TenantApp) handleReconfigureCORS(w http.ResponseWriter, r *http.Request) {
	mediatype, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediatype != "application/json" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	var reqData struct {
		Origins          []string          `json:"origins"`
		Credentials      bool              `json:"credentials"`
		Methods          []string          `json:"methods"`
		RequestHeaders   []string          `json:"request_headers"`
		MaxAge           int               `json:"max_age"`
		ResponseHeaders  []string          `json:"response_headers"`
		PreflightHeaders map[string]string `json:"preflight_headers"`
		PreflightStatus  int               `json:"preflight_status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&reqData); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	cfg := cors.Config{
		Origins:          reqData.Origins,
		Credentialed:     reqData.Credentials,
		Methods:          reqData.Methods,
		RequestHeaders:   reqData.RequestHeaders,
		MaxAgeInSeconds:  reqData.MaxAge,
		ResponseHeaders:  reqData.ResponseHeaders,
		PreflightHeaders: reqData.PreflightHeaders,
		PreflightStatus:  reqData.PreflightStatus,
	}

	if err := app.corsMiddleware.Reconfigure(&cfg); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		resData := struct {
			Errors []string `json:"errors"`
		}{
			Errors: adaptCORSConfigErrorMessagesForClient(err),
		}
		json.NewEncoder(w).Encode(resData)
	}
}

func adaptCORSConfigErrorMessagesForClient(err error) []string {
	var msgs []string
	for err := range cfgerrors.All(err) {
		var msg string
		switch err := err.(type) {
		case *cfgerrors.UnacceptableOriginPatternError:
			switch err.Reason {
			case "missing":
				msg = "You must allow at least one Web origin."
			case "invalid":
				msg = fmt.Sprintf("%q is not a valid Web origin.", err.Value)
			default:
				msg = fmt.Sprintf("For security reasons, you cannot allow Web origin %q.", err.Value)
			}
		case *cfgerrors.UnacceptableMethodError:
			if err.Reason == "forbidden" {
				msg = fmt.Sprintf("No browser-based client can send a %s request.", err.Value)
			} else {
				msg = fmt.Sprintf("%q is not a valid HTTP-method name.", err.Value)
			}
		case *cfgerrors.UnacceptableHeaderNameError:
			const tmpl = "You cannot allow %q as a %s-header name (%s)."
			msg = fmt.Sprintf(tmpl, err.Value, err.Type, err.Reason)
		case *cfgerrors.MaxAgeOutOfBoundsError:
			const tmpl = "Your max-age value, %d, is either negative or too high (max: %d). Alternatively, you can specify %d to disable caching."
			msg = fmt.Sprintf(tmpl, err.Value, err.Max, err.Disable)
		case *cfgerrors.IncompatibleOriginPatternError:
			const tmpl = "For security reasons, you cannot specify %q as an origin pattern, because it covers all subdomains of a public suffix."
			msg = fmt.Sprintf(tmpl, err.Value)
		case *cfgerrors.IncompatibleWildcardResponseHeaderNameError:
			msg = "You cannot expose all response headers when credentialed access is allowed."
		case *cfgerrors.UnacceptablePreflightHeaderError:
			const tmpl = "You cannot add header %q to preflight responses (%s)."
			msg = fmt.Sprintf(tmpl, err.Name, err.Reason)
		case *cfgerrors.UnacceptableStatusError:
			msg = fmt.Sprintf("%d is not an acceptable value for %s.", err.Value, err.Field)
		default:
			msg = err.Error()
		}
		msgs = append(msgs, msg)
	}
	return msgs
}

func handleHello(w http.ResponseWriter, _ *http.Request) {
	io.WriteString(w, "Hello, World!")
}
