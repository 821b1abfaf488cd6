package web

import (
	"encoding/json"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/zan8in/gologger"
	"github.com/zan8in/moongazing/pkg/api"
	mgerrors "github.com/zan8in/moongazing/pkg/errors"
)

// EnvTrustProxy enables X-Forwarded-For and X-Real-IP. Only set it behind
// a trusted reverse proxy.
const EnvTrustProxy = "MOONGAZING_TRUST_PROXY"

func getClientIP(r *http.Request) string {
	if os.Getenv(EnvTrustProxy) == "1" {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			return strings.TrimSpace(strings.Split(xff, ",")[0])
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return xri
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError passes a backend error through with its status. Transport
// failures become 502.
func writeError(w http.ResponseWriter, err error) {
	var apiErr *mgerrors.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = http.StatusText(apiErr.Status)
		}
		writeJSON(w, apiErr.Status, api.Response[any]{Code: apiErr.Status, Message: msg})
		return
	}
	gologger.Warning().Msgf("gateway: backend call failed: %v", err)
	writeJSON(w, http.StatusBadGateway, api.Response[any]{Code: http.StatusBadGateway, Message: err.Error()})
}

// reply writes resp, or the error when err is set.
func reply[T any](w http.ResponseWriter, resp *api.Response[T], err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func intParam(r *http.Request, name string) int {
	n, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get(name)))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
