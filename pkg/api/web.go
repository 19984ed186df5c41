package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/shuliakovsky/proxy-sync/pkg/broadcast"
	"github.com/shuliakovsky/proxy-sync/pkg/peers"
	"github.com/shuliakovsky/proxy-sync/pkg/registry"
)

const maxBodyBytes = 1 << 20

var (
	errBadBody     = errors.New("invalid request body")
	errProbeFailed = errors.New("proxy probe failed")
)

// Web is the envelope of every JSON response.
type Web struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
	Error   string `json:"error"`
}

type invalidInputError struct{ msg string }

func (e *invalidInputError) Error() string { return e.msg }

func invalidInput(format string, args ...any) error {
	return &invalidInputError{msg: fmt.Sprintf(format, args...)}
}

func statusCode(status int) string {
	return fmt.Sprintf("%d %s", status, http.StatusText(status))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeOK(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, Web{Code: statusCode(status), Message: message, Data: data})
}

func writeError(w http.ResponseWriter, err error) {
	status, message, detail := describeError(err)
	writeJSON(w, status, Web{Code: statusCode(status), Message: message, Error: detail})
}

func describeError(err error) (int, string, string) {
	var invalid *invalidInputError
	switch {
	case errors.Is(err, errBadBody):
		return http.StatusBadRequest, "Invalid request body", "The request body sent to the server was incorrect."
	case errors.As(err, &invalid):
		return http.StatusBadRequest, "Invalid input", invalid.msg
	case errors.Is(err, errProbeFailed):
		return http.StatusBadRequest, "Request to one proxy error", "The proxy provided is unreachable"
	case errors.Is(err, peers.ErrDuplicatePeer):
		return http.StatusBadRequest, "Proxy already exists", "This proxy is already exists, please try another"
	case errors.Is(err, peers.ErrPeerNotFound):
		return http.StatusNotFound, "Proxy not found", "The url provided cannot be found in the database"
	case errors.Is(err, registry.ErrCannotCreatePeer):
		return http.StatusInternalServerError, "Cannot create proxy", "This proxy could not be created, something went wrong"
	case errors.Is(err, broadcast.ErrPeerUnreachable):
		return http.StatusInternalServerError, "Request to proxies error",
			fmt.Sprintf("A connection to one of the proxies could not be made. Error: %v.", err)
	case errors.Is(err, peers.ErrStoreUnavailable):
		return http.StatusInternalServerError, "Database query error", "The information provided could not be queried."
	default:
		return http.StatusInternalServerError, "Server error", "Something wrong happened"
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	return nil
}
