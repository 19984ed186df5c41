package api

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/shuliakovsky/proxy-sync/pkg/secrets"
)

const LogBodyLimit = 4096

func LogSafe(b []byte) []byte {
	if len(b) > LogBodyLimit {
		out := make([]byte, 0, LogBodyLimit+16)
		out = append(out, b[:LogBodyLimit]...)
		return append(out, []byte("... [truncated]")...)
	}
	return b
}

func LogRequest(logger *zap.Logger, tag string, method, path string, body []byte) time.Time {
	logger.Info(tag+"_request",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("body", secrets.RedactString(string(LogSafe(body)))),
	)
	return time.Now()
}

func LogResponse(logger *zap.Logger, tag string, status int, body []byte, started time.Time) {
	logger.Info(tag+"_response",
		zap.Int("status", status),
		zap.Int64("latency_ms", time.Since(started).Milliseconds()),
		zap.ByteString("body", LogSafe(body)),
	)
}

type recorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *recorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(b []byte) (int, error) {
	if r.body.Len() < LogBodyLimit {
		r.body.Write(b)
	}
	return r.ResponseWriter.Write(b)
}

// WithLogging logs every API request and response. Websocket upgrades are
// passed through untouched.
func WithLogging(logger *zap.Logger, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Upgrade") != "" {
			h.ServeHTTP(w, r)
			return
		}
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
			_ = r.Body.Close()
			r.Body = io.NopCloser(bytes.NewReader(body))
		}
		started := LogRequest(logger, "api", r.Method, r.URL.Path, body)
		rec := &recorder{ResponseWriter: w, status: http.StatusOK}
		h.ServeHTTP(rec, r)
		LogResponse(logger, "api", rec.status, rec.body.Bytes(), started)
	})
}
