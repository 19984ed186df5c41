package health

import (
	"context"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/shuliakovsky/proxy-sync/pkg/broadcast"
	"github.com/shuliakovsky/proxy-sync/pkg/secrets"
)

// FleetCheck probes every registered peer and fails on the first one
// that cannot be reached.
var FleetCheck = broadcast.Operation{
	Name:   "health",
	Method: http.MethodGet,
	Path:   broadcast.PathHealth,
}

type Checker struct {
	Engine *broadcast.Engine
	Client *http.Client
	Logger *zap.Logger
}

func New(engine *broadcast.Engine, client *http.Client, logger *zap.Logger) *Checker {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{Engine: engine, Client: client, Logger: logger}
}

// Fleet reports healthy only when every peer answers. No peers is healthy.
func (c *Checker) Fleet(ctx context.Context) (broadcast.Result, error) {
	return c.Engine.Broadcast(ctx, FleetCheck, broadcast.FailFast)
}

// Probe issues one GET {url}/health. Any response counts as alive.
func (c *Checker) Probe(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url+broadcast.PathHealth, nil)
	if err != nil {
		return &broadcast.PeerUnreachableError{URL: url, Err: err}
	}

	start := time.Now()
	resp, err := c.Client.Do(req)
	if err != nil {
		c.Logger.Warn("probe_request_error",
			zap.String("url", secrets.RedactURL(url)),
			zap.Error(err),
		)
		return &broadcast.PeerUnreachableError{URL: url, Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	c.Logger.Info("probe_ok",
		zap.String("url", secrets.RedactURL(url)),
		zap.Int("status", resp.StatusCode),
		zap.Int64("latency_ms", time.Since(start).Milliseconds()),
	)
	return nil
}
