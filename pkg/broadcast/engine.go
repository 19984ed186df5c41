package broadcast

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/shuliakovsky/proxy-sync/pkg/metrics"
	"github.com/shuliakovsky/proxy-sync/pkg/peers"
	"github.com/shuliakovsky/proxy-sync/pkg/secrets"
	"github.com/shuliakovsky/proxy-sync/pkg/tracing"
)

func New(lister Lister, client *http.Client, logger *zap.Logger) *Engine {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{peers: lister, client: client, logger: logger}
}

// Broadcast reads the peer set once and sends op to every peer concurrently.
// Fan-out width equals the peer count; there is no bound. Calls already
// dispatched keep running even if ctx is cancelled or FailFast returns early.
func (e *Engine) Broadcast(ctx context.Context, op Operation, policy Policy) (res Result, err error) {
	res = Result{ID: uuid.NewString(), Operation: op.Name, Policy: policy.String()}

	ctx, end := tracing.StartSpan(ctx, "broadcast "+op.Name,
		attribute.String("broadcast.id", res.ID),
		attribute.String("broadcast.policy", res.Policy),
	)
	defer func() { end(err) }()

	list, err := e.peers.List(ctx)
	if err != nil {
		return res, err
	}
	res.Targets = len(list)
	metrics.PeersRegistered.Set(float64(len(list)))
	metrics.FanOutWidth.WithLabelValues(op.Name).Set(float64(len(list)))

	body, err := op.encode()
	if err != nil {
		return res, fmt.Errorf("encode %s payload: %w", op.Name, err)
	}

	started := time.Now()
	callCtx := context.WithoutCancel(ctx)
	outcomes := make(chan Outcome, len(list))
	for _, p := range list {
		go func(p peers.Peer) {
			outcomes <- e.call(callCtx, res.ID, op, p.URL, body)
		}(p)
	}

	err = e.collect(outcomes, len(list), op, policy)

	metrics.BroadcastLatency.WithLabelValues(op.Name, res.Policy).Observe(time.Since(started).Seconds())
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.Broadcasts.WithLabelValues(op.Name, res.Policy, result).Inc()

	e.logger.Info("broadcast_done",
		zap.String("id", res.ID),
		zap.String("operation", op.Name),
		zap.String("policy", res.Policy),
		zap.Int("targets", res.Targets),
		zap.Int64("latency_ms", time.Since(started).Milliseconds()),
		zap.Bool("ok", err == nil),
	)
	return res, err
}

// collect applies the aggregation policy to n outcomes. On an early FailFast
// return the remaining outcomes are drained in the background so they are
// still logged and counted.
func (e *Engine) collect(outcomes <-chan Outcome, n int, op Operation, policy Policy) error {
	for i := 0; i < n; i++ {
		o := <-outcomes
		e.observe(op, o)
		if o.Err != nil && policy == FailFast {
			go func(left int) {
				for j := 0; j < left; j++ {
					e.observe(op, <-outcomes)
				}
			}(n - i - 1)
			return &PeerUnreachableError{URL: o.URL, Err: o.Err}
		}
	}
	return nil
}

func (e *Engine) observe(op Operation, o Outcome) {
	if o.Err != nil {
		metrics.PeerCalls.WithLabelValues(op.Name, "error").Inc()
		e.logger.Warn("broadcast_peer_error",
			zap.String("operation", op.Name),
			zap.String("peer", secrets.RedactURL(o.URL)),
			zap.Error(o.Err),
		)
		return
	}
	metrics.PeerCalls.WithLabelValues(op.Name, "ok").Inc()
	e.logger.Debug("broadcast_peer_ok",
		zap.String("operation", op.Name),
		zap.String("peer", secrets.RedactURL(o.URL)),
		zap.Int("status", o.Status),
		zap.Int64("latency_ms", o.Latency.Milliseconds()),
	)
}

func (e *Engine) call(ctx context.Context, id string, op Operation, base string, body []byte) Outcome {
	o := Outcome{URL: base}

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, op.Method, base+op.Path, rd)
	if err != nil {
		o.Err = err
		return o
	}
	if body != nil {
		req.Header.Set("content-type", "application/json")
	}
	req.Header.Set(HeaderBroadcastID, id)

	start := time.Now()
	resp, err := e.client.Do(req)
	o.Latency = time.Since(start)
	if err != nil {
		o.Err = err
		return o
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	o.Status = resp.StatusCode
	return o
}
