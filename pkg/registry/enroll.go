package registry

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/shuliakovsky/proxy-sync/pkg/metrics"
	"github.com/shuliakovsky/proxy-sync/pkg/peers"
	"github.com/shuliakovsky/proxy-sync/pkg/secrets"
)

func NewEnroller(svc *Service, prober Prober, logger *zap.Logger) *Enroller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enroller{svc: svc, prober: prober, logger: logger}
}

// Enroll runs candidate -> probed -> registered. A failed probe or a
// duplicate url rejects the candidate; nothing is retried.
func (e *Enroller) Enroll(ctx context.Context, url string) (peers.Peer, error) {
	state := StateCandidate
	log := e.logger.With(zap.String("url", secrets.RedactURL(url)))

	if err := e.prober.Probe(ctx, url); err != nil {
		e.reject(log, state, err)
		return peers.Peer{}, err
	}
	state = StateProbed

	p, err := e.svc.Add(ctx, url)
	if err != nil {
		e.reject(log, state, err)
		return peers.Peer{}, err
	}

	metrics.Enrollments.WithLabelValues(string(StateRegistered)).Inc()
	log.Info("enroll_registered")
	return p, nil
}

func (e *Enroller) reject(log *zap.Logger, from State, err error) {
	metrics.Enrollments.WithLabelValues(string(StateRejected)).Inc()
	if errors.Is(err, peers.ErrDuplicatePeer) {
		log.Info("enroll_rejected", zap.String("from", string(from)), zap.Error(err))
		return
	}
	log.Warn("enroll_rejected", zap.String("from", string(from)), zap.Error(err))
}
