package registry

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/shuliakovsky/proxy-sync/pkg/metrics"
	"github.com/shuliakovsky/proxy-sync/pkg/peers"
	"github.com/shuliakovsky/proxy-sync/pkg/secrets"
)

func New(store peers.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// List returns the committed peer set at call time.
func (s *Service) List(ctx context.Context) ([]peers.Peer, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	metrics.PeersRegistered.Set(float64(len(list)))
	return list, nil
}

// Add persists url and returns the record as read back from the store.
// The liveness probe is the caller's job.
func (s *Service) Add(ctx context.Context, url string) (peers.Peer, error) {
	exists, err := s.store.Exists(ctx, url)
	if err != nil {
		return peers.Peer{}, err
	}
	if exists {
		return peers.Peer{}, fmt.Errorf("%s: %w", url, peers.ErrDuplicatePeer)
	}
	if err := s.store.Insert(ctx, peers.Peer{URL: url}); err != nil {
		return peers.Peer{}, err
	}

	p, err := s.store.Get(ctx, url)
	if errors.Is(err, peers.ErrPeerNotFound) {
		return peers.Peer{}, fmt.Errorf("%s: %w", url, ErrCannotCreatePeer)
	}
	if err != nil {
		return peers.Peer{}, err
	}
	s.logger.Info("peer_added", zap.String("url", secrets.RedactURL(url)))
	return p, nil
}

// Remove deletes url. Removing an absent peer is not an error.
func (s *Service) Remove(ctx context.Context, url string) error {
	if err := s.store.Delete(ctx, url); err != nil {
		return err
	}
	s.logger.Info("peer_removed", zap.String("url", secrets.RedactURL(url)))
	return nil
}

func (s *Service) Lookup(ctx context.Context, url string) (peers.Peer, error) {
	return s.store.Get(ctx, url)
}
