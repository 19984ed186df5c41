package registry

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/shuliakovsky/proxy-sync/pkg/peers"
)

// ErrCannotCreatePeer means the insert succeeded but the record could not be read back.
var ErrCannotCreatePeer = errors.New("cannot create peer")

// Service applies registry rules on top of a peers.Store. It holds no cache.
type Service struct {
	store  peers.Store
	logger *zap.Logger
}

// Prober checks that a candidate peer answers before it is registered.
type Prober interface {
	Probe(ctx context.Context, url string) error
}

// State is a step of the peer addition workflow.
type State string

const (
	StateCandidate  State = "candidate"
	StateProbed     State = "probed"
	StateRegistered State = "registered"
	StateRejected   State = "rejected"
)

type Enroller struct {
	svc    *Service
	prober Prober
	logger *zap.Logger
}
