package peers

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrDuplicatePeer    = errors.New("peer already exists")
	ErrPeerNotFound     = errors.New("peer not found")
	ErrStoreUnavailable = errors.New("peer store unavailable")
)

// Peer is a remote proxy registered to receive synchronized data.
type Peer struct {
	URL string `json:"url" bson:"url"`
}

// Store is the durable set of peers, keyed by url.
type Store interface {
	Exists(ctx context.Context, url string) (bool, error)
	Insert(ctx context.Context, p Peer) error
	Get(ctx context.Context, url string) (Peer, error)
	Delete(ctx context.Context, url string) error
	List(ctx context.Context) ([]Peer, error)
	Close(ctx context.Context) error
}

// StoreError carries the backend failure verbatim.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return "peer store " + e.Op + ": " + e.Err.Error() }
func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrStoreUnavailable }

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

type MemoryStore struct {
	mu    sync.RWMutex
	order []string
	peers map[string]Peer
}
