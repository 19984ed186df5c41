package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/shuliakovsky/proxy-sync/pkg/peers"
)

// HeaderBroadcastID correlates all outbound calls of one broadcast.
const HeaderBroadcastID = "X-Sync-Broadcast-Id"

var ErrPeerUnreachable = errors.New("peer unreachable")

// Policy decides how per-peer failures reach the caller.
type Policy int

const (
	// BestEffort waits for every call and ignores failures.
	BestEffort Policy = iota
	// FailFast returns the first failure, in completion order.
	FailFast
)

func (p Policy) String() string {
	switch p {
	case BestEffort:
		return "best_effort"
	case FailFast:
		return "fail_fast"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// Operation is one unit to send to every peer. A nil Body sends no body.
type Operation struct {
	Name   string
	Method string
	Path   string
	Body   any
}

func (op Operation) encode() ([]byte, error) {
	if op.Body == nil {
		return nil, nil
	}
	return json.Marshal(op.Body)
}

// Outcome is the result of one peer call. Status is recorded but never
// inspected: any response counts as success.
type Outcome struct {
	URL     string
	Status  int
	Latency time.Duration
	Err     error
}

// Result describes a finished broadcast. Per-peer outcomes are not part of it.
type Result struct {
	ID        string `json:"id"`
	Operation string `json:"operation"`
	Policy    string `json:"policy"`
	Targets   int    `json:"targets"`
}

type PeerUnreachableError struct {
	URL string
	Err error
}

func (e *PeerUnreachableError) Error() string {
	return fmt.Sprintf("peer unreachable: %s: %v", e.URL, e.Err)
}

func (e *PeerUnreachableError) Unwrap() error { return e.Err }

func (e *PeerUnreachableError) Is(target error) bool { return target == ErrPeerUnreachable }

// Lister supplies the current peer set.
type Lister interface {
	List(ctx context.Context) ([]peers.Peer, error)
}

type Engine struct {
	peers  Lister
	client *http.Client
	logger *zap.Logger
}
