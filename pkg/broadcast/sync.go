package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const (
	PathSync      = "/proxy-sync/v1"
	PathSyncMulti = "/proxy-sync/v1/multi"
	PathHealth    = "/health"
)

// Kind names a data mutation that is synchronized to every peer.
type Kind int

const (
	SetOne Kind = iota
	SetMulti
	Delete
)

func (k Kind) String() string {
	switch k {
	case SetOne:
		return "set"
	case SetMulti:
		return "set_multi"
	case Delete:
		return "delete"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Operation builds the outbound call for k carrying payload as its JSON body.
func (k Kind) Operation(payload any) Operation {
	switch k {
	case SetMulti:
		return Operation{Name: k.String(), Method: http.MethodPost, Path: PathSyncMulti, Body: payload}
	case Delete:
		return Operation{Name: k.String(), Method: http.MethodDelete, Path: PathSync, Body: payload}
	default:
		return Operation{Name: SetOne.String(), Method: http.MethodPost, Path: PathSync, Body: payload}
	}
}

// SetData sets one key on every peer.
type SetData struct {
	Type  string          `json:"type"`
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// SetMultiData sets every key of Data on every peer.
type SetMultiData struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// DeleteData removes one key on every peer. TTL is forwarded as received.
type DeleteData struct {
	Type string          `json:"type"`
	Key  string          `json:"key"`
	TTL  json.RawMessage `json:"ttl,omitempty"`
}

// Sync broadcasts a data mutation with the BestEffort policy: the error is
// non-nil only when the peer set could not be read or the payload encoded.
func (e *Engine) Sync(ctx context.Context, kind Kind, payload any) (Result, error) {
	return e.Broadcast(ctx, kind.Operation(payload), BestEffort)
}
