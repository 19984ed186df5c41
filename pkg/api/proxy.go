package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/shuliakovsky/proxy-sync/pkg/broadcast"
	"github.com/shuliakovsky/proxy-sync/pkg/events"
	"github.com/shuliakovsky/proxy-sync/pkg/peers"
	"github.com/shuliakovsky/proxy-sync/pkg/registry"
)

type Proxies struct {
	Reg      *registry.Service
	Enroller *registry.Enroller
	Events   *events.Hub
	Logger   *zap.Logger
}

func NewProxies(reg *registry.Service, enroller *registry.Enroller, hub *events.Hub, logger *zap.Logger) *Proxies {
	return &Proxies{Reg: reg, Enroller: enroller, Events: hub, Logger: logger}
}

type proxyRequest struct {
	URL string `json:"url"`
}

// GET /proxy
func (p *Proxies) List(w http.ResponseWriter, r *http.Request) {
	list, err := p.Reg.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "Get all proxies successfully", list)
}

// GET /proxy/lookup?url=
func (p *Proxies) Lookup(w http.ResponseWriter, r *http.Request) {
	u := r.URL.Query().Get("url")
	if err := ValidateURL(u); err != nil {
		writeError(w, err)
		return
	}
	peer, err := p.Reg.Lookup(r.Context(), u)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "Get proxy successfully", peer)
}

// POST /proxy/create
func (p *Proxies) Create(w http.ResponseWriter, r *http.Request) {
	var req proxyRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := ValidateURL(req.URL); err != nil {
		writeError(w, err)
		return
	}

	peer, err := p.Enroller.Enroll(r.Context(), req.URL)
	if err != nil {
		if errors.Is(err, broadcast.ErrPeerUnreachable) {
			err = fmt.Errorf("%w: %w", errProbeFailed, err)
		}
		writeError(w, err)
		return
	}
	p.Events.Publish(events.PeerAdded, peer)
	writeOK(w, http.StatusCreated, "New proxy created", peer)
}

// DELETE /proxy/delete
func (p *Proxies) Delete(w http.ResponseWriter, r *http.Request) {
	var req proxyRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := ValidateURL(req.URL); err != nil {
		writeError(w, err)
		return
	}
	if err := p.Reg.Remove(r.Context(), req.URL); err != nil {
		writeError(w, err)
		return
	}
	p.Events.Publish(events.PeerRemoved, peers.Peer{URL: req.URL})
	writeOK(w, http.StatusOK, "Deleted proxy successfully", nil)
}

// ValidateURL accepts absolute http and https urls only.
func ValidateURL(raw string) error {
	if raw == "" {
		return invalidInput("url: Proxy url is required")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return invalidInput("url: Proxy url is invalid")
	}
	if strings.HasSuffix(raw, "/") {
		return invalidInput("url: Proxy url must not end with '/'")
	}
	return nil
}
