package api

import (
	"bytes"
	"net/http"

	"go.uber.org/zap"

	"github.com/shuliakovsky/proxy-sync/pkg/broadcast"
	"github.com/shuliakovsky/proxy-sync/pkg/events"
	"github.com/shuliakovsky/proxy-sync/pkg/health"
)

type Sync struct {
	Engine  *broadcast.Engine
	Checker *health.Checker
	Events  *events.Hub
	Logger  *zap.Logger
}

func NewSync(engine *broadcast.Engine, checker *health.Checker, hub *events.Hub, logger *zap.Logger) *Sync {
	return &Sync{Engine: engine, Checker: checker, Events: hub, Logger: logger}
}

// POST /sync
func (s *Sync) Set(w http.ResponseWriter, r *http.Request) {
	var req broadcast.SetData
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := requireFields(req.Type, req.Key); err != nil {
		writeError(w, err)
		return
	}
	if isEmptyJSON(req.Value) {
		writeError(w, invalidInput("value: value is required"))
		return
	}
	s.run(w, r, broadcast.SetOne, req, "Set data to all proxies successfully")
}

// POST /sync/multi
func (s *Sync) SetMulti(w http.ResponseWriter, r *http.Request) {
	var req broadcast.SetMultiData
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Type == "" {
		writeError(w, invalidInput("type: type is required"))
		return
	}
	if isEmptyJSON(req.Data) {
		writeError(w, invalidInput("data: data is required"))
		return
	}
	s.run(w, r, broadcast.SetMulti, req, "Set multi data to all proxies successfully")
}

// DELETE /sync
func (s *Sync) Delete(w http.ResponseWriter, r *http.Request) {
	var req broadcast.DeleteData
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := requireFields(req.Type, req.Key); err != nil {
		writeError(w, err)
		return
	}
	s.run(w, r, broadcast.Delete, req, "Delete data from all proxies success")
}

// GET /sync/health
func (s *Sync) Health(w http.ResponseWriter, r *http.Request) {
	res, err := s.Checker.Fleet(r.Context())
	s.Events.Publish(events.Broadcast, res)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "All proxies functional", nil)
}

func (s *Sync) run(w http.ResponseWriter, r *http.Request, kind broadcast.Kind, payload any, message string) {
	res, err := s.Engine.Sync(r.Context(), kind, payload)
	if err != nil {
		writeError(w, err)
		return
	}
	s.Events.Publish(events.Broadcast, res)
	writeOK(w, http.StatusOK, message, nil)
}

func requireFields(typ, key string) error {
	if typ == "" {
		return invalidInput("type: type is required")
	}
	if key == "" {
		return invalidInput("key: key is required")
	}
	return nil
}

func isEmptyJSON(b []byte) bool {
	return len(bytes.TrimSpace(b)) == 0
}
