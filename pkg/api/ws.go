package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/shuliakovsky/proxy-sync/pkg/events"
)

const wsWriteTimeout = 5 * time.Second

type Events struct {
	Hub    *events.Hub
	Logger *zap.Logger
}

func NewEvents(hub *events.Hub, logger *zap.Logger) *Events {
	return &Events{Hub: hub, Logger: logger}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// GET /ws/events streams registry and broadcast events as JSON messages.
func (e *Events) ServeWS(rw http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(rw, r, nil)
	if err != nil {
		e.Logger.Warn("ws_upgrade_failed", zap.Error(err))
		return
	}
	defer conn.Close()

	feed, cancel := e.Hub.Subscribe()
	defer cancel()
	e.Logger.Info("ws_events_connected", zap.String("remote", r.RemoteAddr))

	// reader only notices the client going away
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			e.Logger.Info("ws_events_disconnected", zap.String("remote", r.RemoteAddr))
			return
		case ev, ok := <-feed:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				e.Logger.Warn("ws_events_write_error", zap.Error(err))
				return
			}
		}
	}
}
