package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/mparedes/draftroom/internal/domain"
)

// eventBuffer bounds the per-client event queue. A client that cannot keep
// up loses events rather than stalling the mutating goroutine; clients
// re-fetch the draft snapshot to resync.
const eventBuffer = 64

// Origin checks are handled by the CORS middleware in front of the router.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// events handles GET /drafts/{draftID}/events: upgrades to a websocket and
// streams the session's outbound events (stop added, plan locked, vote
// cast, remote update received, ...) as JSON messages until the client
// disconnects.
func (s *Server) events(w http.ResponseWriter, r *http.Request) {
	sess, err := s.manager.Open(r.Context(), chi.URLParam(r, "draftID"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written its own error response.
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	events := make(chan domain.Event, eventBuffer)
	unsubscribe := sess.OnEvent(func(ev domain.Event) {
		select {
		case events <- ev:
		default:
		}
	})
	defer unsubscribe()

	// The read loop exists to observe the close handshake; inbound
	// messages carry no meaning on this endpoint.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev := <-events:
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
