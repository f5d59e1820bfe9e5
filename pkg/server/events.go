package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/matzehuels/vrtour/pkg/errors"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10

	// eventBuffer is how many changes a slow client may lag behind before
	// it starts missing them.
	eventBuffer = 64
)

// handleEvents upgrades to a websocket and streams every hotspot change as a
// JSON text message until the client disconnects.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.feed == nil {
		s.writeError(w, errors.New(errors.ErrCodeUnsupported, "event stream is not enabled"))
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		s.logger.Debug("websocket upgrade", "err", err)
		return
	}
	defer conn.Close()

	changes, cancel := s.feed.Subscribe(eventBuffer)
	defer cancel()
	s.logger.Debug("event client connected", "remote", r.RemoteAddr)

	closed := make(chan struct{})
	go s.readPump(conn, closed)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case c, ok := <-changes:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "store closed"))
				return
			}
			if err := conn.WriteJSON(c); err != nil {
				s.logger.Debug("event write", "err", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			s.logger.Debug("event client disconnected", "remote", r.RemoteAddr)
			return
		case <-r.Context().Done():
			return
		}
	}
}

// readPump discards client messages and keeps the read deadline fresh on
// pongs. It closes done when the connection fails.
func (s *Server) readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
