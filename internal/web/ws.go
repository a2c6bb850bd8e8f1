package web

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/sweeney/blink-logger/internal/status"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const writeWait = 5 * time.Second

// handleWS pushes a status snapshot immediately and then every push interval
// until the client goes away or the server shuts down.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	// Reads only detect the close; clients send nothing.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					s.logger.Debug("websocket closed", zap.Error(err))
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(s.push)
	defer ticker.Stop()

	for {
		if err := s.writeSnapshot(conn); err != nil {
			s.logger.Debug("websocket write failed", zap.Error(err))
			return
		}
		select {
		case <-ticker.C:
		case <-closed:
			return
		case <-s.done:
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutdown"),
				time.Now().Add(writeWait))
			return
		}
	}
}

func (s *Server) writeSnapshot(conn *websocket.Conn) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, status.FormatJSON(s.tracker.Snapshot()))
}
