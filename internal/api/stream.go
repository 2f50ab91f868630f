package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/hobbit-home/internal/engine"
)

const (
	maxStreamConns = 8
	streamCatchUp  = 50
	writeWait      = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 16 * 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleStream upgrades to a websocket and pushes every colony event as a
// JSON text message, starting with the most recent ones.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if current := atomic.AddInt32(&s.streamConns, 1); current > maxStreamConns {
		atomic.AddInt32(&s.streamConns, -1)
		http.Error(w, "too many stream connections", http.StatusServiceUnavailable)
		return
	}
	defer atomic.AddInt32(&s.streamConns, -1)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	subID, ch := s.Sim.Subscribe()
	defer s.Sim.Unsubscribe(subID)
	slog.Info("stream client connected", "sub_id", subID)

	// Clients only listen; reading is needed to notice them leave.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	for _, e := range s.Sim.RecentEvents(streamCatchUp) {
		if err := writeEvent(conn, e); err != nil {
			return
		}
	}

	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return
			}
			if err := writeEvent(conn, e); err != nil {
				return
			}
		case <-heartbeat.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-gone:
			slog.Info("stream client disconnected", "sub_id", subID)
			return
		}
	}
}

func writeEvent(conn *websocket.Conn, e engine.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}
