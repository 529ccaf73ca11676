package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// screen is one connected display following a live topic.
type screen struct {
	conn  *websocket.Conn
	topic string
	mu    sync.Mutex // gorilla allows a single concurrent writer
}

func newScreen(conn *websocket.Conn, topic string) *screen {
	return &screen{conn: conn, topic: topic}
}

func (s *screen) send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *screen) reply(env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return s.send(data)
}

func (s *screen) ping() error {
	return s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (s *screen) close() { _ = s.conn.Close() }
