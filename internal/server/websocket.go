package server

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/kode4food/caravan/topic"

	"github.com/kode4food/argyll/editor/internal/store"
	"github.com/kode4food/argyll/editor/pkg/api"
	"github.com/kode4food/argyll/editor/pkg/log"
)

// runSocket streams the records of one run to a WebSocket client
type runSocket struct {
	server    *Server
	conn      *websocket.Conn
	consumer  topic.Consumer[*api.ExecutionRecord]
	runID     api.RunID
	writeMu   sync.Mutex
	closeOnce sync.Once
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	wsBufferSize   = 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  wsBufferSize,
	WriteBufferSize: wsBufferSize,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (s *Server) handleRunWebSocket(c *gin.Context) {
	id := api.RunID(c.Param("runID"))
	ctx := c.Request.Context()

	consumer := s.runs.NewConsumer()
	current, err := s.store.GetRun(ctx, id)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		consumer.Close()
		writeError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		consumer.Close()
		slog.Error("WebSocket upgrade failed",
			log.Error(err))
		return
	}

	sock := &runSocket{
		server:   s,
		conn:     conn,
		consumer: consumer,
		runID:    id,
	}
	s.registerSocket(sock)
	go sock.run(current)
}

// Close ends the stream
func (c *runSocket) Close() {
	c.closeOnce.Do(func() {
		c.writeMu.Lock()
		defer c.writeMu.Unlock()
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		)
		_ = c.conn.Close()
	})
}

func (c *runSocket) run(current *api.ExecutionRecord) {
	defer func() {
		c.server.unregisterSocket(c)
		c.consumer.Close()
		c.Close()
	}()

	if current != nil {
		if !c.send(current) || current.Status.IsTerminal() {
			return
		}
	}

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	closed := make(chan struct{})
	go c.readMessages(closed)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case rec, ok := <-c.consumer.Receive():
			if !ok {
				return
			}
			if rec.ID != c.runID {
				continue
			}
			if !c.send(rec) || rec.Status.IsTerminal() {
				return
			}
		case <-ticker.C:
			if !c.ping() {
				return
			}
		}
	}
}

func (c *runSocket) readMessages(closed chan struct{}) {
	defer close(closed)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *runSocket) ping() bool {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.PingMessage, nil) == nil
}

func (c *runSocket) send(rec *api.ExecutionRecord) bool {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(rec); err != nil {
		slog.Error("WebSocket write failed",
			log.RunID(c.runID),
			log.Error(err))
		return false
	}
	return true
}
