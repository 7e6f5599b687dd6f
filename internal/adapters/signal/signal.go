// Package signal is the websocket transport in front of the coordinator.
package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/dkeye/Meet/internal/app"
	"github.com/dkeye/Meet/internal/core"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

type Controller struct {
	Coord      *app.Coordinator
	SendBuffer int
	ReadLimit  int64
}

func NewController(coord *app.Coordinator, sendBuffer int, readLimit int64) *Controller {
	if sendBuffer <= 0 {
		sendBuffer = 32
	}
	return &Controller{Coord: coord, SendBuffer: sendBuffer, ReadLimit: readLimit}
}

// WsConn implements core.SignalConnection over one websocket. TrySend never
// blocks: a full send buffer or a closed connection drops the frame.
type WsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

// Close stops intake and closes the send channel. The write pump drains what
// is already queued (a final error envelope, typically) and then closes the
// underlying socket, which in turn unblocks the read pump.
func (c *WsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle upgrades the request and runs the connection until it dies. The read
// pump exiting, for any reason, is the one disconnect trigger.
func (ctl *Controller) Handle(ctx context.Context, c *gin.Context) {
	ct := c.GetString("client_token")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	if ctl.ReadLimit > 0 {
		ws.SetReadLimit(ctl.ReadLimit)
	}

	conn := &WsConn{
		conn: ws,
		send: make(chan core.Frame, ctl.SendBuffer),
	}

	sess := ctl.Coord.Connect(conn)
	log.Info().Str("module", "signal").Str("sid", string(sess.ID)).Str("ct", ct).Msg("new WS connection")

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, sess, conn)
}
