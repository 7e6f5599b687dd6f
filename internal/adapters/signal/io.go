package signal

import (
	"context"
	"time"

	"github.com/dkeye/Meet/internal/core"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const writeTimeout = 5 * time.Second

// writePump owns the socket's write side and its final close.
func (ctl *Controller) writePump(ctx context.Context, c *WsConn) {
	defer func() { _ = c.conn.Close() }()
	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

// readPump feeds inbound frames to the coordinator in arrival order. Its exit
// runs the disconnect cleanup, so a session can never outlive its transport.
func (ctl *Controller) readPump(ctx context.Context, cancel context.CancelFunc, sess *core.Session, c *WsConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sess.ID)).Msg("readPump closing")
		ctl.Coord.Disconnect(sess)
		c.Close()
		cancel()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Debug().Err(err).Str("module", "signal").Str("sid", string(sess.ID)).Msg("readPump read error")
				return
			}
			ctl.Coord.HandleEnvelope(ctx, sess, data)
		}
	}
}
