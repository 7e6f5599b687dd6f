package app

import (
	"context"
	"time"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/metrics"
	"github.com/rs/zerolog/log"
)

// HandleEnvelope interprets one inbound frame from sess. Envelopes from a
// single session arrive here in order because each connection has one read
// loop; nothing in this path blocks on I/O except the one-shot verifier call
// during authenticate, which only ever stalls its own session.
func (c *Coordinator) HandleEnvelope(ctx context.Context, sess *core.Session, data []byte) {
	if sess.IsClosed() {
		return
	}
	env, err := core.DecodeEnvelope(data)
	if err != nil {
		// Malformed input: logged, connection continues.
		log.Warn().Err(err).Str("module", "app.router").Str("sid", string(sess.ID)).Msg("bad envelope")
		return
	}
	metrics.EnvelopesIn.WithLabelValues(typeLabel(env.Type)).Inc()

	switch {
	case env.Type == core.TypeAuthenticate:
		c.handleAuthenticate(ctx, sess, env)
	case env.Type == core.TypeJoinRoom:
		c.handleJoinRoom(ctx, sess, env)
	case env.Type.IsRelay():
		c.relay(sess, env)
	case env.Type.IsBroadcast():
		c.broadcastFrom(sess, env)
	default:
		log.Debug().Str("module", "app.router").Str("type", string(env.Type)).Msg("unknown envelope type dropped")
	}
}

// typeLabel folds client-supplied type strings that the dispatcher does not
// recognize into one label, so the counter family stays bounded.
func typeLabel(t core.EnvelopeType) string {
	if t == core.TypeAuthenticate || t == core.TypeJoinRoom || t.IsRelay() || t.IsBroadcast() {
		return string(t)
	}
	return "unknown"
}

// relay forwards the envelope to the named member of the sender's room,
// payload untouched, senderId stamped. A sender with no room is a protocol
// violation and a missing target is an expected race; both are silent drops.
func (c *Coordinator) relay(sess *core.Session, env *core.Envelope) {
	roomID, ok := sess.RoomID()
	if !ok {
		log.Debug().Str("module", "app.router").Str("sid", string(sess.ID)).Str("type", string(env.Type)).Msg("relay before join dropped")
		return
	}
	room, ok := c.Registry.Find(roomID)
	if !ok {
		return
	}
	env.SenderID = string(sess.ID)
	data, err := env.Encode()
	if err != nil {
		log.Error().Err(err).Str("module", "app.router").Msg("encode relay")
		return
	}
	if !room.ForwardTo(core.SessionID(env.TargetID), data) {
		log.Debug().Str("module", "app.router").Str("target", env.TargetID).Str("type", string(env.Type)).Msg("stale relay target dropped")
	}
}

// broadcastFrom fans the envelope out to the sender's room, sender excluded,
// stamped with the sender's id and display name. Chat messages also get the
// server clock.
func (c *Coordinator) broadcastFrom(sess *core.Session, env *core.Envelope) {
	roomID, ok := sess.RoomID()
	if !ok {
		log.Debug().Str("module", "app.router").Str("sid", string(sess.ID)).Str("type", string(env.Type)).Msg("broadcast before join dropped")
		return
	}
	room, ok := c.Registry.Find(roomID)
	if !ok {
		return
	}
	env.SenderID = string(sess.ID)
	env.UserName = sess.Name()
	if env.Type == core.TypeChatMessage {
		env.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	c.broadcast(room, sess.ID, env)
}
