// Package app wires sessions, rooms, and envelope routing together. It never
// touches a real socket: transports hand it core.Session values whose outbound
// side is a core.SignalConnection.
package app

import (
	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Coordinator owns connection lifecycles end to end: session creation, the
// auth handshake, room join, and disconnect cleanup.
type Coordinator struct {
	Registry *Registry
	Verifier core.IdentityVerifier
	Recorder core.ParticipationRecorder
	Meta     core.RoomMetaSource
}

func NewCoordinator(reg *Registry, verifier core.IdentityVerifier, recorder core.ParticipationRecorder, meta core.RoomMetaSource) *Coordinator {
	return &Coordinator{
		Registry: reg,
		Verifier: verifier,
		Recorder: recorder,
		Meta:     meta,
	}
}

// Connect allocates a fresh session for one live connection. No room
// membership, no identity yet.
func (c *Coordinator) Connect(signal core.SignalConnection) *core.Session {
	sess := core.NewSession(signal)
	metrics.ActiveSessions.Inc()
	log.Info().Str("module", "app.coordinator").Str("sid", string(sess.ID)).Msg("session connected")
	return sess
}

// Disconnect tears the session down: room membership is removed, remaining
// members get user-left, and the departure is recorded best-effort. Safe to
// call more than once; only the first call does anything.
func (c *Coordinator) Disconnect(sess *core.Session) {
	if !sess.MarkClosed() {
		return
	}
	metrics.ActiveSessions.Dec()

	room, notify := c.Registry.Leave(sess)
	if room != nil {
		if notify {
			c.broadcast(room, sess.ID, &core.Envelope{
				Type:   core.TypeUserLeft,
				UserID: string(sess.ID),
			})
		}
		if ident, ok := sess.Identity(); ok {
			c.Recorder.RecordLeave(room.ID, ident.ID)
		}
	}
	log.Info().Str("module", "app.coordinator").Str("sid", string(sess.ID)).Msg("session disconnected")
}

// send delivers one envelope to one session, best-effort. A closed outbound
// handle means the disconnect path is already in flight; the frame is dropped.
func (c *Coordinator) send(sess *core.Session, env *core.Envelope) {
	data, err := env.Encode()
	if err != nil {
		log.Error().Err(err).Str("module", "app.coordinator").Msg("encode envelope")
		return
	}
	if err := sess.Signal().TrySend(data); err != nil {
		metrics.DroppedDeliveries.Inc()
		log.Debug().Str("module", "app.coordinator").Str("sid", string(sess.ID)).Msg("outbound dropped")
	}
}

func (c *Coordinator) sendError(sess *core.Session, code, msg string) {
	c.send(sess, core.ErrorEnvelope(code, msg))
}

func (c *Coordinator) broadcast(room *core.Room, from core.SessionID, env *core.Envelope) {
	data, err := env.Encode()
	if err != nil {
		log.Error().Err(err).Str("module", "app.coordinator").Msg("encode broadcast")
		return
	}
	res := room.Broadcast(from, data)
	if res.Dropped > 0 {
		metrics.DroppedDeliveries.Add(float64(res.Dropped))
	}
}
