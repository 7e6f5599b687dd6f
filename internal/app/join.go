package app

import (
	"context"
	"errors"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/rs/zerolog/log"
)

// handleJoinRoom drives the registry join. Room metadata (capacity,
// visibility) is consulted once here; an id with no stored record behaves as
// an open public room. On any failure the joiner gets a typed error and its
// session state is unchanged.
func (c *Coordinator) handleJoinRoom(ctx context.Context, sess *core.Session, env *core.Envelope) {
	if env.RoomID == "" {
		c.sendError(sess, core.CodeBadEnvelope, "missing roomId")
		return
	}
	if _, ok := sess.RoomID(); ok {
		c.sendError(sess, core.CodeAlreadyInRoom, "session already joined a room")
		return
	}

	meta, err := c.Meta.Lookup(ctx, env.RoomID)
	if err != nil {
		if !errors.Is(err, core.ErrNoMeta) {
			log.Warn().Err(err).Str("module", "app.join").Str("room", string(env.RoomID)).Msg("metadata lookup failed, treating room as open")
		}
		meta = domain.OpenRoom(env.RoomID)
	}

	ident, authed := sess.Identity()
	if !meta.Public && !authed {
		c.sendError(sess, core.CodeRoomPrivate, "room requires authentication")
		return
	}
	room, existing, err := c.Registry.Join(sess, env.RoomID, meta.Capacity)
	if err != nil {
		if errors.Is(err, core.ErrRoomFull) {
			c.sendError(sess, core.CodeRoomFull, "room is at capacity")
			return
		}
		log.Error().Err(err).Str("module", "app.join").Str("room", string(env.RoomID)).Msg("join failed")
		c.sendError(sess, core.CodeBadEnvelope, "join failed")
		return
	}
	if !authed && env.UserName != "" {
		// Client-supplied label, applied only once membership is settled so
		// a rejected join leaves the session untouched. An invalid name
		// keeps the generated placeholder.
		if err := sess.SetName(env.UserName); err != nil {
			log.Debug().Err(err).Str("module", "app.join").Str("sid", string(sess.ID)).Msg("rejected display name")
		}
	}
	log.Info().Str("module", "app.join").Str("sid", string(sess.ID)).Str("room", string(room.ID)).Int("existing", len(existing)).Msg("joined room")

	c.send(sess, &core.Envelope{
		Type:     core.TypeRoomJoined,
		RoomID:   room.ID,
		UserID:   string(sess.ID),
		Existing: existing,
		Capacity: room.Capacity,
	})
	c.broadcast(room, sess.ID, &core.Envelope{
		Type:     core.TypeUserJoined,
		UserID:   string(sess.ID),
		UserName: sess.Name(),
	})

	if authed {
		c.Recorder.RecordJoin(room.ID, ident.ID)
	}
}
