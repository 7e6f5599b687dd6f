package app

import (
	"context"

	"github.com/dkeye/Meet/internal/core"
	"github.com/rs/zerolog/log"
)

// handleAuthenticate runs the handshake that upgrades an anonymous session to
// an identified one. An invalid credential is fatal: error envelope, then the
// connection is closed and the transport's disconnect path finishes cleanup.
// A session that already holds an identity keeps it; the duplicate attempt
// is dropped.
func (c *Coordinator) handleAuthenticate(ctx context.Context, sess *core.Session, env *core.Envelope) {
	if _, ok := sess.Identity(); ok {
		log.Warn().Str("module", "app.auth").Str("sid", string(sess.ID)).Msg("duplicate authenticate dropped")
		return
	}

	ident, err := c.Verifier.Verify(ctx, env.Token)
	if err != nil {
		log.Info().Err(err).Str("module", "app.auth").Str("sid", string(sess.ID)).Msg("authentication failed")
		c.sendError(sess, core.CodeAuthFailed, "invalid credentials")
		sess.Signal().Close()
		return
	}

	if err := sess.BindIdentity(ident); err != nil {
		log.Warn().Err(err).Str("module", "app.auth").Str("sid", string(sess.ID)).Msg("bind identity")
		return
	}
	log.Info().Str("module", "app.auth").Str("sid", string(sess.ID)).Str("user", string(ident.ID)).Msg("session authenticated")

	c.send(sess, &core.Envelope{
		Type:     core.TypeAuthOK,
		UserID:   string(sess.ID),
		UserName: sess.Name(),
	})
}
