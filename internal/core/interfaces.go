package core

import (
	"context"
	"errors"

	"github.com/dkeye/Meet/internal/domain"
)

var (
	// ErrTokenInvalid means the credential could not be verified. Fatal to
	// the session presenting it.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrNoMeta means no stored metadata exists for a room id.
	ErrNoMeta = errors.New("no room metadata")
)

// IdentityVerifier resolves a credential token into a durable identity.
// Consumed during the auth handshake only, never on the routing path.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (*domain.Identity, error)
}

// ParticipationRecorder logs room join/leave history. Fire-and-forget:
// implementations must not block the caller and errors stay internal.
type ParticipationRecorder interface {
	RecordJoin(roomID domain.RoomID, userID domain.UserID)
	RecordLeave(roomID domain.RoomID, userID domain.UserID)
}

// RoomMetaSource serves stored room metadata, consulted at join time only.
// Returns ErrNoMeta when the room id has no stored record.
type RoomMetaSource interface {
	Lookup(ctx context.Context, id domain.RoomID) (domain.RoomMeta, error)
}
