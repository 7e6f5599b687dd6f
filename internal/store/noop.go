package store

import (
	"context"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
)

// NoopRecorder discards participation records. Used when no database is
// configured.
type NoopRecorder struct{}

func (NoopRecorder) RecordJoin(domain.RoomID, domain.UserID)  {}
func (NoopRecorder) RecordLeave(domain.RoomID, domain.UserID) {}

// OpenMetaSource knows no rooms, so every join falls back to an open public
// room with the default capacity.
type OpenMetaSource struct{}

func (OpenMetaSource) Lookup(context.Context, domain.RoomID) (domain.RoomMeta, error) {
	return domain.RoomMeta{}, core.ErrNoMeta
}
