// Package store persists room metadata and participation history in SQLite
// and provides the async recorder the coordinator consumes fire-and-forget.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS rooms (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	room_id TEXT UNIQUE NOT NULL,
	name TEXT NOT NULL DEFAULT '',
	is_public INTEGER NOT NULL DEFAULT 1,
	max_participants INTEGER NOT NULL DEFAULT 10,
	created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS room_participants (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	room_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	joined_at INTEGER NOT NULL,
	left_at INTEGER,
	duration INTEGER
);
CREATE INDEX IF NOT EXISTS idx_participants_open
	ON room_participants (room_id, user_id) WHERE left_at IS NULL;
`

// Store is a SQLite-backed metadata and history store. Timestamps are unix
// milliseconds UTC.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Lookup implements core.RoomMetaSource. An unknown room id is core.ErrNoMeta.
func (s *Store) Lookup(ctx context.Context, id domain.RoomID) (domain.RoomMeta, error) {
	var meta domain.RoomMeta
	var public int
	err := s.db.QueryRowContext(ctx,
		`SELECT room_id, name, is_public, max_participants FROM rooms WHERE room_id = ?`,
		string(id),
	).Scan(&meta.ID, &meta.Name, &public, &meta.Capacity)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.RoomMeta{}, core.ErrNoMeta
	}
	if err != nil {
		return domain.RoomMeta{}, fmt.Errorf("lookup room %s: %w", id, err)
	}
	meta.Public = public != 0
	return meta, nil
}

// CreateRoomMeta inserts a metadata record; tooling and tests use it, the
// coordinator only reads.
func (s *Store) CreateRoomMeta(ctx context.Context, meta domain.RoomMeta) error {
	public := 0
	if meta.Public {
		public = 1
	}
	capacity := meta.Capacity
	if capacity <= 0 {
		capacity = domain.DefaultRoomCapacity
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO rooms (room_id, name, is_public, max_participants, created_at) VALUES (?, ?, ?, ?, ?)`,
		string(meta.ID), meta.Name, public, capacity, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("create room meta %s: %w", meta.ID, err)
	}
	return nil
}

// InsertJoin opens a participation row.
func (s *Store) InsertJoin(ctx context.Context, roomID domain.RoomID, userID domain.UserID, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO room_participants (room_id, user_id, joined_at) VALUES (?, ?, ?)`,
		string(roomID), string(userID), at.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert join %s/%s: %w", roomID, userID, err)
	}
	return nil
}

// MarkLeave closes the most recent open participation row for the pair,
// recording the departure time and the stay duration in seconds. Closing a
// pair with no open row is a no-op.
func (s *Store) MarkLeave(ctx context.Context, roomID domain.RoomID, userID domain.UserID, at time.Time) error {
	millis := at.UTC().UnixMilli()
	_, err := s.db.ExecContext(ctx,
		`UPDATE room_participants SET left_at = ?, duration = (? - joined_at) / 1000
		 WHERE id = (
			SELECT id FROM room_participants
			WHERE room_id = ? AND user_id = ? AND left_at IS NULL
			ORDER BY joined_at DESC LIMIT 1
		 )`,
		millis, millis, string(roomID), string(userID),
	)
	if err != nil {
		return fmt.Errorf("mark leave %s/%s: %w", roomID, userID, err)
	}
	return nil
}
