package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "meet.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLookup(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.Lookup(ctx, "ghost"); !errors.Is(err, core.ErrNoMeta) {
		t.Fatalf("expected ErrNoMeta, got %v", err)
	}

	want := domain.RoomMeta{ID: "standup", Name: "Daily standup", Public: false, Capacity: 4}
	if err := s.CreateRoomMeta(ctx, want); err != nil {
		t.Fatalf("create meta: %v", err)
	}

	got, err := s.Lookup(ctx, "standup")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got != want {
		t.Fatalf("meta = %+v, want %+v", got, want)
	}
}

func TestCreateRoomMeta_DefaultCapacity(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.CreateRoomMeta(ctx, domain.RoomMeta{ID: "open", Public: true}); err != nil {
		t.Fatalf("create meta: %v", err)
	}
	got, err := s.Lookup(ctx, "open")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.Capacity != domain.DefaultRoomCapacity {
		t.Fatalf("capacity = %d, want default %d", got.Capacity, domain.DefaultRoomCapacity)
	}
}

func TestParticipationLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	joined := time.Now().Add(-90 * time.Second)
	if err := s.InsertJoin(ctx, "r1", "42", joined); err != nil {
		t.Fatalf("insert join: %v", err)
	}
	if err := s.MarkLeave(ctx, "r1", "42", time.Now()); err != nil {
		t.Fatalf("mark leave: %v", err)
	}

	var leftAt, duration int64
	err := s.db.QueryRow(
		`SELECT left_at, duration FROM room_participants WHERE room_id = ? AND user_id = ?`,
		"r1", "42",
	).Scan(&leftAt, &duration)
	if err != nil {
		t.Fatalf("query participation: %v", err)
	}
	if leftAt == 0 {
		t.Fatal("left_at not set")
	}
	if duration < 89 || duration > 92 {
		t.Fatalf("duration = %ds, want ~90", duration)
	}

	// Closing a pair with no open row is a no-op.
	if err := s.MarkLeave(ctx, "r1", "42", time.Now()); err != nil {
		t.Fatalf("second mark leave: %v", err)
	}
}

func TestAsyncRecorder_WritesThrough(t *testing.T) {
	s := openTestStore(t)
	rec := NewAsyncRecorder(s, 16)

	rec.RecordJoin("r1", "42")
	rec.RecordLeave("r1", "42")
	rec.Close()

	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM room_participants WHERE room_id = ? AND left_at IS NOT NULL`,
		"r1",
	).Scan(&count)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if count != 1 {
		t.Fatalf("closed participation rows = %d, want 1", count)
	}
}

func TestAsyncRecorder_FullQueueDropsNotBlocks(t *testing.T) {
	blocked := make(chan struct{})
	slow := &slowStore{release: blocked}
	rec := NewAsyncRecorder(slow, 1)

	// One record occupies the worker, one fills the buffer; the rest must
	// return immediately instead of backing up the caller.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			rec.RecordJoin("r1", "42")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RecordJoin blocked on a slow store")
	}
	close(blocked)
	rec.Close()
}

type slowStore struct {
	release chan struct{}
}

func (s *slowStore) InsertJoin(context.Context, domain.RoomID, domain.UserID, time.Time) error {
	<-s.release
	return nil
}

func (s *slowStore) MarkLeave(context.Context, domain.RoomID, domain.UserID, time.Time) error {
	<-s.release
	return nil
}
