package core

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/dkeye/Meet/internal/domain"
	"github.com/google/uuid"
)

type SessionID string

var ErrIdentityBound = errors.New("identity already bound")

// SignalConnection abstracts the outbound half of one transport connection.
// Owned by the adapter; the adapter must Close() it. TrySend never blocks.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// MemberDTO is a read-only member view for snapshots and APIs.
type MemberDTO struct {
	ID       string `json:"id"`
	UserName string `json:"userName"`
}

// Session is the server-side state for one live connection. It references its
// room by id only; the registry map is what keeps rooms alive. All fields
// behind mu may be read from other sessions' routing paths (snapshots,
// broadcast stamping), so access goes through the accessors.
type Session struct {
	ID     SessionID
	signal SignalConnection

	closed atomic.Bool

	mu       sync.Mutex
	identity *domain.Identity
	name     string
	roomID   domain.RoomID
}

func NewSession(signal SignalConnection) *Session {
	id := uuid.NewString()
	return &Session{
		ID:     SessionID(id),
		signal: signal,
		name:   "guest-" + id[:8],
	}
}

func (s *Session) Signal() SignalConnection { return s.signal }

// MarkClosed flips the session into its terminal state. Only the first caller
// gets true, which keeps the disconnect path idempotent.
func (s *Session) MarkClosed() bool {
	return s.closed.CompareAndSwap(false, true)
}

func (s *Session) IsClosed() bool { return s.closed.Load() }

func (s *Session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

func (s *Session) SetName(name string) error {
	if err := domain.ValidateDisplayName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
	return nil
}

// BindIdentity attaches a verified identity. At most one per session; a second
// bind fails and leaves the first untouched.
func (s *Session) BindIdentity(id *domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity != nil {
		return ErrIdentityBound
	}
	s.identity = id
	if id.DisplayName != "" {
		s.name = id.DisplayName
	}
	return nil
}

func (s *Session) Identity() (*domain.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity, s.identity != nil
}

func (s *Session) RoomID() (domain.RoomID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roomID, s.roomID != ""
}

func (s *Session) setRoom(id domain.RoomID) {
	s.mu.Lock()
	s.roomID = id
	s.mu.Unlock()
}

func (s *Session) clearRoom() {
	s.setRoom("")
}

func (s *Session) dto() MemberDTO {
	s.mu.Lock()
	defer s.mu.Unlock()
	return MemberDTO{ID: string(s.ID), UserName: s.name}
}
