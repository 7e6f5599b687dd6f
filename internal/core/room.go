package core

import (
	"errors"
	"sync"
	"time"

	"github.com/dkeye/Meet/internal/domain"
	"github.com/rs/zerolog/log"
)

var (
	ErrRoomFull    = errors.New("room full")
	ErrRoomDefunct = errors.New("room defunct")
)

// PublishResult reports delivery stats for one fan-out.
type PublishResult struct {
	SentTo  int
	Dropped int
}

// Room owns the membership set for one live room id. All membership mutations
// and the capacity check happen under one mutex, so a join is atomic with its
// existing-members snapshot. Once the last member leaves the room is defunct
// and never accepts members again; the registry drops it and a later join
// creates a fresh Room.
type Room struct {
	ID        domain.RoomID
	Capacity  int
	CreatedAt time.Time

	mu      sync.Mutex
	members map[SessionID]*Session
	order   []SessionID
	defunct bool
}

func NewRoom(id domain.RoomID, capacity int) *Room {
	if capacity <= 0 {
		capacity = domain.DefaultRoomCapacity
	}
	return &Room{
		ID:        id,
		Capacity:  capacity,
		CreatedAt: time.Now(),
		members:   make(map[SessionID]*Session),
	}
}

// Add inserts the session and returns the members present before it, in join
// order. The joiner never appears in its own snapshot.
func (r *Room) Add(s *Session) ([]MemberDTO, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.defunct {
		return nil, ErrRoomDefunct
	}
	if len(r.members) >= r.Capacity {
		return nil, ErrRoomFull
	}
	existing := make([]MemberDTO, 0, len(r.members))
	for _, sid := range r.order {
		existing = append(existing, r.members[sid].dto())
	}
	r.members[s.ID] = s
	r.order = append(r.order, s.ID)
	s.setRoom(r.ID)
	log.Info().Str("module", "core.room").Str("room", string(r.ID)).Str("sid", string(s.ID)).Int("members", len(r.members)).Msg("member added")
	return existing, nil
}

// Remove drops the session if present. It reports whether the session was a
// member and whether the room became empty (and therefore defunct).
func (r *Room) Remove(sid SessionID) (wasMember, empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.members[sid]
	if !ok {
		return false, false
	}
	delete(r.members, sid)
	for i, id := range r.order {
		if id == sid {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	s.clearRoom()
	if len(r.members) == 0 {
		r.defunct = true
	}
	log.Info().Str("module", "core.room").Str("room", string(r.ID)).Str("sid", string(sid)).Int("members", len(r.members)).Msg("member removed")
	return true, r.defunct
}

func (r *Room) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

func (r *Room) Snapshot() []MemberDTO {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]MemberDTO, 0, len(r.members))
	for _, sid := range r.order {
		out = append(out, r.members[sid].dto())
	}
	return out
}

// Broadcast delivers the frame to every member except from. Delivery is
// best-effort: a closed or slow-draining connection drops the frame.
func (r *Room) Broadcast(from SessionID, data Frame) PublishResult {
	r.mu.Lock()
	targets := make([]*Session, 0, len(r.members))
	for sid, m := range r.members {
		if sid != from {
			targets = append(targets, m)
		}
	}
	r.mu.Unlock()

	res := PublishResult{}
	for _, m := range targets {
		if err := m.Signal().TrySend(data); err != nil {
			res.Dropped++
			continue
		}
		res.SentTo++
	}
	log.Debug().Str("module", "core.room").Str("room", string(r.ID)).Str("from", string(from)).Int("sent_to", res.SentTo).Int("dropped", res.Dropped).Msg("broadcast")
	return res
}

// ForwardTo delivers the frame to the named member only. A missing target is
// an expected race, reported as false with no side effect.
func (r *Room) ForwardTo(target SessionID, data Frame) bool {
	r.mu.Lock()
	m, ok := r.members[target]
	r.mu.Unlock()
	if !ok {
		return false
	}
	return m.Signal().TrySend(data) == nil
}
