package app

import (
	"errors"
	"sync"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/dkeye/Meet/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Registry is the single source of truth for live rooms. The outer map has
// its own lock; membership mutations happen under each room's lock, so
// unrelated rooms never serialize against each other.
type Registry struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*core.Room
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[domain.RoomID]*core.Room)}
}

// Join adds the session to the room, creating it lazily with the given
// capacity. The capacity check, the insert, and the existing-members snapshot
// are one atomic step on the room. A room that died between lookup and insert
// is evicted and the join retries against a fresh one.
func (r *Registry) Join(sess *core.Session, id domain.RoomID, capacity int) (*core.Room, []core.MemberDTO, error) {
	for {
		room := r.getOrCreate(id, capacity)
		existing, err := room.Add(sess)
		if errors.Is(err, core.ErrRoomDefunct) {
			r.evict(id, room)
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		return room, existing, nil
	}
}

// Leave removes the session from its current room, deleting the room when it
// empties. It reports the room and whether remaining members are owed a
// notification (false when the room no longer exists).
func (r *Registry) Leave(sess *core.Session) (*core.Room, bool) {
	id, ok := sess.RoomID()
	if !ok {
		return nil, false
	}
	room, ok := r.Find(id)
	if !ok {
		return nil, false
	}
	wasMember, empty := room.Remove(sess.ID)
	if empty {
		r.evict(id, room)
	}
	return room, wasMember && !empty
}

func (r *Registry) Find(id domain.RoomID) (*core.Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[id]
	return room, ok
}

// RoomInfo is a read-only registry view for the REST listing.
type RoomInfo struct {
	ID          domain.RoomID `json:"roomId"`
	MemberCount int           `json:"memberCount"`
	Capacity    int           `json:"capacity"`
}

func (r *Registry) List() []RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]RoomInfo, 0, len(r.rooms))
	for id, room := range r.rooms {
		out = append(out, RoomInfo{ID: id, MemberCount: room.MemberCount(), Capacity: room.Capacity})
	}
	return out
}

func (r *Registry) getOrCreate(id domain.RoomID, capacity int) *core.Room {
	r.mu.RLock()
	room, ok := r.rooms[id]
	r.mu.RUnlock()
	if ok {
		return room
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if room, ok = r.rooms[id]; ok {
		return room
	}
	room = core.NewRoom(id, capacity)
	r.rooms[id] = room
	metrics.ActiveRooms.Inc()
	log.Info().Str("module", "app.registry").Str("room", string(id)).Int("capacity", room.Capacity).Msg("room created")
	return room
}

// evict removes the room only if the map still holds that exact instance, so
// a fresh room re-created under the same id is never torn down by a stale
// leave.
func (r *Registry) evict(id domain.RoomID, room *core.Room) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.rooms[id]; ok && cur == room {
		delete(r.rooms, id)
		metrics.ActiveRooms.Dec()
		log.Info().Str("module", "app.registry").Str("room", string(id)).Msg("room removed")
	}
}
