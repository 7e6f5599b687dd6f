package domain

import "time"

type RoomID string

// DefaultRoomCapacity mirrors the max_participants default in room metadata.
const DefaultRoomCapacity = 10

// RoomMeta is the read-only metadata consulted at join time. It describes a
// room that may exist in storage; live membership is owned by the registry.
type RoomMeta struct {
	ID       RoomID `json:"roomId"`
	Name     string `json:"name,omitempty"`
	Public   bool   `json:"isPublic"`
	Capacity int    `json:"maxParticipants"`
}

// OpenRoom is the metadata used when no stored record exists for a room id:
// anyone may join, default capacity.
func OpenRoom(id RoomID) RoomMeta {
	return RoomMeta{ID: id, Public: true, Capacity: DefaultRoomCapacity}
}

// Participation is one join/leave record for the history log.
type Participation struct {
	RoomID   RoomID
	UserID   UserID
	JoinedAt time.Time
	LeftAt   time.Time
}
