package store

import (
	"context"
	"time"

	"github.com/dkeye/Meet/internal/domain"
	"github.com/dkeye/Meet/internal/metrics"
	"github.com/rs/zerolog/log"
)

const recordTimeout = 5 * time.Second

// ParticipationStore is the subset of Store the recorder writes through.
type ParticipationStore interface {
	InsertJoin(ctx context.Context, roomID domain.RoomID, userID domain.UserID, at time.Time) error
	MarkLeave(ctx context.Context, roomID domain.RoomID, userID domain.UserID, at time.Time) error
}

type eventKind int

const (
	eventJoin eventKind = iota
	eventLeave
)

type event struct {
	kind   eventKind
	roomID domain.RoomID
	userID domain.UserID
	at     time.Time
}

// AsyncRecorder implements core.ParticipationRecorder. Records go through a
// buffered queue drained by one worker, so a slow or failing store never
// touches the routing path: a full queue drops the record and counts it.
type AsyncRecorder struct {
	store  ParticipationStore
	events chan event
	done   chan struct{}
}

func NewAsyncRecorder(store ParticipationStore, buffer int) *AsyncRecorder {
	if buffer <= 0 {
		buffer = 256
	}
	r := &AsyncRecorder{
		store:  store,
		events: make(chan event, buffer),
		done:   make(chan struct{}),
	}
	go r.run()
	return r
}

func (r *AsyncRecorder) RecordJoin(roomID domain.RoomID, userID domain.UserID) {
	r.enqueue(event{kind: eventJoin, roomID: roomID, userID: userID, at: time.Now()})
}

func (r *AsyncRecorder) RecordLeave(roomID domain.RoomID, userID domain.UserID) {
	r.enqueue(event{kind: eventLeave, roomID: roomID, userID: userID, at: time.Now()})
}

func (r *AsyncRecorder) enqueue(ev event) {
	select {
	case r.events <- ev:
	default:
		metrics.RecorderDrops.Inc()
		log.Warn().Str("module", "store.recorder").Str("room", string(ev.roomID)).Msg("recorder queue full, record dropped")
	}
}

// Close drains queued records and stops the worker.
func (r *AsyncRecorder) Close() {
	close(r.events)
	<-r.done
}

func (r *AsyncRecorder) run() {
	defer close(r.done)
	for ev := range r.events {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		var err error
		switch ev.kind {
		case eventJoin:
			err = r.store.InsertJoin(ctx, ev.roomID, ev.userID, ev.at)
		case eventLeave:
			err = r.store.MarkLeave(ctx, ev.roomID, ev.userID, ev.at)
		}
		cancel()
		if err != nil {
			log.Error().Err(err).Str("module", "store.recorder").Str("room", string(ev.roomID)).Str("user", string(ev.userID)).Msg("record participation")
		}
	}
}
