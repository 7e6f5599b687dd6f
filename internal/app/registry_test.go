package app

import (
	"errors"
	"sync"
	"testing"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
)

func TestRegistryJoin_LazyCreateAndCapacity(t *testing.T) {
	reg := NewRegistry()

	if _, ok := reg.Find("r1"); ok {
		t.Fatal("room exists before first join")
	}

	a := core.NewSession(&fakeSignal{})
	room, existing, err := reg.Join(a, "r1", 2)
	if err != nil {
		t.Fatalf("join a: %v", err)
	}
	if len(existing) != 0 {
		t.Fatalf("first joiner sees %d existing members", len(existing))
	}
	if room.Capacity != 2 {
		t.Fatalf("capacity hint ignored: %d", room.Capacity)
	}

	b := core.NewSession(&fakeSignal{})
	if _, _, err := reg.Join(b, "r1", 2); err != nil {
		t.Fatalf("join b: %v", err)
	}
	c := core.NewSession(&fakeSignal{})
	if _, _, err := reg.Join(c, "r1", 2); !errors.Is(err, core.ErrRoomFull) {
		t.Fatalf("expected ErrRoomFull, got %v", err)
	}
}

func TestRegistryLeave_DeletesEmptyRoom(t *testing.T) {
	reg := NewRegistry()
	a := core.NewSession(&fakeSignal{})
	b := core.NewSession(&fakeSignal{})
	reg.Join(a, "r1", 0)
	reg.Join(b, "r1", 0)

	room, notify := reg.Leave(a)
	if room == nil || !notify {
		t.Fatalf("leave with remaining members: room=%v notify=%v", room, notify)
	}

	room, notify = reg.Leave(b)
	if notify {
		t.Fatal("last leaver owes no notification")
	}
	if _, ok := reg.Find("r1"); ok {
		t.Fatal("empty room still registered")
	}

	// Leaving twice is a no-op.
	if room, notify = reg.Leave(b); room != nil || notify {
		t.Fatalf("second leave reported room=%v notify=%v", room, notify)
	}
}

func TestRegistryJoin_RetriesPastDefunctRoom(t *testing.T) {
	reg := NewRegistry()
	a := core.NewSession(&fakeSignal{})
	reg.Join(a, "r1", 0)
	old, _ := reg.Find("r1")
	reg.Leave(a)

	b := core.NewSession(&fakeSignal{})
	room, _, err := reg.Join(b, "r1", 0)
	if err != nil {
		t.Fatalf("join after eviction: %v", err)
	}
	if room == old {
		t.Fatal("join landed on the defunct room instance")
	}
}

func TestRegistry_ConcurrentChurn(t *testing.T) {
	reg := NewRegistry()

	const workers = 8
	const iterations = 50
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			roomID := domain.RoomID("even")
			if w%2 == 1 {
				roomID = "odd"
			}
			for i := 0; i < iterations; i++ {
				s := core.NewSession(&fakeSignal{})
				if _, _, err := reg.Join(s, roomID, 100); err != nil {
					continue
				}
				reg.Leave(s)
			}
		}(w)
	}
	wg.Wait()

	// All sessions left, so no rooms may survive.
	if rooms := reg.List(); len(rooms) != 0 {
		t.Fatalf("registry retained %d empty rooms: %+v", len(rooms), rooms)
	}
}
