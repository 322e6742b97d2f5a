package memory

import (
	"testing"
	"time"

	"ai-canvas-be/pkg/canvas/state"
)

func TestStateRepositoryRoundTrip(t *testing.T) {
	repo := NewStateRepository(time.Hour)

	st := state.New("user-1", "thread-1")
	st.Collected["industry"] = "coaching"
	repo.Save(st)

	got, found := repo.Get("thread-1")
	if !found {
		t.Fatal("saved state not found")
	}
	if got != st {
		t.Error("Get must return the same state instance, not a copy")
	}

	if _, found := repo.Get("other-thread"); found {
		t.Error("unknown thread should not be found")
	}

	repo.Delete("thread-1")
	if _, found := repo.Get("thread-1"); found {
		t.Error("deleted state still present")
	}
}

func TestStateRepositoryExpiry(t *testing.T) {
	repo := NewStateRepository(20 * time.Millisecond)

	repo.Save(state.New("u", "t"))
	time.Sleep(50 * time.Millisecond)

	if _, found := repo.Get("t"); found {
		t.Error("state should have expired")
	}
}
