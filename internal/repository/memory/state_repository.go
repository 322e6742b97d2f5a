package memory

import (
	"time"

	"ai-canvas-be/pkg/canvas/state"

	"github.com/patrickmn/go-cache"
)

// StateRepository keeps live conversation states in memory, keyed by
// thread ID. Expired states are rebuilt from the database on the next
// message, so eviction is safe.
type StateRepository struct {
	cache *cache.Cache
}

func NewStateRepository(ttl time.Duration) *StateRepository {
	c := cache.New(ttl, 10*time.Minute)
	return &StateRepository{
		cache: c,
	}
}

func (r *StateRepository) Save(st *state.ConversationState) {
	r.cache.Set(st.ThreadID, st, cache.DefaultExpiration)
}

func (r *StateRepository) Get(threadID string) (*state.ConversationState, bool) {
	if x, found := r.cache.Get(threadID); found {
		return x.(*state.ConversationState), true
	}
	return nil, false
}

func (r *StateRepository) Delete(threadID string) {
	r.cache.Delete(threadID)
}
