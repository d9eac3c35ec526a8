package session

import "sync"

// State is what the bot expects the user to send next. One value per
// identity; sessions are not persisted across restarts.
type State int

const (
	StateIdle State = iota
	StateAwaitingTypefullyKey
	StateAwaitingOpenaiKey
	StateAwaitingDeleteConfirmation
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingTypefullyKey:
		return "awaiting_typefully_key"
	case StateAwaitingOpenaiKey:
		return "awaiting_openai_key"
	case StateAwaitingDeleteConfirmation:
		return "awaiting_delete_confirmation"
	default:
		return "unknown"
	}
}

// Store holds the conversation state per identity. Never-seen identities are
// idle.
type Store interface {
	Get(telegramId int64) State
	Set(telegramId int64, state State)
}

type MemoryStore struct {
	states sync.Map
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get(telegramId int64) State {
	if state, ok := s.states.Load(telegramId); ok {
		return state.(State)
	}
	return StateIdle
}

func (s *MemoryStore) Set(telegramId int64, state State) {
	if state == StateIdle {
		s.states.Delete(telegramId)
		return
	}
	s.states.Store(telegramId, state)
}
