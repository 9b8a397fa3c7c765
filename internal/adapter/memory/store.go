package memory

import (
	"sync"

	"legislation-chat-bot/internal/domain"
)

// Store keeps one append-only transcript per session for the process
// lifetime. Transcripts are never trimmed or rewritten.
type Store struct {
	mu            sync.Mutex
	conversations map[string][]domain.Message
}

func NewStore() *Store {
	return &Store{
		conversations: make(map[string][]domain.Message),
	}
}

func (s *Store) Add(sessionID string, msg domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg.FunctionCall != nil {
		call := *msg.FunctionCall
		msg.FunctionCall = &call
	}
	s.conversations[sessionID] = append(s.conversations[sessionID], msg)
}

// Messages returns a deep copy of the full transcript in append order.
func (s *Store) Messages(sessionID string) []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.conversations[sessionID]
	if len(history) == 0 {
		return nil
	}
	res := make([]domain.Message, len(history))
	for i, msg := range history {
		if msg.FunctionCall != nil {
			call := *msg.FunctionCall
			msg.FunctionCall = &call
		}
		res[i] = msg
	}
	return res
}

func (s *Store) Exists(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.conversations[sessionID]
	return ok
}

// Len reports how many sessions have at least one turn.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conversations)
}
