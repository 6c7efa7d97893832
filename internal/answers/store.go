package answers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
)

// Store is the single source of truth for the session while the interview
// screen is open. Updates are serialized; every update sees the result of
// the one before it. The held Session is never mutated in place, so a
// Snapshot stays valid after later edits.
type Store struct {
	mu      sync.Mutex
	session Session
	logger  *slog.Logger
}

// NewStore returns a store holding the placeholder session.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{session: placeholder(), logger: logger}
}

// Initialize replaces the session with one built from payload. An absent or
// malformed payload leaves a single empty placeholder entry and logs a
// warning. It reports whether the payload was used.
func (s *Store) Initialize(payload json.RawMessage) bool {
	session, err := ParseEntries(payload)
	if err != nil {
		attrs := []any{"error", err}
		var idErr *IdentifierError
		if errors.As(err, &idErr) {
			attrs = append(attrs, "identifier", idErr.Value, "identifier_type", idErr.Type())
		}
		s.logger.Warn("questions data is missing or not in correct format", attrs...)
		session = placeholder()
	}

	s.mu.Lock()
	s.session = session
	s.mu.Unlock()

	return err == nil
}

// SetAnswer replaces the answer for number. Unknown numbers are ignored and
// SetAnswer reports false.
func (s *Store) SetAnswer(number Number, text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, qa := range s.session {
		if qa.Number == number {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	next := s.session.Clone()
	next[idx].Answer = text
	s.session = next
	return true
}

// Snapshot returns a copy of the current session.
func (s *Store) Snapshot() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Clone()
}

// Get returns the entry for number.
func (s *Store) Get(number Number) (QuestionAnswer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Find(number)
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.session)
}
