// Package progress persists per-capsule learning progress: the set of
// flashcards marked known and the best quiz score.
package progress

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/hpungsan/pocket/internal/kv"
	"github.com/hpungsan/pocket/internal/logger"
)

// KeyPrefix prefixes progress record keys.
const KeyPrefix = "pc_progress_"

// Key returns the store key of the progress record for capsuleID.
func Key(capsuleID string) string {
	return KeyPrefix + capsuleID
}

// MaxScore is the highest quiz score (percent).
const MaxScore = 100

// Record is the learning progress of one capsule.
type Record struct {
	BestScore       int `json:"bestScore"`
	KnownFlashcards Set `json:"knownFlashcards"`
}

// Zero returns the record of a capsule that was never studied.
func Zero() Record {
	return Record{KnownFlashcards: NewSet()}
}

// Clone returns a copy that shares no state with r.
func (r Record) Clone() Record {
	out := Record{BestScore: r.BestScore, KnownFlashcards: NewSet()}
	if r.KnownFlashcards != nil {
		out.KnownFlashcards = r.KnownFlashcards.Clone()
	}
	return out
}

// Change is delivered to observers after a record is saved.
type Change struct {
	CapsuleID string
	Record    Record
}

// Observer receives progress changes.
type Observer func(Change)

type subscription struct {
	id int
	fn Observer
}

// Store owns progress records in the key-value store.
type Store struct {
	kv     kv.Store
	logger *slog.Logger

	mu        sync.RWMutex
	observers []subscription
	nextID    int
}

// NewStore creates a progress store over s.
func NewStore(s kv.Store, l *slog.Logger) *Store {
	return &Store{
		kv:     s,
		logger: logger.OrDefault(l).With("component", "progress"),
	}
}

// Load returns the progress of capsuleID. A missing or unparsable record
// yields the zero record.
func (s *Store) Load(capsuleID string) (Record, error) {
	raw, ok, err := s.kv.Get(Key(capsuleID))
	if err != nil {
		return Record{}, err
	}
	if !ok {
		return Zero(), nil
	}

	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		s.logger.Warn("ignoring unparsable progress record", "capsule_id", capsuleID, "error", err)
		return Zero(), nil
	}
	if rec.KnownFlashcards == nil {
		rec.KnownFlashcards = NewSet()
	}
	rec.BestScore = clampScore(rec.BestScore)
	return rec, nil
}

// Save overwrites the progress of capsuleID, then notifies observers.
func (s *Store) Save(capsuleID string, rec Record) error {
	rec = rec.Clone()
	rec.BestScore = clampScore(rec.BestScore)

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := s.kv.Set(Key(capsuleID), string(data)); err != nil {
		return err
	}

	s.notify(Change{CapsuleID: capsuleID, Record: rec})
	return nil
}

// Delete removes the progress of capsuleID. No-op when absent.
func (s *Store) Delete(capsuleID string) error {
	return s.kv.Delete(Key(capsuleID))
}

// Subscribe registers fn to run after every Save, in registration order.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn Observer) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.observers = append(s.observers, subscription{id: id, fn: fn})
	s.logger.Debug("registered progress observer", "observer_count", len(s.observers))

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.observers {
			if sub.id == id {
				s.observers = append(s.observers[:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) notify(c Change) {
	s.mu.RLock()
	observers := make([]subscription, len(s.observers))
	copy(observers, s.observers)
	s.mu.RUnlock()

	s.logger.Debug("progress saved",
		"capsule_id", c.CapsuleID,
		"best_score", c.Record.BestScore,
		"known", c.Record.KnownFlashcards.Len(),
		"observer_count", len(observers))

	for _, sub := range observers {
		sub.fn(Change{CapsuleID: c.CapsuleID, Record: c.Record.Clone()})
	}
}

func clampScore(score int) int {
	return max(0, min(score, MaxScore))
}
