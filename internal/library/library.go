// Package library stores capsule records and the summary index that lists
// them, keeping the two consistent.
package library

import (
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/hpungsan/pocket/internal/capsule"
	"github.com/hpungsan/pocket/internal/errors"
	"github.com/hpungsan/pocket/internal/kv"
	"github.com/hpungsan/pocket/internal/logger"
	"github.com/hpungsan/pocket/internal/progress"
)

// Repository owns capsule records and the index.
//
// Every mutation reads the full index, changes it in memory and writes it
// back. There is no locking: two concurrent saves race and the later write
// wins, index included.
type Repository struct {
	kv       kv.Store
	progress *progress.Store
	logger   *slog.Logger

	now   func() time.Time
	newID func() string
}

// New creates a repository over s. Deleting a capsule also deletes its
// record in prog.
func New(s kv.Store, prog *progress.Store, l *slog.Logger) *Repository {
	return &Repository{
		kv:       s,
		progress: prog,
		logger:   logger.OrDefault(l).With("component", "library"),
		now:      time.Now,
		newID:    NewID,
	}
}

// Progress returns the progress store capsule deletes cascade into.
func (r *Repository) Progress() *progress.Store {
	return r.progress
}

// ListIndex returns the index, most recently created first. A missing or
// unparsable index is returned as empty.
func (r *Repository) ListIndex() ([]capsule.IndexEntry, error) {
	raw, ok, err := r.kv.Get(IndexKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []capsule.IndexEntry{}, nil
	}

	var idx []capsule.IndexEntry
	if err := json.Unmarshal([]byte(raw), &idx); err != nil {
		r.logger.Warn("ignoring unparsable index", "error", err)
		return []capsule.IndexEntry{}, nil
	}
	if idx == nil {
		idx = []capsule.IndexEntry{}
	}
	return idx, nil
}

// HasIndex reports whether an index has ever been written.
func (r *Repository) HasIndex() (bool, error) {
	_, ok, err := r.kv.Get(IndexKey)
	return ok, err
}

// Load returns the capsule stored under id. Missing and unparsable records
// are both NOT_FOUND.
func (r *Repository) Load(id string) (*capsule.Capsule, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	raw, ok, err := r.kv.Get(CapsuleKey(id))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.NewNotFound(id)
	}

	c, err := decodeCapsule(raw)
	if err != nil {
		r.logger.Warn("ignoring unparsable capsule record", "id", id, "error", err)
		return nil, errors.NewNotFound(id)
	}
	c.ID = id
	return c, nil
}

// Exists reports whether a loadable capsule is stored under id.
func (r *Repository) Exists(id string) (bool, error) {
	_, err := r.Load(id)
	if errors.Is(err, errors.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Save validates and persists c, returning its id.
//
// A blank id is replaced with a new one, UpdatedAt is stamped with the
// current time, and the index entry is updated in place (keeping its
// position) or prepended for a new id. Both fields are written back into c.
//
// When the store supports batches the record and index are written
// atomically. Otherwise the record is written first; a crash before the
// index write leaves an unindexed record, which Repair picks up.
func (r *Repository) Save(c *capsule.Capsule) (string, error) {
	if err := capsule.Validate(c); err != nil {
		return "", err
	}

	idx, err := r.ListIndex()
	if err != nil {
		return "", err
	}

	created := false
	if strings.TrimSpace(c.ID) == "" {
		c.ID = r.newID()
		created = true
	}
	c.UpdatedAt = r.now().UTC().Truncate(time.Millisecond)
	c.EnsureSlices()

	record, err := json.Marshal(c)
	if err != nil {
		return "", errors.NewInternal(err)
	}

	entry := c.ToIndexEntry()
	found := false
	for i := range idx {
		if idx[i].ID == c.ID {
			idx[i] = entry
			found = true
			break
		}
	}
	if !found {
		idx = append([]capsule.IndexEntry{entry}, idx...)
	}

	index, err := json.Marshal(idx)
	if err != nil {
		return "", errors.NewInternal(err)
	}

	if err := kv.Apply(r.kv,
		kv.SetOp(CapsuleKey(c.ID), string(record)),
		kv.SetOp(IndexKey, string(index)),
	); err != nil {
		return "", err
	}

	r.logger.Debug("capsule saved", "id", c.ID, "created", created, "indexed", len(idx))
	return c.ID, nil
}

// Delete removes the capsule record, its index entry and its progress.
// Deleting an unknown id is a no-op.
func (r *Repository) Delete(id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.NewInvalidRequest("id is required")
	}

	idx, err := r.ListIndex()
	if err != nil {
		return err
	}

	filtered := make([]capsule.IndexEntry, 0, len(idx))
	for _, e := range idx {
		if e.ID != id {
			filtered = append(filtered, e)
		}
	}

	ops := []kv.Op{kv.DeleteOp(CapsuleKey(id))}
	if len(filtered) != len(idx) {
		index, err := json.Marshal(filtered)
		if err != nil {
			return errors.NewInternal(err)
		}
		ops = append(ops, kv.SetOp(IndexKey, string(index)))
	}
	if err := kv.Apply(r.kv, ops...); err != nil {
		return err
	}

	if r.progress != nil {
		if err := r.progress.Delete(id); err != nil {
			return err
		}
	}

	r.logger.Debug("capsule deleted", "id", id)
	return nil
}

// decodeCapsule parses a stored capsule record.
func decodeCapsule(raw string) (*capsule.Capsule, error) {
	var c capsule.Capsule
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, err
	}
	c.EnsureSlices()
	return &c, nil
}
