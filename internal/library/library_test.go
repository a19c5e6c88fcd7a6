package library

import (
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/pocket/internal/capsule"
	"github.com/hpungsan/pocket/internal/errors"
	"github.com/hpungsan/pocket/internal/kv"
	"github.com/hpungsan/pocket/internal/logger"
	"github.com/hpungsan/pocket/internal/progress"
)

var fixedNow = time.Date(2026, 3, 14, 9, 26, 53, 589_793_238, time.UTC)

func newRepo(t *testing.T, s kv.Store) *Repository {
	t.Helper()
	prog := progress.NewStore(s, logger.Discard())
	r := New(s, prog, logger.Discard())
	r.now = func() time.Time { return fixedNow }
	return r
}

func sample(title string) *capsule.Capsule {
	return &capsule.Capsule{
		Meta:  capsule.Meta{Title: title, Subject: "Web", Level: capsule.LevelBeginner},
		Notes: []string{"first note"},
		Flashcards: []capsule.Flashcard{
			{Front: "front", Back: "back"},
		},
		Quiz: []capsule.Question{
			{Q: "pick b", Choices: [4]string{"a", "b", "c", "d"}, Correct: 1, Explain: "b"},
		},
	}
}

func indexIDs(t *testing.T, r *Repository) []string {
	t.Helper()
	idx, err := r.ListIndex()
	require.NoError(t, err)
	ids := make([]string, len(idx))
	for i, e := range idx {
		ids[i] = e.ID
	}
	return ids
}

func TestSave_AssignsIDAndTimestamp(t *testing.T) {
	r := newRepo(t, kv.NewMemory())

	c := sample("HTML")
	id, err := r.Save(c)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	require.Len(t, id, 26)
	require.Equal(t, id, c.ID)
	require.Equal(t, fixedNow.Truncate(time.Millisecond), c.UpdatedAt)
}

func TestSave_KeepsGivenID(t *testing.T) {
	r := newRepo(t, kv.NewMemory())

	c := sample("HTML")
	c.ID = "custom-id"
	id, err := r.Save(c)
	require.NoError(t, err)
	require.Equal(t, "custom-id", id)

	loaded, err := r.Load("custom-id")
	require.NoError(t, err)
	require.Equal(t, "HTML", loaded.Meta.Title)
}

func TestSave_LoadRoundTrip(t *testing.T) {
	r := newRepo(t, kv.NewMemory())

	c := sample("HTML")
	c.Meta.Description = "tags and attributes"
	c.Notes = append(c.Notes, "second note")
	id, err := r.Save(c)
	require.NoError(t, err)

	loaded, err := r.Load(id)
	require.NoError(t, err)
	require.Equal(t, c, loaded)
}

func TestSave_RefreshesUpdatedAt(t *testing.T) {
	r := newRepo(t, kv.NewMemory())

	c := sample("HTML")
	c.UpdatedAt = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := r.Save(c)
	require.NoError(t, err)
	require.Equal(t, fixedNow.Truncate(time.Millisecond), c.UpdatedAt)

	later := fixedNow.Add(time.Hour)
	r.now = func() time.Time { return later }
	_, err = r.Save(c)
	require.NoError(t, err)

	idx, err := r.ListIndex()
	require.NoError(t, err)
	require.Len(t, idx, 1)
	require.Equal(t, later.Truncate(time.Millisecond), idx[0].UpdatedAt)
}

func TestSave_NilSlicesStoredAsArrays(t *testing.T) {
	s := kv.NewMemory()
	r := newRepo(t, s)

	c := &capsule.Capsule{
		Meta:  capsule.Meta{Title: "Notes only"},
		Notes: []string{"one"},
	}
	id, err := r.Save(c)
	require.NoError(t, err)

	raw, ok, err := s.Get(CapsuleKey(id))
	require.NoError(t, err)
	require.True(t, ok)
	require.Contains(t, raw, `"flashcards":[]`)
	require.Contains(t, raw, `"quiz":[]`)
}

func TestSave_Ordering(t *testing.T) {
	r := newRepo(t, kv.NewMemory())

	a := sample("A")
	b := sample("B")
	c := sample("C")
	for _, cp := range []*capsule.Capsule{a, b, c} {
		_, err := r.Save(cp)
		require.NoError(t, err)
	}

	// New ids go to the front
	require.Equal(t, []string{c.ID, b.ID, a.ID}, indexIDs(t, r))

	// Existing ids keep their position
	b.Meta.Title = "B renamed"
	_, err := r.Save(b)
	require.NoError(t, err)
	require.Equal(t, []string{c.ID, b.ID, a.ID}, indexIDs(t, r))

	idx, err := r.ListIndex()
	require.NoError(t, err)
	require.Equal(t, "B renamed", idx[1].Title)
}

func TestSave_EmptyCapsuleRejected(t *testing.T) {
	s := kv.NewMemory()
	r := newRepo(t, s)

	c := &capsule.Capsule{
		Meta:       capsule.Meta{Title: "X"},
		Notes:      []string{},
		Flashcards: []capsule.Flashcard{},
		Quiz:       []capsule.Question{},
	}
	_, err := r.Save(c)
	require.True(t, errors.Is(err, errors.ErrEmptyCapsule), "got %v", err)
	require.Empty(t, c.ID)
	require.Equal(t, 0, s.Len())

	c = sample("  ")
	_, err = r.Save(c)
	require.True(t, errors.Is(err, errors.ErrEmptyCapsule), "got %v", err)
}

func TestSave_InvalidFields(t *testing.T) {
	r := newRepo(t, kv.NewMemory())

	c := sample("HTML")
	c.Meta.Level = "Expert"
	_, err := r.Save(c)
	require.True(t, errors.Is(err, errors.ErrInvalidRequest), "got %v", err)

	c = sample("HTML")
	c.Quiz[0].Correct = 4
	_, err = r.Save(c)
	require.True(t, errors.Is(err, errors.ErrInvalidRequest), "got %v", err)
}

func TestLoad_NotFound(t *testing.T) {
	s := kv.NewMemory()
	r := newRepo(t, s)

	_, err := r.Load("nope")
	require.True(t, errors.Is(err, errors.ErrNotFound))

	require.NoError(t, s.Set(CapsuleKey("broken"), "{not json"))
	_, err = r.Load("broken")
	require.True(t, errors.Is(err, errors.ErrNotFound))

	_, err = r.Load(" ")
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestExists(t *testing.T) {
	r := newRepo(t, kv.NewMemory())

	id, err := r.Save(sample("HTML"))
	require.NoError(t, err)

	ok, err := r.Exists(id)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = r.Exists("missing")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestListIndex_MissingOrCorrupt(t *testing.T) {
	s := kv.NewMemory()
	r := newRepo(t, s)

	idx, err := r.ListIndex()
	require.NoError(t, err)
	require.NotNil(t, idx)
	require.Empty(t, idx)

	has, err := r.HasIndex()
	require.NoError(t, err)
	require.False(t, has)

	require.NoError(t, s.Set(IndexKey, "garbage"))
	idx, err = r.ListIndex()
	require.NoError(t, err)
	require.Empty(t, idx)

	require.NoError(t, s.Set(IndexKey, "null"))
	idx, err = r.ListIndex()
	require.NoError(t, err)
	require.NotNil(t, idx)
}

func TestDelete_Cascades(t *testing.T) {
	r := newRepo(t, kv.NewMemory())

	keep := sample("Keep")
	_, err := r.Save(keep)
	require.NoError(t, err)
	gone := sample("Gone")
	_, err = r.Save(gone)
	require.NoError(t, err)

	known := progress.NewSet()
	known.Add(0)
	require.NoError(t, r.Progress().Save(gone.ID, progress.Record{BestScore: 80, KnownFlashcards: known}))

	require.NoError(t, r.Delete(gone.ID))

	_, err = r.Load(gone.ID)
	require.True(t, errors.Is(err, errors.ErrNotFound))
	require.Equal(t, []string{keep.ID}, indexIDs(t, r))

	rec, err := r.Progress().Load(gone.ID)
	require.NoError(t, err)
	require.Equal(t, progress.Zero(), rec)
}

func TestDelete_UnknownIsNoop(t *testing.T) {
	s := kv.NewMemory()
	r := newRepo(t, s)

	_, err := r.Save(sample("HTML"))
	require.NoError(t, err)
	before, _, _ := s.Get(IndexKey)

	require.NoError(t, r.Delete("missing"))

	after, _, _ := s.Get(IndexKey)
	require.Equal(t, before, after)
	require.Equal(t, 2, s.Len())
}

// sequentialStore hides the Batcher implementation of the wrapped store.
type sequentialStore struct {
	kv.Store
}

func TestIndexConsistency(t *testing.T) {
	sqlite, err := kv.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	stores := map[string]kv.Store{
		"memory":     kv.NewMemory(),
		"sqlite":     sqlite,
		"sequential": sequentialStore{kv.NewMemory()},
	}

	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			r := newRepo(t, s)

			var live []string
			for i := 0; i < 12; i++ {
				c := sample(fmt.Sprintf("capsule %d", i))
				id, err := r.Save(c)
				require.NoError(t, err)
				live = append(live, id)

				// Resave every third capsule and delete every fourth
				if i%3 == 0 {
					c.Notes = append(c.Notes, "more")
					_, err := r.Save(c)
					require.NoError(t, err)
				}
				if i%4 == 0 {
					require.NoError(t, r.Delete(live[0]))
					live = live[1:]
				}
			}

			got := indexIDs(t, r)
			sort.Strings(got)
			want := append([]string(nil), live...)
			sort.Strings(want)
			require.Equal(t, want, got)

			for _, id := range got {
				_, err := r.Load(id)
				require.NoError(t, err)
			}

			report, err := r.Check()
			require.NoError(t, err)
			require.True(t, report.Consistent(), "%+v", report)
			require.Equal(t, len(live), report.Records)
		})
	}
}

func TestCheckAndRepair(t *testing.T) {
	s := kv.NewMemory()
	r := newRepo(t, s)

	a := sample("A")
	_, err := r.Save(a)
	require.NoError(t, err)
	b := sample("B")
	_, err = r.Save(b)
	require.NoError(t, err)

	// Orphan entry: record removed behind the repository's back
	require.NoError(t, s.Delete(CapsuleKey(a.ID)))

	// Unindexed record: written without an index update
	raw := `{"id":"unindexed","meta":{"title":"C","subject":"","level":"","description":""},"notes":["n"],"flashcards":[],"quiz":[],"updatedAt":"2026-03-14T09:26:53.589Z"}`
	require.NoError(t, s.Set(CapsuleKey("unindexed"), raw))

	// Corrupt record and orphan progress
	require.NoError(t, s.Set(CapsuleKey("corrupt"), "{"))
	require.NoError(t, r.Progress().Save("ghost", progress.Zero()))

	report, err := r.Check()
	require.NoError(t, err)
	require.False(t, report.Consistent())
	require.Equal(t, []string{a.ID}, report.OrphanEntries)
	require.Equal(t, []string{"unindexed"}, report.UnindexedRecords)
	require.Equal(t, []string{"corrupt"}, report.CorruptRecords)
	require.Equal(t, []string{"ghost"}, report.OrphanProgress)

	_, err = r.Repair()
	require.NoError(t, err)

	require.Equal(t, []string{b.ID, "unindexed"}, indexIDs(t, r))
	_, ok, _ := s.Get(progress.Key("ghost"))
	require.False(t, ok)

	report, err = r.Check()
	require.NoError(t, err)
	require.True(t, report.Consistent(), "%+v", report)
	require.Equal(t, []string{"corrupt"}, report.CorruptRecords)
}

func TestRepair_CorruptIndex(t *testing.T) {
	s := kv.NewMemory()
	r := newRepo(t, s)

	a := sample("A")
	_, err := r.Save(a)
	require.NoError(t, err)
	require.NoError(t, s.Set(IndexKey, "[{"))

	report, err := r.Repair()
	require.NoError(t, err)
	require.True(t, report.CorruptIndex)
	require.Equal(t, []string{a.ID}, indexIDs(t, r))
}

func TestNewID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
