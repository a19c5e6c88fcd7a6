package ops

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSeed(t *testing.T) {
	repo, cfg := newTestRepo(t)

	out, err := Seed(repo, cfg)
	require.NoError(t, err)
	require.True(t, out.Seeded)

	c, err := repo.Load(out.ID)
	require.NoError(t, err)
	require.Equal(t, "HTML Basics", c.Meta.Title)
	require.Len(t, c.Flashcards, 2)
	require.Len(t, c.Quiz, 1)

	// Second run is a no-op
	out, err = Seed(repo, cfg)
	require.NoError(t, err)
	require.False(t, out.Seeded)

	// An emptied library stays empty
	_, err = Delete(repo, DeleteInput{ID: c.ID})
	require.NoError(t, err)
	out, err = Seed(repo, cfg)
	require.NoError(t, err)
	require.False(t, out.Seeded)
}

func TestSeed_Disabled(t *testing.T) {
	repo, cfg := newTestRepo(t)
	cfg.SeedSample = false

	out, err := Seed(repo, cfg)
	require.NoError(t, err)
	require.False(t, out.Seeded)

	idx, err := repo.ListIndex()
	require.NoError(t, err)
	require.Empty(t, idx)
}
