package ops

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/pocket/internal/capsule"
	"github.com/hpungsan/pocket/internal/errors"
	"github.com/hpungsan/pocket/internal/progress"
)

func TestList_JoinsProgress(t *testing.T) {
	repo, _ := newTestRepo(t)
	first := mustSave(t, repo, "First")
	second := mustSave(t, repo, "Second")

	require.NoError(t, repo.Progress().Save(first, progress.Record{
		BestScore:       75,
		KnownFlashcards: progress.NewSet(0, 1),
	}))

	out, err := List(repo, ListInput{})
	require.NoError(t, err)
	require.Len(t, out.Items, 2)
	require.Equal(t, "created_desc", out.Sort)
	require.Equal(t, 2, out.Pagination.Total)

	require.Equal(t, second, out.Items[0].ID)
	require.Equal(t, 0, out.Items[0].KnownCount)
	require.Equal(t, 0, out.Items[0].BestScore)

	require.Equal(t, first, out.Items[1].ID)
	require.Equal(t, 2, out.Items[1].KnownCount)
	require.Equal(t, 75, out.Items[1].BestScore)
	require.Contains(t, out.Items[1].UpdatedAgo, "ago")
}

func TestList_Empty(t *testing.T) {
	repo, _ := newTestRepo(t)

	out, err := List(repo, ListInput{})
	require.NoError(t, err)
	require.NotNil(t, out.Items)
	require.Empty(t, out.Items)
	require.False(t, out.Pagination.HasMore)
}

func TestList_FiltersAndPagination(t *testing.T) {
	repo, _ := newTestRepo(t)
	for _, title := range []string{"a", "b", "c"} {
		mustSave(t, repo, title)
	}
	advanced := testCapsule("Go")
	advanced.Meta.Subject = "Programming"
	advanced.Meta.Level = capsule.LevelAdvanced
	_, err := Save(repo, SaveInput{Capsule: advanced})
	require.NoError(t, err)

	out, err := List(repo, ListInput{Subject: "web"})
	require.NoError(t, err)
	require.Len(t, out.Items, 3)

	out, err = List(repo, ListInput{Level: "advanced"})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	require.Equal(t, "Go", out.Items[0].Title)

	out, err = List(repo, ListInput{Limit: 2})
	require.NoError(t, err)
	require.Len(t, out.Items, 2)
	require.True(t, out.Pagination.HasMore)
	require.Equal(t, 4, out.Pagination.Total)

	out, err = List(repo, ListInput{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, out.Items, 2)
	require.False(t, out.Pagination.HasMore)
	require.Equal(t, "a", out.Items[1].Title)
}

func TestLatest(t *testing.T) {
	repo, _ := newTestRepo(t)

	out, err := Latest(repo)
	require.NoError(t, err)
	require.Nil(t, out.Item)

	mustSave(t, repo, "old")
	newest := mustSave(t, repo, "new")

	out, err = Latest(repo)
	require.NoError(t, err)
	require.NotNil(t, out.Item)
	require.Equal(t, newest, out.Item.ID)
}

func TestProgress(t *testing.T) {
	repo, _ := newTestRepo(t)
	id := mustSave(t, repo, "HTML")

	out, err := Progress(repo, ProgressInput{ID: id})
	require.NoError(t, err)
	require.Equal(t, 2, out.Flashcards)
	require.Equal(t, 1, out.Questions)
	require.Equal(t, []int{}, out.KnownFlashcards)
	require.Equal(t, 0, out.BestScore)

	require.NoError(t, repo.Progress().Save(id, progress.Record{BestScore: 100, KnownFlashcards: progress.NewSet(1)}))
	out, err = Progress(repo, ProgressInput{ID: id})
	require.NoError(t, err)
	require.Equal(t, []int{1}, out.KnownFlashcards)
	require.Equal(t, 1, out.KnownCount)
	require.Equal(t, 100, out.BestScore)

	_, err = Progress(repo, ProgressInput{ID: "missing"})
	require.True(t, errors.Is(err, errors.ErrNotFound))
}
