package ops

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDoctor(t *testing.T) {
	repo, _ := newTestRepo(t)
	mustSave(t, repo, "HTML")

	out, err := Doctor(repo, DoctorInput{})
	require.NoError(t, err)
	require.True(t, out.Consistent)
	require.False(t, out.Repaired)
	require.Equal(t, 1, out.Report.Records)

	// Progress left for a capsule that no longer exists
	rec, err := repo.Progress().Load("gone")
	require.NoError(t, err)
	require.NoError(t, repo.Progress().Save("gone", rec))

	out, err = Doctor(repo, DoctorInput{})
	require.NoError(t, err)
	require.False(t, out.Consistent)
	require.Equal(t, []string{"gone"}, out.Report.OrphanProgress)

	out, err = Doctor(repo, DoctorInput{Repair: true})
	require.NoError(t, err)
	require.True(t, out.Repaired)

	out, err = Doctor(repo, DoctorInput{})
	require.NoError(t, err)
	require.True(t, out.Consistent)
}
