package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/datascrub-cli/internal/export"
	"github.com/KaramelBytes/datascrub-cli/internal/source"
)

const scenario = "id,name,email,fecha\n1,John,a@b.com,2024-01-05\n1,John,a@b.com,2024-01-05\n2,,bad-email,not-a-date\n"

func openScenario(t *testing.T) *Session {
	t.Helper()
	p := filepath.Join(t.TempDir(), "people.csv")
	require.NoError(t, os.WriteFile(p, []byte(scenario), 0o644))
	s, err := Open(context.Background(), source.NewLoader(nil, source.Options{}), source.LocalFile{Path: p})
	require.NoError(t, err)
	return s
}

func TestOpen(t *testing.T) {
	s := openScenario(t)
	_, err := uuid.Parse(s.ID)
	assert.NoError(t, err)
	assert.Equal(t, 3, s.Raw.NumRows())
	assert.Nil(t, s.Cleaned)
	assert.Same(t, s.Raw, s.Active())
	assert.Equal(t, source.FormatCSV, s.Format)
	assert.False(t, s.LoadedAt.IsZero())
}

func TestClean(t *testing.T) {
	s := openScenario(t)
	st := s.Clean()
	assert.Equal(t, 3, st.RowsIn)
	assert.Equal(t, 2, st.RowsOut)
	assert.Same(t, s.Cleaned, s.Active())
	assert.Equal(t, 3, s.Raw.NumRows(), "raw table untouched")

	again := s.Clean()
	assert.Equal(t, st, again)
}

func TestHandoffAndResume(t *testing.T) {
	s := openScenario(t)
	s.Clean()
	dir := t.TempDir()
	path, err := s.Handoff(dir, export.CSVOptions{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "datascrub-"+s.ID+".csv"), path)

	resumed, err := Resume(context.Background(), source.NewLoader(nil, source.Options{}), path)
	require.NoError(t, err)
	assert.NotEqual(t, s.ID, resumed.ID)
	assert.Equal(t, s.Cleaned.NumRows(), resumed.Raw.NumRows())
	assert.Equal(t, s.Cleaned.ColumnNames(), resumed.Raw.ColumnNames())
	for i := 0; i < resumed.Raw.NumRows(); i++ {
		assert.Equal(t, s.Cleaned.Row(i), resumed.Raw.Row(i))
	}
}

func TestHandoffAndResume_SingleColumnWithMissing(t *testing.T) {
	p := filepath.Join(t.TempDir(), "notes.csv")
	require.NoError(t, os.WriteFile(p, []byte("nota\nalpha\nNA\nbeta\n"), 0o644))
	l := source.NewLoader(nil, source.Options{})
	s, err := Open(context.Background(), l, source.LocalFile{Path: p})
	require.NoError(t, err)
	s.Clean()
	require.Equal(t, 3, s.Cleaned.NumRows())

	path, err := s.Handoff(t.TempDir(), export.CSVOptions{})
	require.NoError(t, err)
	resumed, err := Resume(context.Background(), l, path)
	require.NoError(t, err)
	require.Equal(t, 3, resumed.Raw.NumRows(), "the Missing row survives the round trip")
	col, ok := resumed.Raw.Column("nota")
	require.True(t, ok)
	assert.True(t, col.Cells[1].IsMissing())
}

func TestHandoffPathDefaultsToTempDir(t *testing.T) {
	s := &Session{ID: "abc"}
	assert.Equal(t, filepath.Join(os.TempDir(), "datascrub-abc.csv"), s.HandoffPath(""))
}
