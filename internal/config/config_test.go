package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DATASCRUB_SAMPLE_ROWS", "9")

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", c.LogLevel)
	assert.Equal(t, "text", c.OutputFormat)
	assert.Equal(t, 9, c.SampleRows)
	assert.Equal(t, 30, c.DBTimeoutSec)
	assert.Equal(t, "datos_depurados", c.MigrateTable)
	assert.Equal(t, "auto", c.ExportEncoding)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	c, err := Load(path)
	require.NoError(t, err, "a missing explicit file falls back to defaults")

	require.NoError(t, c.Set("output_format", "json"))
	require.NoError(t, c.Set("db_row_limit", "1000"))
	require.NoError(t, Save(c, path))

	back, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "json", back.OutputFormat)
	assert.Equal(t, 1000, back.DBRowLimit)
}

func TestSet_Validation(t *testing.T) {
	c := &Global{}
	assert.Error(t, c.Set("nope", "x"))
	assert.Error(t, c.Set("sample_rows", "many"))
	assert.Error(t, c.Set("db_timeout_sec", "-1"))
	require.NoError(t, c.Set("handoff_dir", "/tmp/x"))
	assert.Equal(t, "/tmp/x", c.HandoffDir)
	assert.Contains(t, Keys(), "export_encoding")
}

func TestDefault_IgnoresEnv(t *testing.T) {
	t.Setenv("DATASCRUB_SAMPLE_ROWS", "9")
	c := Default()
	assert.Equal(t, 5, c.SampleRows)
	assert.Equal(t, "datos_depurados", c.MigrateTable)
	assert.Empty(t, c.HandoffDir)
}
