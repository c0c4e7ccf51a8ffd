package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/datascrub-cli/internal/source"
)

// resetFlags restores every flag to its default so that invocations in one
// test binary do not leak state into each other.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		_ = fl.Value.Set(fl.DefValue)
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmd executes the root command with args and returns stdout and stderr.
func runCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	resetFlags(rootCmd)
	cfg = nil

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, _, err := runCmd(t, args...)
	require.NoError(t, err, "command %v", args)
	return out
}

func writeCSV(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

const peopleCSV = "id,name,email,fecha\n" +
	"1,John,a@b.com,2024-01-05\n" +
	"1,John,a@b.com,2024-01-05\n" +
	"2,,bad-email,not-a-date\n"

func TestProfile_Formats(t *testing.T) {
	p := writeCSV(t, t.TempDir(), "people.csv", peopleCSV)

	out := mustRun(t, "profile", p)
	assert.Contains(t, out, "Dataset summary")

	out = mustRun(t, "profile", p, "--format-out", "json")
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.EqualValues(t, 3, got["rows"])
	assert.EqualValues(t, 1, got["duplicates"])

	out = mustRun(t, "profile", p, "--clean", "--format-out", "yaml")
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.EqualValues(t, 2, got["rows"], "--clean drops the duplicate row")

	_, _, err := runCmd(t, "profile", p, "--format-out", "xml")
	assert.ErrorContains(t, err, "unsupported --format-out")
}

func TestProfile_WritesOutputFile(t *testing.T) {
	dir := t.TempDir()
	p := writeCSV(t, dir, "people.csv", peopleCSV)
	dest := filepath.Join(dir, "profile.md")

	out := mustRun(t, "profile", p, "-o", dest, "--format-out", "markdown")
	assert.Contains(t, out, "✓ Wrote profile to "+dest)
	body, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(body), "[DATASET SUMMARY]")
}

func TestHeuristicCommands(t *testing.T) {
	p := writeCSV(t, t.TempDir(), "people.csv", peopleCSV)

	out := mustRun(t, "inconsistencies", p, "--format-out", "markdown")
	assert.Contains(t, out, "[INCONSISTENCIES]")
	assert.Contains(t, out, "email")

	out = mustRun(t, "outliers", p, "--format-out", "markdown")
	assert.Contains(t, out, "[OUTLIERS]")

	out = mustRun(t, "missing", p, "--search", "NAME", "--format-out", "markdown")
	assert.Contains(t, out, "- name: 1")
	assert.NotContains(t, out, "- email")
}

func TestDuplicates_ShowAndExport(t *testing.T) {
	dir := t.TempDir()
	p := writeCSV(t, dir, "people.csv", peopleCSV)
	dest := filepath.Join(dir, "dedup.csv")

	out := mustRun(t, "duplicates", p, "--show", "--export", dest, "--format-out", "markdown")
	assert.Contains(t, out, "- Duplicate rows: 1 of 3 (unique 2)")
	assert.Equal(t, 2, strings.Count(out, "a@b.com"), "both copies of the duplicated row are listed")
	assert.Contains(t, out, "✓ Wrote 2 deduplicated rows to "+dest)

	body, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(body), "\n"), "header plus two rows")
}

func TestClean_CSVParquetAndHandoff(t *testing.T) {
	dir := t.TempDir()
	p := writeCSV(t, dir, "messy.csv", "Monto,fecha_alta,nota\n 10 ,2024-01-05,n/a\n20,2024-02-01, ok \n 10 ,2024-01-05,n/a\n")
	csvOut := filepath.Join(dir, "clean.csv")

	out := mustRun(t, "clean", p, "-o", csvOut)
	assert.Contains(t, out, "Rows: 3 in, 2 out")
	assert.Contains(t, out, "Numeric columns: Monto")
	assert.Contains(t, out, "Date columns: fecha_alta")
	body, err := os.ReadFile(csvOut)
	require.NoError(t, err)
	assert.Equal(t, "Monto,fecha_alta,nota\n10,2024-01-05,\n20,2024-02-01,ok\n", string(body))

	pqOut := filepath.Join(dir, "clean.parquet")
	mustRun(t, "clean", p, "-o", pqOut)
	info, err := os.Stat(pqOut)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	handoff := filepath.Join(dir, "handoff")
	t.Setenv("DATASCRUB_HANDOFF_DIR", handoff)
	out = mustRun(t, "clean", p, "--handoff")
	assert.Contains(t, out, "handed off to "+handoff)
	matches, err := filepath.Glob(filepath.Join(handoff, "datascrub-*.csv"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	_, _, err = runCmd(t, "clean", p)
	assert.ErrorContains(t, err, "nothing to write")
}

func TestLowConfidenceWarning(t *testing.T) {
	p := writeCSV(t, t.TempDir(), "data.weird", "a,b\n1,2\n")
	_, errOut, err := runCmd(t, "profile", p)
	require.NoError(t, err)
	assert.Contains(t, errOut, "⚠ Warning:")
}

func TestUnsupportedConnection(t *testing.T) {
	_, _, err := runCmd(t, "profile", "oracle://u:p@host/db")
	var ve *source.ValidationError
	assert.ErrorAs(t, err, &ve)

	_, _, err = runCmd(t, "profile", "data.csv", "--delimiter", "#")
	assert.ErrorContains(t, err, "unsupported --delimiter")
}

func TestMigrate_FileToSQLite(t *testing.T) {
	dir := t.TempDir()
	p := writeCSV(t, dir, "people.csv", peopleCSV)
	conn := "sqlite:///" + filepath.Join(dir, "dest.db")

	out := mustRun(t, "migrate", "--from", p, "--to", conn, "--clean")
	assert.Contains(t, out, "✓ Migrated 2 rows")
	assert.Contains(t, out, "table datos_depurados")

	out = mustRun(t, "profile", conn, "--table", "datos_depurados", "--format-out", "json")
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.EqualValues(t, 2, got["rows"])

	out = mustRun(t, "migrate", "--from", conn, "--table", "datos_depurados", "--limit", "1", "--to", conn, "--dest-table", "copia")
	assert.Contains(t, out, "✓ Migrated 1 rows")

	_, _, err := runCmd(t, "migrate", "--from", p)
	assert.ErrorContains(t, err, "required")
}

func TestConfig_SetAndShow(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	mustRun(t, "--config", cfgPath, "config", "set", "sample_rows", "2")

	out := mustRun(t, "--config", cfgPath, "config", "show")
	assert.Contains(t, out, "sample_rows: 2")

	_, _, err := runCmd(t, "--config", cfgPath, "config", "set", "nope", "1")
	assert.ErrorContains(t, err, "keys:")
}

func TestInconsistencies_HelpMatchesRules(t *testing.T) {
	c, _, err := rootCmd.Find([]string{"inconsistencies"})
	require.NoError(t, err)
	assert.NotContains(t, c.Short, "missing")
	assert.Contains(t, c.Short, "unparseable dates")
}
