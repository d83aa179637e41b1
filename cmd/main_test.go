package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sabarim/doorstats/internal/events"
)

const doorLog = `2014-11-01 08:00:00,open
2014-11-01 08:20:00,close
2014-11-02 08:00:00,open
2014-11-02 09:30:00,close
`

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "doorstats.yaml")
	content := `
input:
  path: from-file.csv
charts:
  output_dir: file-out
  format: svg
export:
  report_path: file-report.yaml
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestResolveConfig_FlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	opts := &options{}
	cmd := newRootCmd(opts)
	require.NoError(t, cmd.ParseFlags([]string{
		"--config", writeConfig(t, dir),
		"--input", "flag.csv",
		"--output-dir", "flag-out",
		"--report", "flag-report.yaml",
	}))

	cfg, err := resolveConfig(cmd, opts)
	require.NoError(t, err)

	assert.Equal(t, "flag.csv", cfg.Input.Path)
	assert.Equal(t, "flag-out", cfg.Charts.OutputDir)
	assert.Equal(t, "flag-report.yaml", cfg.Export.ReportPath)
	assert.Equal(t, "svg", cfg.Charts.Format)
}

func TestResolveConfig_UnsetFlagsKeepFileValues(t *testing.T) {
	dir := t.TempDir()
	opts := &options{}
	cmd := newRootCmd(opts)
	require.NoError(t, cmd.ParseFlags([]string{"--config", writeConfig(t, dir)}))

	cfg, err := resolveConfig(cmd, opts)
	require.NoError(t, err)

	assert.Equal(t, "from-file.csv", cfg.Input.Path)
	assert.Equal(t, "file-out", cfg.Charts.OutputDir)
	assert.Equal(t, "file-report.yaml", cfg.Export.ReportPath)
	assert.False(t, cfg.Export.CSVEnabled)
}

func TestResolveConfig_CSVFollowsOutputDirFlag(t *testing.T) {
	opts := &options{}
	cmd := newRootCmd(opts)
	require.NoError(t, cmd.ParseFlags([]string{
		"--config", filepath.Join(t.TempDir(), "absent.yaml"),
		"--output-dir", "out",
		"--csv",
	}))

	cfg, err := resolveConfig(cmd, opts)
	require.NoError(t, err)

	assert.True(t, cfg.Export.CSVEnabled)
	assert.Equal(t, "out", cfg.SeriesCSVDir())
}

func TestResolveConfig_InvalidFormat(t *testing.T) {
	opts := &options{}
	cmd := newRootCmd(opts)
	require.NoError(t, cmd.ParseFlags([]string{
		"--config", filepath.Join(t.TempDir(), "absent.yaml"),
		"--format", "bmp",
	}))

	_, err := resolveConfig(cmd, opts)
	assert.ErrorContains(t, err, "unsupported charts.format")
}

func TestRootCommand_WritesChartsAndCSV(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "door.csv")
	out := filepath.Join(dir, "out")
	require.NoError(t, os.WriteFile(input, []byte(doorLog), 0o644))

	cmd := newRootCmd(&options{})
	cmd.SetArgs([]string{
		"--config", filepath.Join(dir, "absent.yaml"),
		"--input", input,
		"--output-dir", out,
		"--format", "svg",
		"--csv",
	})
	require.NoError(t, cmd.Execute())

	assert.FileExists(t, filepath.Join(out, "count_by_day.svg"))
	assert.FileExists(t, filepath.Join(out, "count_by_day.csv"))
}

func TestRootCommand_MissingInputFails(t *testing.T) {
	dir := t.TempDir()
	cmd := newRootCmd(&options{})
	cmd.SetArgs([]string{
		"--config", filepath.Join(dir, "absent.yaml"),
		"--input", filepath.Join(dir, "missing.csv"),
		"--output-dir", filepath.Join(dir, "out"),
	})

	err := cmd.Execute()
	require.Error(t, err)
	assert.True(t, errors.Is(err, events.ErrMissingInput))
}

func TestRootCommand_RejectsArguments(t *testing.T) {
	cmd := newRootCmd(&options{})
	cmd.SetArgs([]string{"door.csv"})

	assert.Error(t, cmd.Execute())
}

func TestRootCommand_Version(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd(&options{})
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "doorstats version "+versionString+"\n", out.String())
}
