package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/brandonbloom/proposals/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoctorHealthyWithoutStore(t *testing.T) {
	stdout, stderr, err := runCLI(t, t.TempDir(), "doctor", "-v")
	require.NoError(t, err)
	assert.Empty(t, stderr)
	assert.Contains(t, stdout, "✓ store is a JSON object")
	assert.Contains(t, stdout, "✓ store lock available")
	assert.Contains(t, stdout, "healthy!")
}

func TestDoctorReportsProblems(t *testing.T) {
	cases := []struct {
		name  string
		store string
		want  string
	}{
		{name: "corrupt", store: "not json", want: "✗ store is a JSON object"},
		{name: "corrupt warns about discard", store: "not json", want: "the next add will discard it"},
		{name: "odd entries", store: `{"a": 1, "b": {"description": "ok", "status": "pending"}}`, want: "1 entries lack a string description and status: a"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "proposals.json"), []byte(tc.store), 0o644))

			_, stderr, err := runCLI(t, dir, "doctor")
			require.Error(t, err)
			assert.Contains(t, stderr, tc.want)
		})
	}
}

func TestDoctorMissingStoreDirectory(t *testing.T) {
	dir := t.TempDir()

	_, stderr, err := runCLI(t, dir, "--store", filepath.Join(dir, "gone", "p.json"), "doctor")
	require.Error(t, err)
	assert.Contains(t, stderr, "✗ store directory exists")
	assert.Contains(t, stderr, "✗ store lock available")
}

func TestDoctorInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte("on_corrupt = \"maybe\"\n"), 0o644))

	_, stderr, err := runCLI(t, dir, "doctor")
	require.Error(t, err)
	assert.Contains(t, stderr, "✗ config valid")
	assert.Contains(t, stderr, "config not loaded")
}

func TestInitWritesConfigOnce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.FileName)

	stdout, _, err := runCLI(t, dir, "init")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote ")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default(dir), cfg)

	stdout, _, err = runCLI(t, dir, "init")
	require.NoError(t, err)
	assert.Contains(t, stdout, "already initialized")
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := runCLI(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Regexp(t, `^proposals .+ \(.+ \w+/\w+\)\n$`, stdout)
}
