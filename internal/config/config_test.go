package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(filepath.Join(dir, FileName))
	require.NoError(t, err)

	assert.Equal(t, "proposals.json", cfg.Store)
	assert.Equal(t, OnCorruptDiscard, cfg.OnCorrupt)
	assert.Equal(t, filepath.Join(dir, "proposals.json"), cfg.StorePath())

	d, err := cfg.LockTimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, d)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	body := "store = \"data/props.json\"\non_corrupt = \"FAIL\"\nlock_timeout = \"250ms\"\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, OnCorruptFail, cfg.OnCorrupt)
	assert.Equal(t, filepath.Join(dir, "data", "props.json"), cfg.StorePath())
	d, err := cfg.LockTimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, d)
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte("store = \"a.json\"\n"), 0o644))

	abs := filepath.Join(t.TempDir(), "b.json")
	t.Setenv("PROPOSALS_STORE", abs)
	t.Setenv("PROPOSALS_ON_CORRUPT", "fail")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, abs, cfg.StorePath())
	assert.Equal(t, OnCorruptFail, cfg.OnCorrupt)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		body string
		want error
	}{
		{name: "policy", body: "on_corrupt = \"ignore\"\n", want: ErrInvalidOnCorrupt},
		{name: "timeout", body: "lock_timeout = \"soon\"\n", want: ErrInvalidLockTimeout},
		{name: "negative timeout", body: "lock_timeout = \"-1s\"\n", want: ErrInvalidLockTimeout},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), FileName)
			require.NoError(t, os.WriteFile(path, []byte(tc.body), 0o644))

			_, err := Load(path)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestLoadParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("store = \n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse "+path)
}

func TestDiscoverWalksUpward(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, Save(filepath.Join(root, FileName), Default(root)))

	cfg, path, err := Discover(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, FileName), path)
	assert.Equal(t, filepath.Join(root, "proposals.json"), cfg.StorePath())
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", FileName)
	want := Default(filepath.Dir(path))
	want.OnCorrupt = OnCorruptFail

	require.NoError(t, Save(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSaveValidates(t *testing.T) {
	cfg := Default(t.TempDir())
	cfg.OnCorrupt = "shrug"
	assert.ErrorIs(t, Save(filepath.Join(cfg.Dir, FileName), cfg), ErrInvalidOnCorrupt)
}
