package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0o600))
}

func TestRegistriesSorted(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{
		"auths": {
			"registry.example.com": {},
			"https://index.docker.io/v1/": {"auth": "dXNlcjpwYXNz"},
			"ghcr.io": {}
		},
		"credsStore": "desktop"
	}`)

	src := NewConfigSource(dir)
	regs, err := src.Registries()
	require.NoError(t, err)
	assert.Equal(t, []string{"ghcr.io", "https://index.docker.io/v1/", "registry.example.com"}, regs)

	store, err := src.CredentialsStore()
	require.NoError(t, err)
	assert.Equal(t, "desktop", store)
	assert.Equal(t, filepath.Join(dir, "config.json"), src.Path())
}

func TestRegistriesMissingFile(t *testing.T) {
	src := NewConfigSource(t.TempDir())
	regs, err := src.Registries()
	require.NoError(t, err)
	assert.Empty(t, regs)
}

func TestRegistriesMalformed(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{"auths": [`)

	_, err := NewConfigSource(dir).Registries()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedConfig)
}

func TestDefaultDir(t *testing.T) {
	src := NewConfigSource("")
	assert.NotEmpty(t, src.Dir())
	assert.Equal(t, "config.json", filepath.Base(src.Path()))
}
