package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allConfigKeys lists every POKEDEX_ env var that Load() reads.
var allConfigKeys = []string{
	"POKEDEX_API_TOKEN",
	"POKEDEX_LISTEN_ADDR",
	"POKEDEX_ENV",
	"POKEDEX_DATASET_SOURCE",
	"POKEDEX_DATASET_PATH",
	"POKEDEX_DB_PATH",
	"POKEDEX_GITHUB_REPO",
	"POKEDEX_GITHUB_PATH",
	"POKEDEX_GITHUB_REF",
	"POKEDEX_GITHUB_TOKEN",
}

// isolateConfigEnv saves and unsets all POKEDEX_ env vars so tests don't
// inherit values from the host environment (e.g. a running dev server).
// t.Cleanup restores original values after the test.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func TestLoad_Success(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("POKEDEX_API_TOKEN", "3c6ef3a2-1d2b-11ee-be56-0242ac120002")
	t.Setenv("POKEDEX_LISTEN_ADDR", "0.0.0.0:9090")
	t.Setenv("POKEDEX_ENV", "production")
	t.Setenv("POKEDEX_DATASET_SOURCE", "sqlite")
	t.Setenv("POKEDEX_DB_PATH", "/tmp/pokedex.db")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "3c6ef3a2-1d2b-11ee-be56-0242ac120002", cfg.APIToken)
	assert.Equal(t, "0.0.0.0:9090", cfg.ListenAddr)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, DatasetSourceSQLite, cfg.DatasetSource)
	assert.Equal(t, "/tmp/pokedex.db", cfg.DBPath)
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("POKEDEX_API_TOKEN", "secret")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8000", cfg.ListenAddr)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, DatasetSourceEmbedded, cfg.DatasetSource)
	assert.Equal(t, "pokedex.db", cfg.DBPath)
	assert.Equal(t, "pokedex.json", cfg.GitHubPath)
}

func TestLoad_MissingToken(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POKEDEX_API_TOKEN")
}

func TestLoad_BlankToken(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("POKEDEX_API_TOKEN", "   ")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POKEDEX_API_TOKEN")
}

// TestLoad_TokenWithWhitespace verifies a token that could never match the
// second component of an Authorization header is rejected at startup.
func TestLoad_TokenWithWhitespace(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("POKEDEX_API_TOKEN", "two words")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "whitespace")
}

func TestLoad_StagingIsNotProduction(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("POKEDEX_API_TOKEN", "secret")
	t.Setenv("POKEDEX_ENV", "staging")

	cfg, err := Load()

	require.NoError(t, err)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FileSourceRequiresPath(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("POKEDEX_API_TOKEN", "secret")
	t.Setenv("POKEDEX_DATASET_SOURCE", "file")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POKEDEX_DATASET_PATH")

	t.Setenv("POKEDEX_DATASET_PATH", "/data/pokedex.json")
	cfg, err = Load()

	require.NoError(t, err)
	assert.Equal(t, "/data/pokedex.json", cfg.DatasetPath)
}

func TestLoad_GitHubSource(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("POKEDEX_API_TOKEN", "secret")
	t.Setenv("POKEDEX_DATASET_SOURCE", "github")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POKEDEX_GITHUB_REPO")

	t.Setenv("POKEDEX_GITHUB_REPO", "octocat/pokedata")
	t.Setenv("POKEDEX_GITHUB_PATH", "data/pokedex.json")
	t.Setenv("POKEDEX_GITHUB_REF", "main")
	t.Setenv("POKEDEX_GITHUB_TOKEN", "ghp_test123")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, DatasetSourceGitHub, cfg.DatasetSource)
	assert.Equal(t, "octocat/pokedata", cfg.GitHubRepo)
	assert.Equal(t, "data/pokedex.json", cfg.GitHubPath)
	assert.Equal(t, "main", cfg.GitHubRef)
	assert.Equal(t, "ghp_test123", cfg.GitHubToken)
}

func TestLoad_UnknownSource(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("POKEDEX_API_TOKEN", "secret")
	t.Setenv("POKEDEX_DATASET_SOURCE", "postgres")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POKEDEX_DATASET_SOURCE")
}

func TestLoad_TokenSurroundingWhitespaceRejected(t *testing.T) {
	for _, token := range []string{" secret", "secret ", "secret\n"} {
		isolateConfigEnv(t)
		t.Setenv("POKEDEX_API_TOKEN", token)

		cfg, err := Load()

		assert.Nil(t, cfg, "token %q", token)
		require.Error(t, err, "token %q", token)
		assert.Contains(t, err.Error(), "whitespace")
	}
}
