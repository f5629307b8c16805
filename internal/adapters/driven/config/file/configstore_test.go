package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
[audit]
max_upload_mb = 10
cache_ttl = "12h"

[llm]
model = "gpt-4o"
api_key = "sk-test"

[directus]
url = "https://cms.example.ru"
requests_per_second = 2.5

[log]
verbose = true
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, ConfigFile), store.Path())
}

func TestOpenConfigStore_MissingFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "geoaudit.toml")

	store, err := OpenConfigStore(path)

	require.NoError(t, err)
	_, ok := store.Get("audit.max_upload_mb")
	assert.False(t, ok)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func get(t *testing.T, store *ConfigStore, key string) any {
	t.Helper()
	v, ok := store.Get(key)
	require.True(t, ok, "missing %s", key)
	return v
}

func TestOpenConfigStore_FlattensTables(t *testing.T) {
	store, err := OpenConfigStore(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, int64(10), get(t, store, "audit.max_upload_mb"))
	assert.Equal(t, "12h", get(t, store, "audit.cache_ttl"))
	assert.Equal(t, "sk-test", get(t, store, "llm.api_key"))
	assert.Equal(t, true, get(t, store, "log.verbose"))
	assert.Equal(t, 2.5, get(t, store, "directus.requests_per_second"))
}

func TestOpenConfigStore_InvalidTOML(t *testing.T) {
	_, err := OpenConfigStore(writeConfig(t, "[audit\nmax_upload_mb = "))
	assert.Error(t, err)
}

func TestConfigStore_Keys(t *testing.T) {
	store, err := OpenConfigStore(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"audit.cache_ttl",
		"audit.max_upload_mb",
		"directus.requests_per_second",
		"directus.url",
		"llm.api_key",
		"llm.model",
		"log.verbose",
	}, store.Keys())
}

func TestConfigStore_SetPersistsNestedTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFile)
	store, err := OpenConfigStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Set("audit.hourly_limit", 7))
	require.NoError(t, store.Set("llm.base_url", "https://api.proxyapi.ru/openai/v1"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[audit]")
	assert.Contains(t, string(raw), "[llm]")

	reopened, err := OpenConfigStore(path)
	require.NoError(t, err)
	assert.Equal(t, int64(7), get(t, reopened, "audit.hourly_limit"))
	assert.Equal(t, "https://api.proxyapi.ru/openai/v1", get(t, reopened, "llm.base_url"))
}

func TestConfigStore_Unset(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	store, err := OpenConfigStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Unset("llm.api_key"))
	require.NoError(t, store.Unset("llm.absent"))

	reopened, err := OpenConfigStore(path)
	require.NoError(t, err)
	_, ok := reopened.Get("llm.api_key")
	assert.False(t, ok)
	assert.Equal(t, "gpt-4o", get(t, reopened, "llm.model"))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("llm.api_key", "secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Set("audit.hourly_limit", i)
		}()
		go func() {
			defer wg.Done()
			_, _ = store.Get("audit.hourly_limit")
		}()
	}
	wg.Wait()
}

func TestNestMap_InvertsFlatten(t *testing.T) {
	flat := map[string]any{
		"audit.cache_ttl": "24h",
		"audit.quota":     int64(5),
		"llm.model":       "gpt-4o",
		"top":             true,
	}

	assert.Equal(t, flat, flattenMap(nestMap(flat), ""))
}
