package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geotech-hub/geoaudit/internal/core/ports/driven"
)

var testDefaults = map[string]string{
	driven.PromptGate:       "gate default",
	driven.PromptChatSystem: "chat default",
}

func newTestPromptStore(t *testing.T) *PromptStore {
	t.Helper()
	store, err := NewPromptStore(filepath.Join(t.TempDir(), "prompts"), testDefaults)
	require.NoError(t, err)
	return store
}

func TestPromptStore_ImplementsInterface(t *testing.T) {
	var _ driven.PromptStore = (*PromptStore)(nil)
}

func TestNewPromptStore_NoIO(t *testing.T) {
	store := newTestPromptStore(t)

	_, err := os.Stat(store.Dir())
	assert.True(t, os.IsNotExist(err))
}

func TestPromptStore_Load_CreatesDefaultFiles(t *testing.T) {
	store := newTestPromptStore(t)

	prompt, err := store.Load(driven.PromptGate)
	require.NoError(t, err)
	assert.Equal(t, "gate default", prompt)

	for name := range testDefaults {
		_, err := os.Stat(filepath.Join(store.Dir(), name+".txt"))
		assert.NoError(t, err, name)
	}
	readme, err := os.ReadFile(filepath.Join(store.Dir(), "README.md"))
	require.NoError(t, err)
	assert.Contains(t, string(readme), "`chat_system.txt`")
}

func TestPromptStore_Load_ReturnsCustomContent(t *testing.T) {
	store := newTestPromptStore(t)
	require.NoError(t, os.MkdirAll(store.Dir(), 0700))
	path := filepath.Join(store.Dir(), driven.PromptGate+".txt")
	require.NoError(t, os.WriteFile(path, []byte("  custom gate\n\n"), 0600))

	prompt, err := store.Load(driven.PromptGate)
	require.NoError(t, err)
	assert.Equal(t, "custom gate", prompt)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "  custom gate\n\n", string(content))
}

func TestPromptStore_Load_EmptyFileFallsBack(t *testing.T) {
	store := newTestPromptStore(t)
	require.NoError(t, os.MkdirAll(store.Dir(), 0700))
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), driven.PromptGate+".txt"), []byte("\n"), 0600))

	prompt, err := store.Load(driven.PromptGate)
	require.NoError(t, err)
	assert.Equal(t, "gate default", prompt)
}

func TestPromptStore_Load_UnknownPrompt(t *testing.T) {
	store := newTestPromptStore(t)

	_, err := store.Load("does_not_exist")
	assert.Error(t, err)
}

func TestPromptStore_Reload(t *testing.T) {
	store := newTestPromptStore(t)

	first, err := store.Load(driven.PromptChatSystem)
	require.NoError(t, err)
	assert.Equal(t, "chat default", first)

	path := filepath.Join(store.Dir(), driven.PromptChatSystem+".txt")
	require.NoError(t, os.WriteFile(path, []byte("edited"), 0600))

	cached, err := store.Load(driven.PromptChatSystem)
	require.NoError(t, err)
	assert.Equal(t, "chat default", cached)

	store.Reload()
	fresh, err := store.Load(driven.PromptChatSystem)
	require.NoError(t, err)
	assert.Equal(t, "edited", fresh)
}

func TestPromptStore_DefaultsCopied(t *testing.T) {
	defaults := map[string]string{"x": "original"}
	store, err := NewPromptStore(t.TempDir(), defaults)
	require.NoError(t, err)

	defaults["x"] = "mutated"
	prompt, err := store.Load("x")
	require.NoError(t, err)
	assert.Equal(t, "original", prompt)
}

func TestPromptStore_InitFailureUsesDefaults(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	store, err := NewPromptStore(filepath.Join(blocker, "prompts"), testDefaults)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptGate)
	require.NoError(t, err)
	assert.Equal(t, "gate default", prompt)

	_, err = store.Load("unknown")
	assert.Error(t, err)
}

func TestPromptStore_ConcurrentLoad(t *testing.T) {
	store := newTestPromptStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			prompt, err := store.Load(driven.PromptGate)
			assert.NoError(t, err)
			assert.Equal(t, "gate default", prompt)
		}()
	}
	wg.Wait()
}
