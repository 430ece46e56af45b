package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *ConfigStore {
	t.Helper()
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestNewConfigStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewConfigStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".htmltab", "config.toml"), store.Path())
	assert.DirExists(t, filepath.Join(home, ".htmltab"))
}

func TestNewConfigStore_WithNestedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")

	store, err := NewConfigStore(dir)

	require.NoError(t, err)
	assert.DirExists(t, dir)
	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	store, err := NewConfigStore("/dev/null/cannot/create/dirs")

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("this is not valid TOML {{{[["), 0600)
	require.NoError(t, err)

	store, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store := newStore(t)

	require.NoError(t, store.Set("output.format", "json"))

	val, ok := store.Get("output.format")
	assert.True(t, ok)
	assert.Equal(t, "json", val)
}

func TestConfigStore_Get_NotFound(t *testing.T) {
	store := newStore(t)

	val, ok := store.Get("missing")

	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Set("s", "hello"))
	require.NoError(t, store.Set("i", 42))
	require.NoError(t, store.Set("f", 2.5))
	require.NoError(t, store.Set("b", true))
	require.NoError(t, store.Set("list", []string{"a", "b"}))

	t.Run("string", func(t *testing.T) {
		assert.Equal(t, "hello", store.GetString("s"))
		assert.Empty(t, store.GetString("i"))
		assert.Empty(t, store.GetString("missing"))
	})

	t.Run("int", func(t *testing.T) {
		assert.Equal(t, 42, store.GetInt("i"))
		assert.Zero(t, store.GetInt("s"))
		assert.Zero(t, store.GetInt("missing"))
	})

	t.Run("float", func(t *testing.T) {
		assert.InDelta(t, 2.5, store.GetFloat("f"), 1e-9)
		assert.InDelta(t, 42.0, store.GetFloat("i"), 1e-9)
		assert.Zero(t, store.GetFloat("s"))
	})

	t.Run("bool", func(t *testing.T) {
		assert.True(t, store.GetBool("b"))
		assert.False(t, store.GetBool("s"))
		assert.False(t, store.GetBool("missing"))
	})

	t.Run("string slice", func(t *testing.T) {
		assert.Equal(t, []string{"a", "b"}, store.GetStringSlice("list"))
		assert.Nil(t, store.GetStringSlice("s"))
		assert.Nil(t, store.GetStringSlice("missing"))
	})
}

func TestConfigStore_Persistence(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("fetch.timeout_seconds", 10))
	require.NoError(t, store.Set("fetch.requests_per_second", 0.5))
	require.NoError(t, store.Set("fetch.headers", []string{"Accept-Language: en"}))
	require.NoError(t, store.Set("history.enabled", true))
	require.NoError(t, store.Set("output.format", "markdown"))

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	// TOML integers come back as int64, arrays as []any.
	assert.Equal(t, 10, reloaded.GetInt("fetch.timeout_seconds"))
	assert.InDelta(t, 0.5, reloaded.GetFloat("fetch.requests_per_second"), 1e-9)
	assert.Equal(t, []string{"Accept-Language: en"}, reloaded.GetStringSlice("fetch.headers"))
	assert.True(t, reloaded.GetBool("history.enabled"))
	assert.Equal(t, "markdown", reloaded.GetString("output.format"))
}

func TestConfigStore_WritesNestedTables(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Set("fetch.user_agent", "bot/1.0"))
	require.NoError(t, store.Set("output.dir", "out"))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, "[fetch]")
	assert.Contains(t, content, "[output]")
	assert.NotContains(t, content, "'fetch.user_agent'")
}

func TestConfigStore_Keys(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Set("output.format", "csv"))
	require.NoError(t, store.Set("extract.size_cap", 10))
	require.NoError(t, store.Set("fetch.burst", 2))

	assert.Equal(t, []string{"extract.size_cap", "fetch.burst", "output.format"}, store.Keys())
}

func TestConfigStore_Load_NonExistent(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Set("a", "b"))
	require.NoError(t, os.Remove(store.Path()))

	err := store.Load()

	require.NoError(t, err)
	assert.Empty(t, store.Keys())
}

func TestConfigStore_Load_InvalidTOML(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Set("valid", "data"))
	require.NoError(t, os.WriteFile(store.Path(), []byte("invalid toml syntax ][}{"), 0600))

	err := store.Load()

	assert.Error(t, err)
}

func TestConfigStore_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), nil, 0600))

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	assert.Empty(t, store.Keys())
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Set("k", "v"))

	info, err := os.Stat(store.Path())

	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_Save_Explicit(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	store.mu.Lock()
	store.data["manual.key"] = "manual_value"
	store.mu.Unlock()

	require.NoError(t, store.Save())

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "manual_value", reloaded.GetString("manual.key"))
}

func TestConfigStore_Save_WriteFileError(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Set("test", "value"))

	// Replace the file with a directory so the write fails.
	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, os.Mkdir(store.Path(), 0700))

	err := store.Set("another", "value")

	assert.Error(t, err)
	_, ok := store.Get("another")
	assert.False(t, ok, "failed write must not leave the value behind")
}

func TestConfigStore_SetWithUnmarshallableValue(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Set("channel", "before"))

	err := store.Set("channel", make(chan int))

	assert.Error(t, err)
	assert.Equal(t, "before", store.GetString("channel"))
}

func TestConfigStore_OverwriteValue(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Set("output.format", "csv"))
	require.NoError(t, store.Set("output.format", "tsv"))

	assert.Equal(t, "tsv", store.GetString("output.format"))
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := newStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Set("fetch.burst", i)
			_ = store.GetInt("fetch.burst")
			_ = store.Keys()
		}()
	}
	wg.Wait()

	_, ok := store.Get("fetch.burst")
	assert.True(t, ok)
}

func TestNestMap(t *testing.T) {
	nested := nestMap(map[string]any{
		"a.b":   1,
		"a.c.d": "x",
		"e":     true,
		"e.f":   2,
	})

	assert.Equal(t, map[string]any{
		"a":   map[string]any{"b": 1, "c": map[string]any{"d": "x"}},
		"e":   true,
		"e.f": 2,
	}, nested)
	assert.Equal(t, map[string]any{"a.b": 1, "a.c.d": "x", "e": true, "e.f": 2}, flattenMap(nested, ""))
}
