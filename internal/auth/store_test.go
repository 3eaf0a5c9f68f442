package auth_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/residentdesk/residentdesk/internal/auth"
)

func TestFileTokenStore_Lifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session")
	store := auth.NewFileTokenStore(path)

	token, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, token, "missing file means no token")

	require.NoError(t, store.Save("abc.def.ghi"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	token, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear(), "clearing twice is fine")

	token, err = store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestMemoryTokenStore(t *testing.T) {
	store := auth.NewMemoryTokenStore("seed")

	token, _ := store.Load()
	assert.Equal(t, "seed", token)

	require.NoError(t, store.Save("next"))
	token, _ = store.Load()
	assert.Equal(t, "next", token)

	require.NoError(t, store.Clear())
	token, _ = store.Load()
	assert.Empty(t, token)
}
