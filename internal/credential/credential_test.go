package credential

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatic(t *testing.T) {
	_, ok := Static("").Credential(context.Background())
	require.False(t, ok)

	tok, ok := Static("abc").Credential(context.Background())
	require.True(t, ok)
	require.Equal(t, "abc", tok)
}

func TestFile_SaveLoadClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")
	f, err := NewFile(path)
	require.NoError(t, err)

	_, ok := f.Credential(context.Background())
	require.False(t, ok, "missing file means guest")

	require.NoError(t, f.Save("jwt-token"))
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	tok, ok := f.Credential(context.Background())
	require.True(t, ok)
	require.Equal(t, "jwt-token", tok)

	require.NoError(t, f.Clear())
	require.NoError(t, f.Clear())
	_, ok = f.Credential(context.Background())
	require.False(t, ok)
}
