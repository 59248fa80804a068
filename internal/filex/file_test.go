package filex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureParentDir_CreatesNestedDirectories(t *testing.T) {
	tmp := t.TempDir()
	dbPath := filepath.Join(tmp, "data", "saveeat", "client.db")

	require.NoError(t, EnsureParentDir(dbPath))

	fi, err := os.Stat(filepath.Join(tmp, "data", "saveeat"))
	require.NoError(t, err)
	require.True(t, fi.IsDir())
}

func TestEnsureParentDir_Idempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "d", "client.db")
	require.NoError(t, EnsureParentDir(dbPath))
	require.NoError(t, EnsureParentDir(dbPath))
}

func TestEnsureParentDir_BareFileName(t *testing.T) {
	require.NoError(t, EnsureParentDir("saveeat.db"))
}

func TestEnsureParentDir_ParentIsFile(t *testing.T) {
	tmp := t.TempDir()
	blocker := filepath.Join(tmp, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	err := EnsureParentDir(filepath.Join(blocker, "client.db"))
	require.Error(t, err)
}

func TestRegularFile(t *testing.T) {
	tmp := t.TempDir()
	p := filepath.Join(tmp, "kbis.pdf")
	require.NoError(t, os.WriteFile(p, []byte("%PDF-1.4"), 0o600))

	size, err := RegularFile(p)
	require.NoError(t, err)
	require.EqualValues(t, 8, size)

	_, err = RegularFile(tmp)
	require.ErrorIs(t, err, ErrNotRegularFile)

	_, err = RegularFile(filepath.Join(tmp, "missing.pdf"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
