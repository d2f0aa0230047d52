package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.txt")
	require.NoError(t, WriteText(path, "first"))
	require.NoError(t, WriteText(path, "Only 3 left\n00:05"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Only 3 left\n00:05", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must be cleaned up")
}

func TestWriteTextMissingDirectory(t *testing.T) {
	err := WriteText(filepath.Join(t.TempDir(), "missing", "page.txt"), "x")
	assert.Error(t, err)
}
