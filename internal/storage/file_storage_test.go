package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalDocumentStore_Save(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalDocumentStore(dir, zap.NewNop())

	path, err := store.Save("invoice.pdf", []byte("%PDF-1.4 test"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(path, dir))
	assert.Equal(t, ".pdf", filepath.Ext(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 test"), content)
}

func TestLocalDocumentStore_GeneratedNamesDiffer(t *testing.T) {
	store := NewLocalDocumentStore(t.TempDir(), zap.NewNop())

	first, err := store.Save("a.jpg", []byte("one"))
	require.NoError(t, err)
	second, err := store.Save("a.jpg", []byte("two"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestLocalDocumentStore_IgnoresClientPath(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalDocumentStore(dir, zap.NewNop())

	path, err := store.Save("../../etc/passwd.png", []byte("data"))
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(path), "document must land inside the store directory")
	assert.Equal(t, ".png", filepath.Ext(path))
}

func TestSafeExt(t *testing.T) {
	assert.Equal(t, ".pdf", safeExt("Invoice.PDF"))
	assert.Equal(t, ".jpeg", safeExt("photo.jpeg"))
	assert.Equal(t, "", safeExt("script.sh"))
	assert.Equal(t, "", safeExt("noext"))
}
