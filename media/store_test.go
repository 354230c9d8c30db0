package media

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveGetDelete(t *testing.T) {
	base := t.TempDir()
	store, err := NewLocalStorage(base, map[AssetType]string{AssetTypePersonaImage: "imagenes"})
	require.NoError(t, err)

	rel, err := store.Save(AssetTypePersonaImage, "", "a.txt", strings.NewReader("hola"))
	require.NoError(t, err)
	assert.Equal(t, "imagenes/a.txt", rel)

	rc, info, err := store.Get(rel)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "hola", string(data))
	assert.EqualValues(t, 4, info.Size())

	require.NoError(t, store.Delete(rel))
	_, _, err = store.Get(rel)
	assert.ErrorIs(t, err, os.ErrNotExist)

	// deleting twice is not an error
	require.NoError(t, store.Delete(rel))
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	base := t.TempDir()
	store, err := NewLocalStorage(base, map[AssetType]string{AssetTypePersonaImage: "imagenes"})
	require.NoError(t, err)

	_, err = store.GetFullPath("../../etc/passwd")
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, _, err = store.Get(".")
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = store.Save(AssetTypePersonaImage, "../..", "x.txt", strings.NewReader("x"))
	assert.Error(t, err)

	_, err = store.Save(AssetTypePersonaImage, "", "../x.txt", strings.NewReader("x"))
	assert.Error(t, err)

	_, err = NewLocalStorage(base, map[AssetType]string{AssetTypePersonaImage: "../elsewhere"})
	assert.Error(t, err)
}

func TestLocalStorageUnknownAssetType(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), map[AssetType]string{})
	require.NoError(t, err)

	_, err = store.Save(AssetTypePersonaImage, "", "a.txt", strings.NewReader("x"))
	assert.Error(t, err)
}

func TestLocalStorageGetDirectory(t *testing.T) {
	base := t.TempDir()
	store, err := NewLocalStorage(base, map[AssetType]string{AssetTypePersonaImage: "imagenes"})
	require.NoError(t, err)
	_, err = store.EnsureDir(AssetTypePersonaImage)
	require.NoError(t, err)
	require.DirExists(t, filepath.Join(base, "imagenes"))

	_, _, err = store.Get("imagenes")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
