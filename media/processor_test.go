package media

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/camden-git/personasapi/models"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProcessor(t *testing.T, maxSize int, maxBytes int64) (*Processor, string) {
	t.Helper()
	base := t.TempDir()
	store, err := NewLocalStorage(base, map[AssetType]string{
		AssetTypePersonaImage: "imagenes",
		AssetTypeDefaultImage: DefaultImagesSubDir,
	})
	require.NoError(t, err)
	return NewProcessor(store, maxSize, maxBytes), base
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 10, G: 120, B: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDefaultImageReferenceMatchesModelSentinel(t *testing.T) {
	assert.Equal(t, models.DefaultImagen, DefaultImageReference())
}

func TestProcessPersonaImage(t *testing.T) {
	proc, base := newTestProcessor(t, 100, 0)

	ref, err := proc.ProcessPersonaImage(bytes.NewReader(pngBytes(t, 400, 200)))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "storage/imagenes/"), ref)
	assert.True(t, strings.HasSuffix(ref, ".jpg"), ref)

	rel, ok := RelativeFromReference(ref)
	require.True(t, ok)
	f, err := os.Open(filepath.Join(base, filepath.FromSlash(rel)))
	require.NoError(t, err)
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 50, cfg.Height)
}

func TestProcessPersonaImageRejectsGarbage(t *testing.T) {
	proc, _ := newTestProcessor(t, 0, 0)

	_, err := proc.ProcessPersonaImage(strings.NewReader("definitely not an image"))
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestProcessPersonaImageTooLarge(t *testing.T) {
	data := pngBytes(t, 64, 64)
	proc, _ := newTestProcessor(t, 0, int64(len(data)-1))

	_, err := proc.ProcessPersonaImage(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestRemovePersonaImage(t *testing.T) {
	proc, base := newTestProcessor(t, 0, 0)
	require.NoError(t, proc.EnsureDefaultImage())

	ref, err := proc.ProcessPersonaImage(bytes.NewReader(pngBytes(t, 8, 8)))
	require.NoError(t, err)
	rel, _ := RelativeFromReference(ref)
	full := filepath.Join(base, filepath.FromSlash(rel))
	require.FileExists(t, full)

	require.NoError(t, proc.RemovePersonaImage(ref))
	assert.NoFileExists(t, full)

	// the placeholder and foreign references are never removed
	require.NoError(t, proc.RemovePersonaImage(DefaultImageReference()))
	assert.FileExists(t, filepath.Join(base, DefaultImagesSubDir, DefaultImageFilename))
	require.NoError(t, proc.RemovePersonaImage("https://cdn.example.com/a.jpg"))
}

func TestEnsureDefaultImage(t *testing.T) {
	proc, base := newTestProcessor(t, 0, 0)
	target := filepath.Join(base, DefaultImagesSubDir, DefaultImageFilename)

	require.NoError(t, proc.EnsureDefaultImage())
	require.FileExists(t, target)
	before, err := os.Stat(target)
	require.NoError(t, err)

	// second call keeps the existing file
	require.NoError(t, proc.EnsureDefaultImage())
	after, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime())

	f, err := os.Open(target)
	require.NoError(t, err)
	defer f.Close()
	_, format, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
}

func TestRelativeFromReference(t *testing.T) {
	rel, ok := RelativeFromReference("storage/imagenes/a.jpg")
	assert.True(t, ok)
	assert.Equal(t, "imagenes/a.jpg", rel)

	_, ok = RelativeFromReference("imagenes/a.jpg")
	assert.False(t, ok)

	_, ok = RelativeFromReference("storage/")
	assert.False(t, ok)
}
