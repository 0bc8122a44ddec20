package assets

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storycraft-server/internal/models"
)

func testImagePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return buf.Bytes()
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(t.TempDir(), zap.NewNop())
}

func TestPairPaths(t *testing.T) {
	story := StoryPair("alice", "proj-1", 3)
	assert.Equal(t, filepath.Join("alice", "proj-1", "3.png"), story.ImageRel())
	assert.Equal(t, filepath.Join("alice", "proj-1", "3m.png"), story.IconRel())

	workshop := WorkshopPair("alice", "proj-1", "abc")
	assert.Equal(t, filepath.Join("alice", "proj-1", "workshop", "abc.png"), workshop.ImageRel())
	assert.Equal(t, filepath.Join("alice", "proj-1", "workshop", "abcm.png"), workshop.IconRel())
}

func TestWritePairCreatesImageAndThumbnail(t *testing.T) {
	store := newTestStore(t)
	pair := WorkshopPair("alice", "proj-1", "page-1")
	data := testImagePNG(t, 1024, 1024)

	require.NoError(t, store.WritePair(pair, data))
	assert.True(t, store.PairExists(pair))

	stored, err := os.ReadFile(store.ImagePath(pair))
	require.NoError(t, err)
	assert.Equal(t, data, stored)

	icon, err := imaging.Open(store.IconPath(pair))
	require.NoError(t, err)
	bounds := icon.Bounds()
	assert.Equal(t, IconSize, bounds.Dx())
	assert.Equal(t, IconSize, bounds.Dy())
}

func TestWritePairRejectsUndecodableData(t *testing.T) {
	store := newTestStore(t)
	pair := WorkshopPair("alice", "proj-1", "page-1")

	err := store.WritePair(pair, []byte("not an image"))
	require.Error(t, err)
	assert.False(t, store.PairExists(pair))
	_, statErr := os.Stat(store.ImagePath(pair))
	assert.True(t, os.IsNotExist(statErr))
}

func TestWritePairOverwritesExistingPair(t *testing.T) {
	store := newTestStore(t)
	pair := WorkshopPair("alice", "proj-1", "page-1")

	require.NoError(t, store.WritePair(pair, testImagePNG(t, 64, 64)))
	second := testImagePNG(t, 512, 512)
	require.NoError(t, store.WritePair(pair, second))

	stored, err := os.ReadFile(store.ImagePath(pair))
	require.NoError(t, err)
	assert.Equal(t, second, stored)
}

func TestMovePair(t *testing.T) {
	store := newTestStore(t)
	src := WorkshopPair("alice", "proj-1", "page-1")
	dst := StoryPair("alice", "proj-1", 0)
	require.NoError(t, store.WritePair(src, testImagePNG(t, 64, 64)))

	require.NoError(t, store.MovePair(src, dst))

	assert.False(t, store.PairExists(src))
	assert.True(t, store.PairExists(dst))
}

func TestMovePairMissingSource(t *testing.T) {
	store := newTestStore(t)
	src := StoryPair("alice", "proj-1", 4)
	dst := StoryPair("alice", "proj-1", 3)

	err := store.MovePair(src, dst)
	assert.ErrorIs(t, err, models.ErrAssetNotFound)
}

func TestMovePairIncompleteSource(t *testing.T) {
	store := newTestStore(t)
	src := StoryPair("alice", "proj-1", 0)
	dst := StoryPair("alice", "proj-1", 1)

	// Only the full image exists; the pair must be treated as absent and
	// the lone file left untouched.
	require.NoError(t, os.MkdirAll(filepath.Dir(store.ImagePath(src)), 0o755))
	require.NoError(t, os.WriteFile(store.ImagePath(src), []byte("img"), 0o644))

	err := store.MovePair(src, dst)
	assert.ErrorIs(t, err, models.ErrAssetNotFound)

	_, statErr := os.Stat(store.ImagePath(src))
	assert.NoError(t, statErr)
}

func TestRemovePairIdempotent(t *testing.T) {
	store := newTestStore(t)
	pair := WorkshopPair("alice", "proj-1", "page-1")
	require.NoError(t, store.WritePair(pair, testImagePNG(t, 64, 64)))

	require.NoError(t, store.RemovePair(pair))
	assert.False(t, store.PairExists(pair))

	// A second remove of the now absent pair succeeds.
	require.NoError(t, store.RemovePair(pair))
}

func TestRemoveProject(t *testing.T) {
	store := newTestStore(t)
	pair := WorkshopPair("alice", "proj-1", "page-1")
	require.NoError(t, store.WritePair(pair, testImagePNG(t, 64, 64)))
	other := WorkshopPair("alice", "proj-2", "page-2")
	require.NoError(t, store.WritePair(other, testImagePNG(t, 64, 64)))

	require.NoError(t, store.RemoveProject("alice", "proj-1"))

	assert.False(t, store.PairExists(pair))
	assert.True(t, store.PairExists(other))
}
