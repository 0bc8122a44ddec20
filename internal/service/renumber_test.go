package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storycraft-server/internal/assets"
	"storycraft-server/internal/models"
	"storycraft-server/internal/repository/mocks"
)

const testUser = "alice"

func newStoryDoc(ownerUser string, projectID uuid.UUID, position int) models.Page {
	pos := position
	pair := assets.StoryPair(ownerUser, projectID.String(), position)
	return models.Page{
		ID:        uuid.New(),
		OwnerUser: ownerUser,
		ProjectID: projectID,
		Status:    models.StatusStory,
		Position:  &pos,
		ImagePath: pair.ImageRel(),
		IconPath:  pair.IconRel(),
	}
}

func writePairFiles(t *testing.T, store *assets.Store, pair assets.Pair) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(store.ImagePath(pair)), 0o755))
	require.NoError(t, os.WriteFile(store.ImagePath(pair), []byte("image"), 0o644))
	require.NoError(t, os.WriteFile(store.IconPath(pair), []byte("icon"), 0o644))
}

func TestRenumberDenseShelfIsNoOp(t *testing.T) {
	store := assets.NewStore(t.TempDir(), zap.NewNop())
	pages := new(mocks.PageRepository)
	projectID := uuid.New()

	docs := []models.Page{
		newStoryDoc(testUser, projectID, 0),
		newStoryDoc(testUser, projectID, 1),
	}
	status := models.StatusStory
	pages.On("List", mock.Anything, testUser, projectID, &status).Return(docs, nil)

	r := NewRenumberer(pages, store, zap.NewNop())
	moved, err := r.Renumber(context.Background(), testUser, projectID)

	require.NoError(t, err)
	assert.Equal(t, 0, moved)
	pages.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestRenumberClosesGap(t *testing.T) {
	store := assets.NewStore(t.TempDir(), zap.NewNop())
	pages := new(mocks.PageRepository)
	projectID := uuid.New()

	// Position 1 was deleted, leaving 0, 2, 3.
	docs := []models.Page{
		newStoryDoc(testUser, projectID, 0),
		newStoryDoc(testUser, projectID, 2),
		newStoryDoc(testUser, projectID, 3),
	}
	for _, p := range []int{0, 2, 3} {
		writePairFiles(t, store, assets.StoryPair(testUser, projectID.String(), p))
	}

	status := models.StatusStory
	pages.On("List", mock.Anything, testUser, projectID, &status).Return(docs, nil)
	pages.On("Upsert", mock.Anything, mock.Anything).Return(nil)

	r := NewRenumberer(pages, store, zap.NewNop())
	moved, err := r.Renumber(context.Background(), testUser, projectID)

	require.NoError(t, err)
	assert.Equal(t, 2, moved)
	for _, p := range []int{0, 1, 2} {
		assert.True(t, store.PairExists(assets.StoryPair(testUser, projectID.String(), p)), "pair %d", p)
	}
	assert.False(t, store.PairExists(assets.StoryPair(testUser, projectID.String(), 3)))
	pages.AssertNumberOfCalls(t, "Upsert", 2)
}

func TestRenumberRepairsHalfAppliedMove(t *testing.T) {
	store := assets.NewStore(t.TempDir(), zap.NewNop())
	pages := new(mocks.PageRepository)
	projectID := uuid.New()

	// An earlier run moved the files from 2 to 1 but crashed before writing
	// the document. The shelf holds 0 and 1; the document still says 2.
	docs := []models.Page{
		newStoryDoc(testUser, projectID, 0),
		newStoryDoc(testUser, projectID, 2),
	}
	writePairFiles(t, store, assets.StoryPair(testUser, projectID.String(), 0))
	writePairFiles(t, store, assets.StoryPair(testUser, projectID.String(), 1))

	status := models.StatusStory
	pages.On("List", mock.Anything, testUser, projectID, &status).Return(docs, nil)
	pages.On("Upsert", mock.Anything, mock.MatchedBy(func(p *models.Page) bool {
		return p.Position != nil && *p.Position == 1
	})).Return(nil)

	r := NewRenumberer(pages, store, zap.NewNop())
	moved, err := r.Renumber(context.Background(), testUser, projectID)

	require.NoError(t, err)
	assert.Equal(t, 1, moved)
	pages.AssertExpectations(t)
}

func TestRenumberMissingAssetFails(t *testing.T) {
	store := assets.NewStore(t.TempDir(), zap.NewNop())
	pages := new(mocks.PageRepository)
	projectID := uuid.New()

	// Files for position 2 are gone entirely; the gap cannot be closed.
	docs := []models.Page{
		newStoryDoc(testUser, projectID, 0),
		newStoryDoc(testUser, projectID, 2),
	}
	writePairFiles(t, store, assets.StoryPair(testUser, projectID.String(), 0))

	status := models.StatusStory
	pages.On("List", mock.Anything, testUser, projectID, &status).Return(docs, nil)

	r := NewRenumberer(pages, store, zap.NewNop())
	_, err := r.Renumber(context.Background(), testUser, projectID)

	assert.ErrorIs(t, err, models.ErrAssetNotFound)
	pages.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}
