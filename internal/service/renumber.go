package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storycraft-server/internal/assets"
	"storycraft-server/internal/models"
	"storycraft-server/internal/repository"
)

// Renumberer compacts the story shelf of a project so that page positions
// form the dense range 0..k-1, moving asset pairs along with the documents.
type Renumberer struct {
	pages  repository.PageRepository
	assets *assets.Store
	logger *zap.Logger
}

func NewRenumberer(pages repository.PageRepository, store *assets.Store, logger *zap.Logger) *Renumberer {
	return &Renumberer{
		pages:  pages,
		assets: store,
		logger: logger.Named("Renumberer"),
	}
}

// Renumber reassigns story positions 0..k-1 in shelf order and relocates the
// matching asset pairs. Pages are processed in ascending order, so a target
// slot is always free by the time its page is moved. It returns the number of
// pages whose position changed. Calling it on an already dense shelf is a
// no-op.
func (r *Renumberer) Renumber(ctx context.Context, ownerUser string, projectID uuid.UUID) (int, error) {
	status := models.StatusStory
	pages, err := r.pages.List(ctx, ownerUser, projectID, &status)
	if err != nil {
		return 0, fmt.Errorf("list story pages: %w", err)
	}

	moved := 0
	for target, page := range pages {
		if page.Position != nil && *page.Position == target {
			continue
		}
		if err := r.movePage(ctx, &pages[target], target); err != nil {
			return moved, err
		}
		moved++
	}
	return moved, nil
}

func (r *Renumberer) movePage(ctx context.Context, page *models.Page, target int) error {
	projectID := page.ProjectID.String()
	dst := assets.StoryPair(page.OwnerUser, projectID, target)

	if page.Position != nil {
		src := assets.StoryPair(page.OwnerUser, projectID, *page.Position)
		if err := r.assets.MovePair(src, dst); err != nil {
			// A missing source with files already at the target means a
			// previous run updated the shelf but not the document. The
			// document update below completes the repair.
			if !(errors.Is(err, models.ErrAssetNotFound) && r.assets.PairExists(dst)) {
				return fmt.Errorf("move pair of page %s to position %d: %w", page.ID, target, err)
			}
			r.logger.Warn("Asset pair already at target position, repairing document",
				zap.String("page_id", page.ID.String()),
				zap.Int("position", target))
		}
	} else if !r.assets.PairExists(dst) {
		return fmt.Errorf("page %s has no position and no pair at %d: %w",
			page.ID, target, models.ErrAssetNotFound)
	}

	pos := target
	page.Position = &pos
	page.ImagePath = dst.ImageRel()
	page.IconPath = dst.IconRel()
	if err := r.pages.Upsert(ctx, page); err != nil {
		return fmt.Errorf("persist renumbered page %s: %w", page.ID, err)
	}

	r.logger.Debug("Renumbered story page",
		zap.String("page_id", page.ID.String()),
		zap.Int("position", target))
	return nil
}
