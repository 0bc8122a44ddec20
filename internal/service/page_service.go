package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storycraft-server/internal/ai"
	"storycraft-server/internal/assets"
	"storycraft-server/internal/models"
	"storycraft-server/internal/repository"
)

const (
	placeholderStoryText = "Add your story here"
	placeholderImageDesc = "Describe associated image here"
)

// PageService owns the page lifecycle: creation, editing, crafting and the
// moves between the workshop, story and storage shelves. Shelf mutations of a
// project are serialized through a per-project lock.
type PageService struct {
	pages       repository.PageRepository
	projects    repository.ProjectRepository
	assets      *assets.Store
	ai          ai.Client
	contextB    *ContextBuilder
	renumberer  *Renumberer
	locks       *projectLocks
	styleSuffix string
	logger      *zap.Logger
}

func NewPageService(
	pages repository.PageRepository,
	projects repository.ProjectRepository,
	store *assets.Store,
	aiClient ai.Client,
	contextB *ContextBuilder,
	styleSuffix string,
	logger *zap.Logger,
) *PageService {
	return &PageService{
		pages:       pages,
		projects:    projects,
		assets:      store,
		ai:          aiClient,
		contextB:    contextB,
		renumberer:  NewRenumberer(pages, store, logger),
		locks:       newProjectLocks(),
		styleSuffix: styleSuffix,
		logger:      logger.Named("PageService"),
	}
}

// CreatePage adds a fresh workshop page to the project, filled with the
// placeholder text and image so it is fully renderable before any generation.
func (s *PageService) CreatePage(ctx context.Context, ownerUser string, projectID uuid.UUID) (*models.Page, error) {
	if _, err := s.ownedProject(ctx, ownerUser, projectID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	id := uuid.New()
	page := &models.Page{
		ID:               id,
		OwnerUser:        ownerUser,
		ProjectID:        projectID,
		StoryText:        placeholderStoryText,
		ImageDescription: placeholderImageDesc,
		AssetID:          id.String(),
		ImagePath:        models.PlaceholderImagePath,
		IconPath:         models.PlaceholderIconPath,
		Status:           models.StatusWorkshop,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.pages.Upsert(ctx, page); err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}

	s.logger.Info("Created page",
		zap.String("page_id", page.ID.String()),
		zap.String("project_id", projectID.String()))
	return page, nil
}

// GetPage returns the page if it belongs to ownerUser.
func (s *PageService) GetPage(ctx context.Context, ownerUser string, pageID uuid.UUID) (*models.Page, error) {
	return s.ownedPage(ctx, ownerUser, pageID)
}

// ListPages returns the project's pages, optionally filtered by status,
// ordered by story position.
func (s *PageService) ListPages(ctx context.Context, ownerUser string, projectID uuid.UUID, status *models.PageStatus) ([]models.Page, error) {
	if _, err := s.ownedProject(ctx, ownerUser, projectID); err != nil {
		return nil, err
	}
	pages, err := s.pages.List(ctx, ownerUser, projectID, status)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	return pages, nil
}

// UpdatePage applies the editable fields of upd to the page. Lifecycle
// fields cannot be changed this way.
func (s *PageService) UpdatePage(ctx context.Context, ownerUser string, pageID uuid.UUID, upd models.PageUpdate) (*models.Page, error) {
	page, err := s.ownedPage(ctx, ownerUser, pageID)
	if err != nil {
		return nil, err
	}
	upd.Apply(page)
	page.UpdatedAt = time.Now().UTC()
	if err := s.pages.Upsert(ctx, page); err != nil {
		return nil, fmt.Errorf("update page: %w", err)
	}
	return page, nil
}

// DeletePage removes the page document and its asset pair. Deleting a story
// page closes the gap it leaves on the shelf.
func (s *PageService) DeletePage(ctx context.Context, ownerUser string, pageID uuid.UUID) error {
	page, err := s.ownedPage(ctx, ownerUser, pageID)
	if err != nil {
		return err
	}

	unlock := s.locks.lock(page.OwnerUser, page.ProjectID)
	defer unlock()

	page, err = s.ownedPage(ctx, ownerUser, pageID)
	if err != nil {
		return err
	}

	if err := s.assets.RemovePair(s.pairFor(page)); err != nil {
		return fmt.Errorf("remove asset pair: %w", err)
	}
	if err := s.pages.Delete(ctx, page.ID); err != nil {
		return fmt.Errorf("delete page: %w", err)
	}

	if page.Status == models.StatusStory {
		if _, err := s.renumberer.Renumber(ctx, page.OwnerUser, page.ProjectID); err != nil {
			return fmt.Errorf("renumber after delete: %w", err)
		}
	}

	s.logger.Info("Deleted page", zap.String("page_id", pageID.String()))
	return nil
}

// CraftImage generates an image for the page's description and installs it as
// the page's asset pair. When the page already has a generated image the call
// is a no-op unless regenerate is set. Generation failures leave both the
// document and the shelf untouched.
func (s *PageService) CraftImage(ctx context.Context, ownerUser string, pageID uuid.UUID, regenerate bool) (*models.Page, error) {
	page, err := s.ownedPage(ctx, ownerUser, pageID)
	if err != nil {
		return nil, err
	}
	if page.HasGeneratedImage() && !regenerate {
		s.logger.Debug("Image already generated, skipping craft",
			zap.String("page_id", pageID.String()))
		return page, nil
	}

	description := strings.TrimSpace(page.ImageDescription)
	if description == "" {
		return nil, fmt.Errorf("%w: image description is empty", models.ErrInvalidInput)
	}

	// Generation happens outside the project lock: it is slow and touches
	// nothing locally until it has succeeded.
	prompt := ai.BuildImagePrompt(description, s.styleSuffix)
	imageData, err := s.ai.GenerateImage(ctx, prompt)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(page.OwnerUser, page.ProjectID)
	defer unlock()

	// The page may have moved shelves or been deleted while generating.
	page, err = s.ownedPage(ctx, ownerUser, pageID)
	if err != nil {
		return nil, err
	}

	pair := s.pairFor(page)
	if err := s.assets.WritePair(pair, imageData); err != nil {
		return nil, fmt.Errorf("install generated image: %w", err)
	}

	page.GeneratedImageDescription = description
	page.ImagePath = pair.ImageRel()
	page.IconPath = pair.IconRel()
	page.UpdatedAt = time.Now().UTC()
	if err := s.pages.Upsert(ctx, page); err != nil {
		return nil, fmt.Errorf("persist crafted page: %w", err)
	}

	s.logger.Info("Crafted image",
		zap.String("page_id", pageID.String()),
		zap.String("image_path", page.ImagePath))
	return page, nil
}

// CraftText generates a continuation of the page's text, conditioned on the
// project's global context and the story so far. The suggestion is returned
// to the caller and never written to the page.
func (s *PageService) CraftText(ctx context.Context, ownerUser string, pageID uuid.UUID) (string, error) {
	page, err := s.ownedPage(ctx, ownerUser, pageID)
	if err != nil {
		return "", err
	}
	project, err := s.ownedProject(ctx, ownerUser, page.ProjectID)
	if err != nil {
		return "", err
	}

	status := models.StatusStory
	storyPages, err := s.pages.List(ctx, ownerUser, page.ProjectID, &status)
	if err != nil {
		return "", fmt.Errorf("list story pages: %w", err)
	}

	storyContext := s.contextB.Build(storyPages, page.ID)
	if gc := strings.TrimSpace(project.GlobalContext); gc != "" {
		if storyContext == "" {
			storyContext = gc
		} else {
			storyContext = gc + "\n\n" + storyContext
		}
	}

	suggestion, err := s.ai.GenerateText(ctx, storyContext, page.StoryText)
	if err != nil {
		return "", err
	}
	return suggestion, nil
}

// MoveToStory appends a workshop page to the end of the story shelf. The
// workshop asset pair must exist; nothing is mutated when it does not.
func (s *PageService) MoveToStory(ctx context.Context, ownerUser string, pageID uuid.UUID) (*models.Page, error) {
	page, err := s.ownedPage(ctx, ownerUser, pageID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(page.OwnerUser, page.ProjectID)
	defer unlock()

	page, err = s.ownedPage(ctx, ownerUser, pageID)
	if err != nil {
		return nil, err
	}
	if page.Status != models.StatusWorkshop {
		return nil, fmt.Errorf("%w: cannot move a %s page to the story", models.ErrInvalidTransition, page.Status)
	}

	projectID := page.ProjectID.String()
	src := assets.WorkshopPair(page.OwnerUser, projectID, page.AssetID)
	if !s.assets.PairExists(src) {
		return nil, fmt.Errorf("%w: workshop pair %s is incomplete", models.ErrAssetNotFound, page.AssetID)
	}

	status := models.StatusStory
	storyPages, err := s.pages.List(ctx, ownerUser, page.ProjectID, &status)
	if err != nil {
		return nil, fmt.Errorf("list story pages: %w", err)
	}
	position := len(storyPages)

	dst := assets.StoryPair(page.OwnerUser, projectID, position)
	if err := s.assets.MovePair(src, dst); err != nil {
		return nil, fmt.Errorf("move pair to story: %w", err)
	}

	page.Status = models.StatusStory
	page.Position = &position
	page.ImagePath = dst.ImageRel()
	page.IconPath = dst.IconRel()
	page.UpdatedAt = time.Now().UTC()
	if err := s.pages.Upsert(ctx, page); err != nil {
		return nil, fmt.Errorf("persist story page: %w", err)
	}

	if _, err := s.renumberer.Renumber(ctx, page.OwnerUser, page.ProjectID); err != nil {
		return nil, fmt.Errorf("renumber after move: %w", err)
	}

	s.logger.Info("Moved page to story",
		zap.String("page_id", pageID.String()),
		zap.Int("position", position))
	return page, nil
}

// MoveToWorkshop takes a story page back to the workshop under a fresh asset
// id and closes the gap it leaves on the shelf.
func (s *PageService) MoveToWorkshop(ctx context.Context, ownerUser string, pageID uuid.UUID) (*models.Page, error) {
	page, err := s.ownedPage(ctx, ownerUser, pageID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(page.OwnerUser, page.ProjectID)
	defer unlock()

	page, err = s.ownedPage(ctx, ownerUser, pageID)
	if err != nil {
		return nil, err
	}
	if page.Status != models.StatusStory || page.Position == nil {
		return nil, fmt.Errorf("%w: cannot move a %s page to the workshop", models.ErrInvalidTransition, page.Status)
	}

	if err := s.leaveStory(ctx, page, models.StatusWorkshop); err != nil {
		return nil, err
	}

	s.logger.Info("Moved page to workshop", zap.String("page_id", pageID.String()))
	return page, nil
}

// ArchivePage retires the page to storage. A story page leaves the shelf the
// same way a workshop move does; a workshop page keeps its pair in place.
// Archiving an already stored page is a no-op.
func (s *PageService) ArchivePage(ctx context.Context, ownerUser string, pageID uuid.UUID) (*models.Page, error) {
	page, err := s.ownedPage(ctx, ownerUser, pageID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(page.OwnerUser, page.ProjectID)
	defer unlock()

	page, err = s.ownedPage(ctx, ownerUser, pageID)
	if err != nil {
		return nil, err
	}

	switch page.Status {
	case models.StatusStorage:
		return page, nil
	case models.StatusStory:
		if page.Position == nil {
			return nil, fmt.Errorf("%w: story page %s has no position", models.ErrInvalidTransition, pageID)
		}
		if err := s.leaveStory(ctx, page, models.StatusStorage); err != nil {
			return nil, err
		}
	default:
		page.Status = models.StatusStorage
		page.UpdatedAt = time.Now().UTC()
		if err := s.pages.Upsert(ctx, page); err != nil {
			return nil, fmt.Errorf("persist archived page: %w", err)
		}
	}

	s.logger.Info("Archived page", zap.String("page_id", pageID.String()))
	return page, nil
}

// RepairProject re-establishes the dense story numbering after an
// interrupted move. It returns the number of pages that were relocated.
func (s *PageService) RepairProject(ctx context.Context, ownerUser string, projectID uuid.UUID) (int, error) {
	if _, err := s.ownedProject(ctx, ownerUser, projectID); err != nil {
		return 0, err
	}

	unlock := s.locks.lock(ownerUser, projectID)
	defer unlock()

	moved, err := s.renumberer.Renumber(ctx, ownerUser, projectID)
	if err != nil {
		return moved, fmt.Errorf("repair project: %w", err)
	}
	if moved > 0 {
		s.logger.Info("Repaired story numbering",
			zap.String("project_id", projectID.String()),
			zap.Int("moved", moved))
	}
	return moved, nil
}

// leaveStory moves the page's pair off the story shelf under a fresh asset
// id, sets the new status and renumbers the remaining pages. The caller
// holds the project lock.
func (s *PageService) leaveStory(ctx context.Context, page *models.Page, status models.PageStatus) error {
	projectID := page.ProjectID.String()
	src := assets.StoryPair(page.OwnerUser, projectID, *page.Position)
	assetID := uuid.New().String()
	dst := assets.WorkshopPair(page.OwnerUser, projectID, assetID)

	if err := s.assets.MovePair(src, dst); err != nil {
		return fmt.Errorf("move pair off story shelf: %w", err)
	}

	page.Status = status
	page.Position = nil
	page.AssetID = assetID
	page.ImagePath = dst.ImageRel()
	page.IconPath = dst.IconRel()
	page.UpdatedAt = time.Now().UTC()
	if err := s.pages.Upsert(ctx, page); err != nil {
		return fmt.Errorf("persist page leaving story: %w", err)
	}

	if _, err := s.renumberer.Renumber(ctx, page.OwnerUser, page.ProjectID); err != nil {
		return fmt.Errorf("renumber after leaving story: %w", err)
	}
	return nil
}

// pairFor returns the asset pair the page's files live at, shelf dependent.
func (s *PageService) pairFor(page *models.Page) assets.Pair {
	projectID := page.ProjectID.String()
	if page.Status == models.StatusStory && page.Position != nil {
		return assets.StoryPair(page.OwnerUser, projectID, *page.Position)
	}
	return assets.WorkshopPair(page.OwnerUser, projectID, page.AssetID)
}

func (s *PageService) ownedPage(ctx context.Context, ownerUser string, pageID uuid.UUID) (*models.Page, error) {
	page, err := s.pages.GetByID(ctx, pageID)
	if err != nil {
		return nil, err
	}
	if page.OwnerUser != ownerUser {
		return nil, models.ErrForbidden
	}
	return page, nil
}

func (s *PageService) ownedProject(ctx context.Context, ownerUser string, projectID uuid.UUID) (*models.Project, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.OwnerUser != ownerUser {
		return nil, models.ErrForbidden
	}
	return project, nil
}
