package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storycraft-server/internal/models"
	"storycraft-server/internal/repository"
)

// ProjectService owns project containers. Deleting a project removes its
// pages and asset pairs as well.
type ProjectService struct {
	projects repository.ProjectRepository
	pages    repository.PageRepository
	assets   assetRemover
	logger   *zap.Logger
}

// assetRemover is the slice of the asset store project deletion needs.
type assetRemover interface {
	RemoveProject(ownerUser, projectID string) error
}

func NewProjectService(projects repository.ProjectRepository, pages repository.PageRepository, store assetRemover, logger *zap.Logger) *ProjectService {
	return &ProjectService{
		projects: projects,
		pages:    pages,
		assets:   store,
		logger:   logger.Named("ProjectService"),
	}
}

// CreateProject creates a project for ownerUser. Names are unique per owner.
func (s *ProjectService) CreateProject(ctx context.Context, ownerUser, name, overview, globalContext string) (*models.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: project name is empty", models.ErrInvalidInput)
	}

	now := time.Now().UTC()
	project := &models.Project{
		ID:            uuid.New(),
		OwnerUser:     ownerUser,
		Name:          name,
		Overview:      overview,
		GlobalContext: globalContext,
		Status:        models.ProjectStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	s.logger.Info("Created project",
		zap.String("project_id", project.ID.String()),
		zap.String("owner", ownerUser))
	return project, nil
}

// GetProject returns the project if it belongs to ownerUser.
func (s *ProjectService) GetProject(ctx context.Context, ownerUser string, projectID uuid.UUID) (*models.Project, error) {
	return s.owned(ctx, ownerUser, projectID)
}

// ListProjects returns all projects of ownerUser.
func (s *ProjectService) ListProjects(ctx context.Context, ownerUser string) ([]models.Project, error) {
	projects, err := s.projects.ListByOwner(ctx, ownerUser)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// UpdateProject applies the editable fields of upd to the project.
func (s *ProjectService) UpdateProject(ctx context.Context, ownerUser string, projectID uuid.UUID, upd models.ProjectUpdate) (*models.Project, error) {
	project, err := s.owned(ctx, ownerUser, projectID)
	if err != nil {
		return nil, err
	}
	upd.Apply(project)
	project.UpdatedAt = time.Now().UTC()
	if err := s.projects.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return project, nil
}

// DeleteProject removes the project, its page documents and its asset tree.
func (s *ProjectService) DeleteProject(ctx context.Context, ownerUser string, projectID uuid.UUID) error {
	project, err := s.owned(ctx, ownerUser, projectID)
	if err != nil {
		return err
	}

	// Page rows go with the project through the FK cascade; the asset tree
	// is removed explicitly.
	if err := s.projects.Delete(ctx, project.ID); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if err := s.assets.RemoveProject(ownerUser, projectID.String()); err != nil {
		return fmt.Errorf("remove project assets: %w", err)
	}

	s.logger.Info("Deleted project", zap.String("project_id", projectID.String()))
	return nil
}

func (s *ProjectService) owned(ctx context.Context, ownerUser string, projectID uuid.UUID) (*models.Project, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.OwnerUser != ownerUser {
		return nil, models.ErrForbidden
	}
	return project, nil
}
