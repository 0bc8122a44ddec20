package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"storycraft-server/internal/models"
)

// DBTX accepts either a *pgxpool.Pool or a pgx.Tx, so repository methods can
// run standalone or inside a caller-owned transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PageRepository is the Page document store: upsert-by-id, exact-match
// queries and immediate read-after-write visibility.
type PageRepository interface {
	// GetByID returns the page or models.ErrPageNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Page, error)
	// List returns all pages of (ownerUser, projectID), optionally filtered
	// by status, ordered by position ascending with ties broken by id.
	// Pages without a position sort last.
	List(ctx context.Context, ownerUser string, projectID uuid.UUID, status *models.PageStatus) ([]models.Page, error)
	// Upsert fully replaces the stored document for the page's id
	// (last-writer-wins).
	Upsert(ctx context.Context, page *models.Page) error
	// Delete removes the page. Deleting an unknown id returns
	// models.ErrPageNotFound.
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProjectRepository stores project containers. (OwnerUser, Name) is unique.
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	GetByName(ctx context.Context, ownerUser, name string) (*models.Project, error)
	ListByOwner(ctx context.Context, ownerUser string) ([]models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id uuid.UUID) error
}
