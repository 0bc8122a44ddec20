package models

import (
	"time"

	"github.com/google/uuid"
)

// PageStatus describes which shelf a page currently lives on.
type PageStatus string

const (
	// StatusNew is transient: a page materializes into workshop on first save.
	StatusNew      PageStatus = "new"
	StatusWorkshop PageStatus = "workshop"
	StatusStory    PageStatus = "story"
	StatusStorage  PageStatus = "storage"
)

// IsValid reports whether s is one of the known page statuses.
func (s PageStatus) IsValid() bool {
	switch s {
	case StatusNew, StatusWorkshop, StatusStory, StatusStorage:
		return true
	}
	return false
}

// Placeholder asset references used until a page gets its first generated image.
const (
	PlaceholderImagePath = "_static/new_page.png"
	PlaceholderIconPath  = "_static/new_page_small.png"
)

// Page is a single illustrated page of a project's story.
// Position is only meaningful while Status == StatusStory; over all story
// pages of one project the positions are dense 0..k-1.
type Page struct {
	ID        uuid.UUID `db:"id" json:"id"`
	OwnerUser string    `db:"owner_user" json:"owner_user"`
	ProjectID uuid.UUID `db:"project_id" json:"project_id"`

	StoryText        string `db:"story_text" json:"story_text"`
	ImageDescription string `db:"image_description" json:"image_description"`
	// GeneratedImageDescription is the AI-refined prompt actually sent to the
	// image model, kept for reproducibility. Empty until the first craft.
	GeneratedImageDescription string `db:"generated_image_description" json:"generated_image_description,omitempty"`

	// AssetID names the page's asset pair while it is off the story shelf
	// (workshop/<asset_id>.png). It starts as the page id and is re-generated
	// every time the page leaves the story shelf.
	AssetID   string `db:"asset_id" json:"asset_id"`
	ImagePath string `db:"image_path" json:"image_path"`
	IconPath  string `db:"icon_path" json:"icon_path"`

	Status   PageStatus `db:"status" json:"status"`
	Position *int       `db:"position" json:"position,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// HasGeneratedImage reports whether the page already points at a real
// generated asset pair rather than the shared placeholders.
func (p *Page) HasGeneratedImage() bool {
	return p.ImagePath != "" && p.ImagePath != PlaceholderImagePath
}

// PageUpdate is the whitelisted set of fields a caller may change on a page.
// Shelf transitions go through the dedicated lifecycle operations, never
// through an update.
type PageUpdate struct {
	StoryText        *string `json:"story_text,omitempty"`
	ImageDescription *string `json:"image_description,omitempty"`
}

// Apply copies the set fields onto the page, field by field.
func (u PageUpdate) Apply(p *Page) {
	if u.StoryText != nil {
		p.StoryText = *u.StoryText
	}
	if u.ImageDescription != nil {
		p.ImageDescription = *u.ImageDescription
	}
}
