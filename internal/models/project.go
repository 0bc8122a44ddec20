package models

import (
	"time"

	"github.com/google/uuid"
)

// ProjectStatusActive is the status new projects start with.
const ProjectStatusActive = "active"

// Project is a container for pages. (OwnerUser, Name) is unique.
type Project struct {
	ID            uuid.UUID `db:"id" json:"id"`
	OwnerUser     string    `db:"owner_user" json:"owner_user"`
	Name          string    `db:"name" json:"name"`
	Overview      string    `db:"overview" json:"overview"`
	GlobalContext string    `db:"global_context" json:"global_context"`
	Status        string    `db:"status" json:"status"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// ProjectUpdate is the whitelisted set of mutable project fields.
type ProjectUpdate struct {
	Name          *string `json:"name,omitempty"`
	Overview      *string `json:"overview,omitempty"`
	GlobalContext *string `json:"global_context,omitempty"`
	Status        *string `json:"status,omitempty"`
}

// Apply copies the set fields onto the project.
func (u ProjectUpdate) Apply(p *Project) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Overview != nil {
		p.Overview = *u.Overview
	}
	if u.GlobalContext != nil {
		p.GlobalContext = *u.GlobalContext
	}
	if u.Status != nil {
		p.Status = *u.Status
	}
}
