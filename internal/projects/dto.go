package projects

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/calebmorton/schedtrack-backend/pkg/db/models"
	"github.com/calebmorton/schedtrack-backend/pkg/enums"
)

// ProjectDTO is the transport shape for a project.
type ProjectDTO struct {
	ID               uuid.UUID           `json:"id"`
	ProjectNumber    string              `json:"project_number"`
	Name             string              `json:"name"`
	AddressLine1     string              `json:"address_line1,omitempty"`
	AddressLine2     string              `json:"address_line2,omitempty"`
	City             string              `json:"city,omitempty"`
	State            string              `json:"state,omitempty"`
	ZipCode          string              `json:"zip_code,omitempty"`
	Country          string              `json:"country,omitempty"`
	Client           string              `json:"client"`
	PM               string              `json:"pm"`
	ProjectManagerID *uuid.UUID          `json:"project_manager_id,omitempty"`
	Status           enums.ProjectStatus `json:"status"`
	Notes            string              `json:"notes,omitempty"`
	TotalHours       decimal.Decimal     `json:"total_hours"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// CreateRequest carries the fields accepted when creating a project.
type CreateRequest struct {
	ProjectNumber    string     `json:"project_number" validate:"required,max=64"`
	Name             string     `json:"name" validate:"required,max=255"`
	AddressLine1     string     `json:"address_line1" validate:"max=255"`
	AddressLine2     string     `json:"address_line2" validate:"max=255"`
	City             string     `json:"city" validate:"max=128"`
	State            string     `json:"state" validate:"max=64"`
	ZipCode          string     `json:"zip_code" validate:"max=16"`
	Country          string     `json:"country" validate:"max=64"`
	Client           string     `json:"client" validate:"required,max=255"`
	PM               string     `json:"pm" validate:"required,max=255"`
	ProjectManagerID *uuid.UUID `json:"project_manager_id"`
	Status           string     `json:"status" validate:"omitempty,oneof=active on_hold complete"`
	Notes            string     `json:"notes"`
}

// UpdateRequest carries a partial project patch. Nil fields are untouched.
type UpdateRequest struct {
	ProjectNumber    *string    `json:"project_number" validate:"omitempty,max=64"`
	Name             *string    `json:"name" validate:"omitempty,max=255"`
	AddressLine1     *string    `json:"address_line1" validate:"omitempty,max=255"`
	AddressLine2     *string    `json:"address_line2" validate:"omitempty,max=255"`
	City             *string    `json:"city" validate:"omitempty,max=128"`
	State            *string    `json:"state" validate:"omitempty,max=64"`
	ZipCode          *string    `json:"zip_code" validate:"omitempty,max=16"`
	Country          *string    `json:"country" validate:"omitempty,max=64"`
	Client           *string    `json:"client" validate:"omitempty,max=255"`
	PM               *string    `json:"pm" validate:"omitempty,max=255"`
	ProjectManagerID *uuid.UUID `json:"project_manager_id"`
	Status           *string    `json:"status" validate:"omitempty,oneof=active on_hold complete"`
	Notes            *string    `json:"notes"`
}

// ListRequest configures project listing.
type ListRequest struct {
	Status *enums.ProjectStatus
	Search string
}

// FromModel maps a project model plus its logged hours to the DTO.
func FromModel(p *models.Project, totalHours decimal.Decimal) *ProjectDTO {
	if p == nil {
		return nil
	}
	return &ProjectDTO{
		ID:               p.ID,
		ProjectNumber:    p.ProjectNumber,
		Name:             p.Name,
		AddressLine1:     p.AddressLine1,
		AddressLine2:     p.AddressLine2,
		City:             p.City,
		State:            p.State,
		ZipCode:          p.ZipCode,
		Country:          p.Country,
		Client:           p.Client,
		PM:               p.PM,
		ProjectManagerID: p.ProjectManagerID,
		Status:           p.Status,
		Notes:            p.Notes,
		TotalHours:       totalHours,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func (r CreateRequest) toModel() *models.Project {
	status := enums.ProjectStatusActive
	if trimmed := strings.TrimSpace(r.Status); trimmed != "" {
		status = enums.ProjectStatus(trimmed)
	}
	country := strings.TrimSpace(r.Country)
	if country == "" {
		country = "US"
	}
	return &models.Project{
		ProjectNumber:    strings.TrimSpace(r.ProjectNumber),
		Name:             strings.TrimSpace(r.Name),
		AddressLine1:     strings.TrimSpace(r.AddressLine1),
		AddressLine2:     strings.TrimSpace(r.AddressLine2),
		City:             strings.TrimSpace(r.City),
		State:            strings.TrimSpace(r.State),
		ZipCode:          strings.TrimSpace(r.ZipCode),
		Country:          country,
		Client:           strings.TrimSpace(r.Client),
		PM:               strings.TrimSpace(r.PM),
		ProjectManagerID: r.ProjectManagerID,
		Status:           status,
		Notes:            r.Notes,
	}
}
