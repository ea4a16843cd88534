package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/calebmorton/schedtrack-backend/pkg/enums"
)

// Project identifies a job site under management.
type Project struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectNumber    string              `gorm:"column:project_number;not null;unique"`
	Name             string              `gorm:"column:name;not null"`
	AddressLine1     string              `gorm:"column:address_line1"`
	AddressLine2     string              `gorm:"column:address_line2"`
	City             string              `gorm:"column:city"`
	State            string              `gorm:"column:state"`
	ZipCode          string              `gorm:"column:zip_code"`
	Country          string              `gorm:"column:country;default:'US'"`
	Client           string              `gorm:"column:client;not null"`
	PM               string              `gorm:"column:pm;not null"`
	ProjectManagerID *uuid.UUID          `gorm:"column:project_manager_id;type:uuid"`
	ProjectManager   *User               `gorm:"foreignKey:ProjectManagerID"`
	Status           enums.ProjectStatus `gorm:"column:status;type:project_status;not null;default:'active'"`
	Notes            string              `gorm:"column:notes"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// HasAddress reports whether the project has enough location data to geocode.
func (p Project) HasAddress() bool {
	return strings.TrimSpace(p.City) != "" || strings.TrimSpace(p.State) != ""
}
