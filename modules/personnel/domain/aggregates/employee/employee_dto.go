package employee

import "time"

type CreateDTO struct {
	FirstName       string     `json:"first_name" validate:"required"`
	LastName        string     `json:"last_name" validate:"required"`
	PersonnelNumber string     `json:"personnel_number" validate:"required"`
	NationalID      string     `json:"national_id" validate:"required"`
	BirthDate       *time.Time `json:"birth_date"`
	ServiceType     *string    `json:"service_type"`
	IsAdmin         bool       `json:"is_admin"`
	IsCommander     bool       `json:"is_commander"`
	TeamID          *uint      `json:"team_id"`
	SectionID       *uint      `json:"section_id"`
	DepartmentID    *uint      `json:"department_id"`
}

type UpdateDTO struct {
	FirstName       *string    `json:"first_name"`
	LastName        *string    `json:"last_name"`
	PersonnelNumber *string    `json:"personnel_number"`
	NationalID      *string    `json:"national_id"`
	IsAdmin         *bool      `json:"is_admin"`
	IsCommander     *bool      `json:"is_commander"`
	IsActive        *bool      `json:"is_active"`
	BirthDate       *time.Time `json:"birth_date"`
	ServiceType     *string    `json:"service_type"`
	TeamID          *uint      `json:"team_id"`
	SectionID       *uint      `json:"section_id"`
	DepartmentID    *uint      `json:"department_id"`
}

func (d *UpdateDTO) Values() *UpdateValues {
	return &UpdateValues{
		FirstName:       d.FirstName,
		LastName:        d.LastName,
		PersonnelNumber: d.PersonnelNumber,
		NationalID:      d.NationalID,
		IsAdmin:         d.IsAdmin,
		IsCommander:     d.IsCommander,
		IsActive:        d.IsActive,
		BirthDate:       d.BirthDate,
		ServiceType:     d.ServiceType,
		TeamID:          d.TeamID,
		SectionID:       d.SectionID,
		DepartmentID:    d.DepartmentID,
	}
}
