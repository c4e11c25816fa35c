package models

import "time"

type Employee struct {
	ID                 uint
	FirstName          string
	LastName           string
	PersonnelNumber    string
	NationalID         *string
	PasswordHash       string
	MustChangePassword bool
	IsAdmin            bool
	IsCommander        bool
	IsActive           bool
	BirthDate          *time.Time
	ServiceType        *string
	TeamID             *uint
	SectionID          *uint
	DepartmentID       *uint
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// EmployeeDetails carries the joined display columns alongside the row.
type EmployeeDetails struct {
	Employee
	StatusTypeID   *uint
	StatusName     *string
	StatusColor    *string
	StatusSince    *time.Time
	TeamName       *string
	SectionName    *string
	DepartmentName *string
}
