package persistence

import (
	"github.com/jackc/pgx/v5"

	"github.com/orgkit/presence/modules/personnel/domain/aggregates/employee"
	"github.com/orgkit/presence/modules/personnel/infrastructure/persistence/models"
)

func toDomainEmployee(row *models.Employee) *employee.Employee {
	return &employee.Employee{
		ID:                 row.ID,
		FirstName:          row.FirstName,
		LastName:           row.LastName,
		PersonnelNumber:    row.PersonnelNumber,
		NationalID:         row.NationalID,
		PasswordHash:       row.PasswordHash,
		MustChangePassword: row.MustChangePassword,
		IsAdmin:            row.IsAdmin,
		IsCommander:        row.IsCommander,
		IsActive:           row.IsActive,
		BirthDate:          row.BirthDate,
		ServiceType:        row.ServiceType,
		TeamID:             row.TeamID,
		SectionID:          row.SectionID,
		DepartmentID:       row.DepartmentID,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}
}

func toDBEmployee(entity *employee.Employee) *models.Employee {
	return &models.Employee{
		ID:                 entity.ID,
		FirstName:          entity.FirstName,
		LastName:           entity.LastName,
		PersonnelNumber:    entity.PersonnelNumber,
		NationalID:         entity.NationalID,
		PasswordHash:       entity.PasswordHash,
		MustChangePassword: entity.MustChangePassword,
		IsAdmin:            entity.IsAdmin,
		IsCommander:        entity.IsCommander,
		IsActive:           entity.IsActive,
		BirthDate:          entity.BirthDate,
		ServiceType:        entity.ServiceType,
		TeamID:             entity.TeamID,
		SectionID:          entity.SectionID,
		DepartmentID:       entity.DepartmentID,
	}
}

func toDomainDetails(row *models.EmployeeDetails) *employee.Details {
	details := &employee.Details{
		Employee:       *toDomainEmployee(&row.Employee),
		TeamName:       row.TeamName,
		SectionName:    row.SectionName,
		DepartmentName: row.DepartmentName,
	}
	if row.StatusTypeID != nil && row.StatusName != nil && row.StatusSince != nil {
		status := &employee.CurrentStatus{
			StatusTypeID: *row.StatusTypeID,
			Name:         *row.StatusName,
			Since:        *row.StatusSince,
		}
		if row.StatusColor != nil {
			status.Color = *row.StatusColor
		}
		details.Status = status
	}
	return details
}

func scanEmployeeDetails(row pgx.Row) (*employee.Details, error) {
	var db models.EmployeeDetails
	err := row.Scan(
		&db.ID,
		&db.FirstName,
		&db.LastName,
		&db.PersonnelNumber,
		&db.NationalID,
		&db.PasswordHash,
		&db.MustChangePassword,
		&db.IsAdmin,
		&db.IsCommander,
		&db.IsActive,
		&db.BirthDate,
		&db.ServiceType,
		&db.TeamID,
		&db.SectionID,
		&db.DepartmentID,
		&db.CreatedAt,
		&db.UpdatedAt,
		&db.StatusTypeID,
		&db.StatusName,
		&db.StatusColor,
		&db.StatusSince,
		&db.TeamName,
		&db.SectionName,
		&db.DepartmentName,
	)
	if err != nil {
		return nil, err
	}
	return toDomainDetails(&db), nil
}
