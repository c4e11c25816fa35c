package services

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/orgkit/presence/modules/personnel/domain/aggregates/employee"
	"github.com/orgkit/presence/pkg/serrors"
)

var rosterHeaders = []string{
	"Personnel Number", "Last Name", "First Name", "Department", "Section",
	"Team", "Service Type", "Current Status", "Since",
}

// ExcelExportService renders the visible roster as an xlsx workbook.
// Visibility filtering happens in the employee service, so the export is
// never wider than what the requester could read through the API.
type ExcelExportService struct {
	employees *EmployeeService
}

func NewExcelExportService(employees *EmployeeService) *ExcelExportService {
	return &ExcelExportService{employees: employees}
}

func (s *ExcelExportService) Roster(ctx context.Context, params *employee.FindParams) ([]byte, string, error) {
	items, _, err := s.employees.FindAll(ctx, params)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Roster"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, "", serrors.Persistence(err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for col, header := range rosterHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, "", serrors.Persistence(err)
		}
	}

	for i, item := range items {
		row := []any{
			item.PersonnelNumber,
			item.LastName,
			item.FirstName,
			derefOr(item.DepartmentName, ""),
			derefOr(item.SectionName, ""),
			derefOr(item.TeamName, ""),
			derefOr(item.ServiceType, ""),
			"",
			"",
		}
		if item.Status != nil {
			row[7] = item.Status.Name
			row[8] = item.Status.Since.Format("2006-01-02 15:04")
		}
		for col, value := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, "", serrors.Persistence(err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", serrors.Persistence(err)
	}
	filename := fmt.Sprintf("roster-%s.xlsx", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
