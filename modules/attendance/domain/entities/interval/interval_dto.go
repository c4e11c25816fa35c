package interval

import "time"

type LogStatusDTO struct {
	EmployeeID    uint       `json:"employee_id" validate:"required"`
	StatusTypeID  uint       `json:"status_type_id" validate:"required"`
	Note          *string    `json:"note"`
	StartDatetime *time.Time `json:"start_datetime"`
	EndDatetime   *time.Time `json:"end_datetime"`
}
