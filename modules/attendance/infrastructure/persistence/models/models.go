package models

import "time"

type StatusType struct {
	ID         uint
	Name       string
	Color      string
	IsPresence bool
}

type AttendanceInterval struct {
	ID            uint
	EmployeeID    uint
	StatusTypeID  uint
	StartDatetime time.Time
	EndDatetime   *time.Time
	Note          *string
	ReportedBy    uint
	CreatedAt     time.Time
}
