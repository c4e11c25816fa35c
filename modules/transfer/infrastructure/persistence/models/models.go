package models

import "time"

type TransferRequest struct {
	ID          uint
	EmployeeID  uint
	RequesterID uint
	TargetType  string
	TargetID    uint
	Status      string
	Notes       *string
	Reason      *string
	CreatedAt   time.Time
	ResolvedAt  *time.Time
	ResolvedBy  *uint
}

type TransferListing struct {
	TransferRequest
	EmployeeName  string
	RequesterName string
	TargetName    *string
}
