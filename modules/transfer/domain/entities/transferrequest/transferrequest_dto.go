package transferrequest

type CreateDTO struct {
	EmployeeID uint    `json:"employee_id" validate:"required"`
	TargetType string  `json:"target_type" validate:"required"`
	TargetID   uint    `json:"target_id" validate:"required"`
	Notes      *string `json:"notes"`
}
