package employee

type CreatedEvent struct {
	Employee Employee
	ActorID  uint
}

type UpdatedEvent struct {
	EmployeeID uint
	ActorID    uint
}

type DeletedEvent struct {
	EmployeeID      uint
	PersonnelNumber string
	ActorID         uint
}
