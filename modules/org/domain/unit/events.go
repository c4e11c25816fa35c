package unit

// CommanderChangedEvent fires after a unit's commander assignment changed.
// EmployeeID is nil when the commander was cleared.
type CommanderChangedEvent struct {
	UnitType   Type
	UnitID     uint
	EmployeeID *uint
	ActorID    uint
}
