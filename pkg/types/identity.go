package types

// Identity is the resolved requester, produced once at the request boundary.
// The core never parses tokens itself.
type Identity struct {
	EmployeeID  uint
	IsAdmin     bool
	IsCommander bool
}
