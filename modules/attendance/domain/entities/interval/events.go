package interval

type StatusLoggedEvent struct {
	Interval AttendanceInterval
	ActorID  uint
}
