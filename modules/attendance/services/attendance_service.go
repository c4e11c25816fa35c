package services

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	orgservices "github.com/orgkit/presence/modules/org/services"

	"github.com/orgkit/presence/modules/attendance/domain/entities/interval"
	"github.com/orgkit/presence/pkg/composables"
	"github.com/orgkit/presence/pkg/eventbus"
	"github.com/orgkit/presence/pkg/serrors"
	"github.com/orgkit/presence/pkg/types"
)

const birthdayWindowDays = 7

// Birthday is an upcoming-birthday entry on the dashboard. DaysUntil is
// zero when the birthday is today.
type Birthday struct {
	EmployeeID uint
	FirstName  string
	LastName   string
	BirthDate  time.Time
	DaysUntil  int
}

// BulkResult reports the outcome of one entry of a bulk status update.
type BulkResult struct {
	EmployeeID uint
	Err        error
}

type AttendanceService struct {
	repo      interval.Repository
	resolver  *orgservices.ScopeResolver
	publisher eventbus.EventBus
	validate  *validator.Validate
	now       func() time.Time
}

func NewAttendanceService(
	repo interval.Repository,
	resolver *orgservices.ScopeResolver,
	publisher eventbus.EventBus,
) *AttendanceService {
	return &AttendanceService{
		repo:      repo,
		resolver:  resolver,
		publisher: publisher,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		now:       time.Now,
	}
}

// LogStatus closes any open interval for the employee and opens a new one
// in a single transaction. No prior open interval is the normal case.
func (s *AttendanceService) LogStatus(ctx context.Context, dto *interval.LogStatusDTO) error {
	identity, err := requireReporter(ctx)
	if err != nil {
		return err
	}
	if err := s.validate.Struct(dto); err != nil {
		return serrors.Validation("ATTENDANCE_INVALID", err.Error())
	}

	start := s.now()
	if dto.StartDatetime != nil {
		start = *dto.StartDatetime
	}
	entity := &interval.AttendanceInterval{
		EmployeeID:    dto.EmployeeID,
		StatusTypeID:  dto.StatusTypeID,
		StartDatetime: start,
		EndDatetime:   dto.EndDatetime,
		Note:          dto.Note,
		ReportedBy:    identity.EmployeeID,
	}

	err = composables.InTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.CloseOpen(txCtx, dto.EmployeeID, start); err != nil {
			return err
		}
		id, err := s.repo.Insert(txCtx, entity)
		if err != nil {
			return err
		}
		entity.ID = id
		return nil
	})
	if err != nil {
		return serrors.Persistence(err)
	}

	s.publisher.Publish(interval.StatusLoggedEvent{Interval: *entity, ActorID: identity.EmployeeID})
	return nil
}

// BulkLogStatus applies LogStatus per entry, best effort. An individual
// failure rolls back only its own transaction; remaining entries still
// run.
func (s *AttendanceService) BulkLogStatus(ctx context.Context, dtos []*interval.LogStatusDTO) []BulkResult {
	results := make([]BulkResult, 0, len(dtos))
	for _, dto := range dtos {
		if dto == nil {
			results = append(results, BulkResult{
				Err: serrors.Validation("ATTENDANCE_INVALID", "empty bulk entry"),
			})
			continue
		}
		results = append(results, BulkResult{
			EmployeeID: dto.EmployeeID,
			Err:        s.LogStatus(ctx, dto),
		})
	}
	return results
}

func (s *AttendanceService) StatusTypes(ctx context.Context) ([]interval.StatusType, error) {
	out, err := s.repo.StatusTypes(ctx)
	if err != nil {
		return nil, serrors.Persistence(err)
	}
	return out, nil
}

func (s *AttendanceService) History(ctx context.Context, employeeID uint, limit, offset int) ([]*interval.AttendanceInterval, error) {
	identity, err := requireReporter(ctx)
	if err != nil {
		return nil, err
	}
	visibility, err := s.resolver.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}
	out, err := s.repo.ListByEmployee(ctx, employeeID, visibility, limit, offset)
	if err != nil {
		return nil, serrors.Persistence(err)
	}
	return out, nil
}

func (s *AttendanceService) DashboardStats(ctx context.Context, filters *interval.DashboardFilters) ([]interval.DashboardStat, error) {
	identity, err := composables.UseIdentity(ctx)
	if err != nil {
		return nil, serrors.Authorization("NO_IDENTITY", "authentication required")
	}
	visibility, err := s.resolver.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}

	if filters == nil {
		filters = &interval.DashboardFilters{}
	}
	filters.Scope = visibility

	out, err := s.repo.DashboardCounts(ctx, filters)
	if err != nil {
		return nil, serrors.Persistence(err)
	}
	return out, nil
}

// MonthlySummary is the administrative month report, unscoped.
func (s *AttendanceService) MonthlySummary(ctx context.Context, year int, month time.Month) ([]interval.SummaryRow, error) {
	identity, err := composables.UseIdentity(ctx)
	if err != nil {
		return nil, serrors.Authorization("NO_IDENTITY", "authentication required")
	}
	if !identity.IsAdmin {
		return nil, serrors.Authorization("ADMIN_REQUIRED", "administrator role required")
	}
	if month < time.January || month > time.December {
		return nil, serrors.Validation("ATTENDANCE_INVALID_MONTH", "month out of range")
	}

	out, err := s.repo.MonthlySummary(ctx, year, month)
	if err != nil {
		return nil, serrors.Persistence(err)
	}
	return out, nil
}

// Birthdays lists visible active employees whose birthday falls within
// the next seven days, wrap-around safe at year end.
func (s *AttendanceService) Birthdays(ctx context.Context) ([]Birthday, error) {
	identity, err := composables.UseIdentity(ctx)
	if err != nil {
		return nil, serrors.Authorization("NO_IDENTITY", "authentication required")
	}
	visibility, err := s.resolver.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}

	candidates, err := s.repo.BirthdayCandidates(ctx, visibility)
	if err != nil {
		return nil, serrors.Persistence(err)
	}

	now := s.now()
	var out []Birthday
	for _, c := range candidates {
		days := daysUntilBirthday(now, c.BirthDate)
		if days > birthdayWindowDays {
			continue
		}
		out = append(out, Birthday{
			EmployeeID: c.EmployeeID,
			FirstName:  c.FirstName,
			LastName:   c.LastName,
			BirthDate:  c.BirthDate,
			DaysUntil:  days,
		})
	}
	return out, nil
}

// daysUntilBirthday measures the forward day-of-year distance from now to
// the next occurrence of the birth date. Crossing the year boundary wraps
// through the length of the current year.
func daysUntilBirthday(now, birth time.Time) int {
	target := time.Date(now.Year(), birth.Month(), birth.Day(), 0, 0, 0, 0, now.Location())
	days := target.YearDay() - now.YearDay()
	if days < 0 {
		days += yearLength(now.Year())
	}
	return days
}

func yearLength(year int) int {
	return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC).YearDay()
}

func requireReporter(ctx context.Context) (types.Identity, error) {
	identity, err := composables.UseIdentity(ctx)
	if err != nil {
		return types.Identity{}, serrors.Authorization("NO_IDENTITY", "authentication required")
	}
	if !identity.IsAdmin && !identity.IsCommander {
		return types.Identity{}, serrors.Authorization("REPORTER_REQUIRED", "commander or administrator role required")
	}
	return identity, nil
}
