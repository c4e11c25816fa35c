package attendance

import (
	"embed"

	orgservices "github.com/orgkit/presence/modules/org/services"
	personnelservices "github.com/orgkit/presence/modules/personnel/services"

	"github.com/orgkit/presence/modules/attendance/infrastructure/persistence"
	"github.com/orgkit/presence/modules/attendance/presentation/controllers"
	"github.com/orgkit/presence/modules/attendance/services"
	"github.com/orgkit/presence/pkg/application"
)

//go:embed infrastructure/persistence/schema/attendance-schema.sql
var MigrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct {
}

func (m *Module) Register(app application.Application) error {
	app.Migrations().RegisterSchema(MigrationFiles, "infrastructure/persistence/schema/attendance-schema.sql")

	repo := persistence.NewAttendanceRepository()
	resolver := app.Service(orgservices.ScopeResolver{}).(*orgservices.ScopeResolver)
	app.RegisterServices(
		services.NewAttendanceService(repo, resolver, app.EventPublisher()),
	)

	// Employee deletion must also empty the employee's ledger.
	employees := app.Service(personnelservices.EmployeeService{}).(*personnelservices.EmployeeService)
	employees.RegisterPurger(repo)

	app.RegisterControllers(
		controllers.NewAttendanceAPIController(app),
	)
	return nil
}

func (m *Module) Name() string {
	return "attendance"
}
