package personnel

import (
	"embed"

	orgpersistence "github.com/orgkit/presence/modules/org/infrastructure/persistence"
	orgservices "github.com/orgkit/presence/modules/org/services"

	"github.com/orgkit/presence/modules/personnel/infrastructure/persistence"
	"github.com/orgkit/presence/modules/personnel/presentation/controllers"
	"github.com/orgkit/presence/modules/personnel/services"
	"github.com/orgkit/presence/pkg/application"
)

//go:embed infrastructure/persistence/schema/personnel-schema.sql
var MigrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct {
}

func (m *Module) Register(app application.Application) error {
	app.Migrations().RegisterSchema(MigrationFiles, "infrastructure/persistence/schema/personnel-schema.sql")

	resolver := app.Service(orgservices.ScopeResolver{}).(*orgservices.ScopeResolver)
	employeeService := services.NewEmployeeService(
		persistence.NewEmployeeRepository(),
		orgpersistence.NewUnitRepository(),
		resolver,
		app.EventPublisher(),
	)
	app.RegisterServices(
		employeeService,
		services.NewExcelExportService(employeeService),
	)
	app.RegisterControllers(
		controllers.NewEmployeeAPIController(app),
	)
	return nil
}

func (m *Module) Name() string {
	return "personnel"
}
