package transfer

import (
	"embed"

	orgpersistence "github.com/orgkit/presence/modules/org/infrastructure/persistence"
	personnelservices "github.com/orgkit/presence/modules/personnel/services"

	"github.com/orgkit/presence/modules/transfer/infrastructure/persistence"
	"github.com/orgkit/presence/modules/transfer/presentation/controllers"
	"github.com/orgkit/presence/modules/transfer/services"
	"github.com/orgkit/presence/pkg/application"
)

//go:embed infrastructure/persistence/schema/transfer-schema.sql
var MigrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct {
}

func (m *Module) Register(app application.Application) error {
	app.Migrations().RegisterSchema(MigrationFiles, "infrastructure/persistence/schema/transfer-schema.sql")

	repo := persistence.NewTransferRepository()
	app.RegisterServices(
		services.NewTransferService(repo, orgpersistence.NewUnitRepository(), app.EventPublisher()),
	)

	employees := app.Service(personnelservices.EmployeeService{}).(*personnelservices.EmployeeService)
	employees.RegisterPurger(repo)

	app.RegisterControllers(
		controllers.NewTransferAPIController(app),
	)
	return nil
}

func (m *Module) Name() string {
	return "transfer"
}
