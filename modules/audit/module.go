package audit

import (
	"embed"

	"github.com/orgkit/presence/modules/audit/handlers"
	"github.com/orgkit/presence/modules/audit/infrastructure/persistence"
	"github.com/orgkit/presence/modules/audit/presentation/controllers"
	"github.com/orgkit/presence/modules/audit/services"
	"github.com/orgkit/presence/pkg/application"
)

//go:embed infrastructure/persistence/schema/audit-schema.sql
var MigrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct {
}

func (m *Module) Register(app application.Application) error {
	app.Migrations().RegisterSchema(MigrationFiles, "infrastructure/persistence/schema/audit-schema.sql")

	app.RegisterServices(
		services.NewAuditService(persistence.NewAuditRepository()),
	)
	app.RegisterControllers(
		controllers.NewAuditAPIController(app),
	)
	handlers.RegisterDomainEventHandlers(app)
	return nil
}

func (m *Module) Name() string {
	return "audit"
}
