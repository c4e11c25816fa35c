package org

import (
	"embed"

	"github.com/orgkit/presence/modules/org/infrastructure/persistence"
	"github.com/orgkit/presence/modules/org/presentation/controllers"
	"github.com/orgkit/presence/modules/org/services"
	"github.com/orgkit/presence/pkg/application"
)

//go:embed infrastructure/persistence/schema/org-schema.sql
var MigrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct {
}

func (m *Module) Register(app application.Application) error {
	app.Migrations().RegisterSchema(MigrationFiles, "infrastructure/persistence/schema/org-schema.sql")

	unitRepo := persistence.NewUnitRepository()
	app.RegisterServices(
		services.NewHierarchyService(unitRepo, app.EventPublisher()),
		services.NewScopeResolver(unitRepo),
	)
	app.RegisterControllers(
		controllers.NewOrgAPIController(app),
	)
	return nil
}

func (m *Module) Name() string {
	return "org"
}
