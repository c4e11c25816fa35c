package backup

import (
	"github.com/orgkit/presence/modules/backup/services"
	"github.com/orgkit/presence/pkg/application"
	"github.com/orgkit/presence/pkg/configuration"
)

func NewModule() application.Module {
	return &Module{}
}

type Module struct {
}

func (m *Module) Register(app application.Application) error {
	worker, err := services.NewBackupWorker(app.Pool(), configuration.Use().Backup, app.Logger())
	if err != nil {
		return err
	}
	app.RegisterServices(worker)
	return nil
}

func (m *Module) Name() string {
	return "backup"
}
