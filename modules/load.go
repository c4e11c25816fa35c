package modules

import (
	"slices"

	"github.com/orgkit/presence/modules/attendance"
	"github.com/orgkit/presence/modules/audit"
	"github.com/orgkit/presence/modules/backup"
	"github.com/orgkit/presence/modules/org"
	"github.com/orgkit/presence/modules/personnel"
	"github.com/orgkit/presence/modules/transfer"
	"github.com/orgkit/presence/pkg/application"
)

// BuiltInModules in registration order. Org must come first because the
// other modules resolve its services during their registration, and
// personnel before attendance and transfer, which hook into employee
// deletion.
var BuiltInModules = []application.Module{
	org.NewModule(),
	personnel.NewModule(),
	attendance.NewModule(),
	transfer.NewModule(),
	audit.NewModule(),
	backup.NewModule(),
}

func Load(app application.Application, externalModules ...application.Module) error {
	return application.Load(app, slices.Concat(BuiltInModules, externalModules)...)
}
