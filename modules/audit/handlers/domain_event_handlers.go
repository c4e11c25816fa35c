package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/orgkit/presence/modules/attendance/domain/entities/interval"
	"github.com/orgkit/presence/modules/audit/domain/entities/auditlog"
	"github.com/orgkit/presence/modules/audit/services"
	"github.com/orgkit/presence/modules/org/domain/unit"
	"github.com/orgkit/presence/modules/personnel/domain/aggregates/employee"
	"github.com/orgkit/presence/modules/transfer/domain/entities/transferrequest"
	"github.com/orgkit/presence/pkg/application"
	"github.com/orgkit/presence/pkg/composables"
)

// DomainEventsHandler turns published domain events into audit entries.
// Each entry is written on its own connection, after the originating
// transaction has already committed, so a failed write only produces a
// warning in the log.
type DomainEventsHandler struct {
	app     application.Application
	service *services.AuditService
	logger  *logrus.Logger
}

func RegisterDomainEventHandlers(app application.Application) {
	handler := &DomainEventsHandler{
		app:     app,
		service: app.Service(services.AuditService{}).(*services.AuditService),
		logger:  app.Logger(),
	}
	bus := app.EventPublisher()
	bus.Subscribe(handler.onEmployeeCreated)
	bus.Subscribe(handler.onEmployeeUpdated)
	bus.Subscribe(handler.onEmployeeDeleted)
	bus.Subscribe(handler.onCommanderChanged)
	bus.Subscribe(handler.onStatusLogged)
	bus.Subscribe(handler.onTransferCreated)
	bus.Subscribe(handler.onTransferResolved)
}

func (h *DomainEventsHandler) write(entry *auditlog.AuditLog) {
	ctx := composables.WithPool(context.Background(), h.app.Pool())
	if err := h.service.Log(ctx, entry); err != nil {
		h.logger.WithError(err).
			WithField("action_type", entry.ActionType).
			Warn("failed to persist audit log")
	}
}

func (h *DomainEventsHandler) onEmployeeCreated(event employee.CreatedEvent) {
	id := event.Employee.ID
	h.write(&auditlog.AuditLog{
		ActorID:     event.ActorID,
		ActionType:  "employee.created",
		Description: fmt.Sprintf("created employee %s (%s)", event.Employee.FullName(), event.Employee.PersonnelNumber),
		TargetType:  "employee",
		TargetID:    &id,
		Metadata: mustMetadata(map[string]any{
			"personnel_number": event.Employee.PersonnelNumber,
			"is_commander":     event.Employee.IsCommander,
			"is_admin":         event.Employee.IsAdmin,
		}),
	})
}

func (h *DomainEventsHandler) onEmployeeUpdated(event employee.UpdatedEvent) {
	id := event.EmployeeID
	h.write(&auditlog.AuditLog{
		ActorID:     event.ActorID,
		ActionType:  "employee.updated",
		Description: fmt.Sprintf("updated employee %d", event.EmployeeID),
		TargetType:  "employee",
		TargetID:    &id,
	})
}

func (h *DomainEventsHandler) onEmployeeDeleted(event employee.DeletedEvent) {
	id := event.EmployeeID
	h.write(&auditlog.AuditLog{
		ActorID:     event.ActorID,
		ActionType:  "employee.deleted",
		Description: fmt.Sprintf("deleted employee %d (%s)", event.EmployeeID, event.PersonnelNumber),
		TargetType:  "employee",
		TargetID:    &id,
		Metadata: mustMetadata(map[string]any{
			"personnel_number": event.PersonnelNumber,
		}),
	})
}

func (h *DomainEventsHandler) onCommanderChanged(event unit.CommanderChangedEvent) {
	id := event.UnitID
	description := fmt.Sprintf("cleared commander of %s %d", event.UnitType, event.UnitID)
	if event.EmployeeID != nil {
		description = fmt.Sprintf("set employee %d as commander of %s %d", *event.EmployeeID, event.UnitType, event.UnitID)
	}
	h.write(&auditlog.AuditLog{
		ActorID:     event.ActorID,
		ActionType:  "unit.commander_changed",
		Description: description,
		TargetType:  string(event.UnitType),
		TargetID:    &id,
	})
}

func (h *DomainEventsHandler) onStatusLogged(event interval.StatusLoggedEvent) {
	id := event.Interval.EmployeeID
	h.write(&auditlog.AuditLog{
		ActorID:     event.ActorID,
		ActionType:  "attendance.status_logged",
		Description: fmt.Sprintf("logged status %d for employee %d", event.Interval.StatusTypeID, event.Interval.EmployeeID),
		TargetType:  "employee",
		TargetID:    &id,
		Metadata: mustMetadata(map[string]any{
			"status_type_id": event.Interval.StatusTypeID,
			"start_datetime": event.Interval.StartDatetime,
		}),
	})
}

func (h *DomainEventsHandler) onTransferCreated(event transferrequest.CreatedEvent) {
	id := event.Request.ID
	h.write(&auditlog.AuditLog{
		ActorID:     event.ActorID,
		ActionType:  "transfer.created",
		Description: fmt.Sprintf("requested transfer of employee %d to %s %d", event.Request.EmployeeID, event.Request.TargetType, event.Request.TargetID),
		TargetType:  "transfer_request",
		TargetID:    &id,
	})
}

func (h *DomainEventsHandler) onTransferResolved(event transferrequest.ResolvedEvent) {
	id := event.Request.ID
	h.write(&auditlog.AuditLog{
		ActorID:     event.ActorID,
		ActionType:  "transfer." + string(event.Request.Status),
		Description: fmt.Sprintf("transfer request %d for employee %d %s", event.Request.ID, event.Request.EmployeeID, event.Request.Status),
		TargetType:  "transfer_request",
		TargetID:    &id,
		Metadata: mustMetadata(map[string]any{
			"target_type": event.Request.TargetType,
			"target_id":   event.Request.TargetID,
		}),
	})
}

func mustMetadata(v map[string]any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}
