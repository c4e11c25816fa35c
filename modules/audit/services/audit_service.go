package services

import (
	"context"

	"github.com/orgkit/presence/modules/audit/domain/entities/auditlog"
	"github.com/orgkit/presence/pkg/composables"
	"github.com/orgkit/presence/pkg/serrors"
)

type AuditService struct {
	repo auditlog.Repository
}

func NewAuditService(repo auditlog.Repository) *AuditService {
	return &AuditService{repo: repo}
}

// Log appends one entry. Callers run it after their own transaction has
// committed; a failure here never unwinds the primary operation.
func (s *AuditService) Log(ctx context.Context, entry *auditlog.AuditLog) error {
	return s.repo.Create(ctx, entry)
}

func (s *AuditService) List(ctx context.Context, params *auditlog.FindParams) ([]*auditlog.AuditLog, int64, error) {
	identity, err := composables.UseIdentity(ctx)
	if err != nil {
		return nil, 0, serrors.Authorization("NO_IDENTITY", "authentication required")
	}
	if !identity.IsAdmin {
		return nil, 0, serrors.Authorization("ADMIN_REQUIRED", "administrator role required")
	}

	entries, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, 0, serrors.Persistence(err)
	}
	count, err := s.repo.Count(ctx, params)
	if err != nil {
		return nil, 0, serrors.Persistence(err)
	}
	return entries, count, nil
}
