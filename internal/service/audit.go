package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/noah-isme/ecde-votmis-api/internal/models"
)

type auditWriter interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

// writeAudit records an audit entry. Failures are logged and never surfaced to the caller.
func writeAudit(ctx context.Context, writer auditWriter, logger *zap.Logger, actor *models.Actor, action, resource, resourceID string, values interface{}) {
	if writer == nil {
		return
	}
	entry := &models.AuditLog{Action: action, Resource: resource}
	if actor != nil {
		userID := actor.UserID
		entry.UserID = &userID
		entry.InstitutionID = actor.InstitutionID
	}
	if resourceID != "" {
		entry.ResourceID = &resourceID
	}
	if values != nil {
		if payload, err := json.Marshal(values); err == nil {
			entry.NewValues = payload
		}
	}
	if err := writer.Create(ctx, entry); err != nil {
		logger.Warn("failed to write audit log", zap.String("action", action), zap.String("resource_id", resourceID), zap.Error(err))
	}
}
