package service

import (
	"context"

	"github.com/peter-abel/healthcare/internal/domain/entity"
	"github.com/peter-abel/healthcare/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AuditService interface {
	LogCreate(ctx context.Context, tx *gorm.DB, caller entity.CallerRole, action string, entityName string, entityID string, newValue interface{}) error
	LogUpdate(ctx context.Context, tx *gorm.DB, caller entity.CallerRole, action string, entityName string, entityID string, oldValue, newValue interface{}) error
}

type auditService struct {
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
}

func NewAuditService(log *logrus.Logger, auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{
		log:       log,
		auditRepo: auditRepo,
	}
}

// LogCreate records a newly created entity. tx must be the transaction that wrote it.
func (s *auditService) LogCreate(ctx context.Context, tx *gorm.DB, caller entity.CallerRole, action string, entityName string, entityID string, newValue interface{}) error {
	return s.write(ctx, tx, caller, action, entity.JSON{
		"entity":    entityName,
		"entity_id": entityID,
		"old_value": nil,
		"new_value": newValue,
	})
}

// LogUpdate records a change with old and new values
func (s *auditService) LogUpdate(ctx context.Context, tx *gorm.DB, caller entity.CallerRole, action string, entityName string, entityID string, oldValue, newValue interface{}) error {
	return s.write(ctx, tx, caller, action, entity.JSON{
		"entity":    entityName,
		"entity_id": entityID,
		"old_value": oldValue,
		"new_value": newValue,
	})
}

func (s *auditService) write(ctx context.Context, tx *gorm.DB, caller entity.CallerRole, action string, metadata entity.JSON) error {
	metadata["caller"] = caller.String()

	auditLog := &entity.AuditLog{
		UserID:   caller.UserID(),
		Action:   action,
		Metadata: metadata,
	}

	if err := s.auditRepo.Create(ctx, tx, auditLog); err != nil {
		s.log.Warnf("Failed to create audit log: %+v", err)
		return err
	}

	return nil
}
