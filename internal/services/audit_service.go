package services

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tsangpocruise/booking-backend/internal/models"
	"github.com/tsangpocruise/booking-backend/internal/utils"
)

// AuditStore persists audit entries
type AuditStore interface {
	Insert(entry *models.AuditLog) error
}

// AuditService records admin mutations and security events
type AuditService struct {
	store   AuditStore
	logger  *logrus.Logger
	enabled bool
}

// NewAuditService creates a new audit service
func NewAuditService(store AuditStore, logger *logrus.Logger, enabled bool) *AuditService {
	return &AuditService{store: store, logger: logger, enabled: enabled}
}

// Actor identifies who triggered an audited change
type Actor struct {
	UserID    uuid.UUID
	IPAddress string
	UserAgent string
}

// AuditEvent represents an event to be logged
type AuditEvent struct {
	Action     string
	EntityType string
	EntityID   string
	Details    map[string]interface{}
}

// Record stores the event. Failures are logged and never returned to the caller.
func (s *AuditService) Record(actor Actor, event AuditEvent) {
	if s == nil || !s.enabled {
		return
	}

	details := event.Details
	if details == nil {
		details = make(map[string]interface{})
	}
	details["device_info"] = utils.ParseUserAgent(actor.UserAgent)

	entry := &models.AuditLog{
		UserID:     uuid.NullUUID{UUID: actor.UserID, Valid: actor.UserID != uuid.Nil},
		Action:     event.Action,
		EntityType: event.EntityType,
		EntityID:   models.NewNullString(event.EntityID),
		IPAddress:  actor.IPAddress,
		UserAgent:  actor.UserAgent,
		Details:    models.JSONB[map[string]any]{V: details},
	}

	if err := s.store.Insert(entry); err != nil {
		s.logger.WithFields(logrus.Fields{
			"action":      event.Action,
			"entity_type": event.EntityType,
			"entity_id":   event.EntityID,
		}).WithError(err).Warn("Failed to write audit log")
	}
}
