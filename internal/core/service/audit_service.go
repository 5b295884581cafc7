package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/artshoppe/storefront/internal/api/metrics"
	"github.com/artshoppe/storefront/internal/core/domain"
	"github.com/artshoppe/storefront/internal/core/ports"
)

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
	now  func() time.Time
}

// NewAuditService returns an AuditService implementation.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log, now: time.Now}
}

// Process stamps and persists a single audit event.
func (s *auditService) Process(ctx context.Context, e domain.AuditEvent) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = s.now().UTC()
	}

	if err := s.repo.InsertEvent(ctx, &e); err != nil {
		metrics.AuditEventsTotal.WithLabelValues(string(e.Kind), "error").Inc()
		return fmt.Errorf("process audit event: %w", err)
	}
	metrics.AuditEventsTotal.WithLabelValues(string(e.Kind), "persisted").Inc()

	s.log.Debug().
		Str("kind", string(e.Kind)).
		Str("user_id", e.UserID).
		Str("reason", e.Reason).
		Msg("audit event persisted")
	return nil
}
