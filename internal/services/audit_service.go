package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	apperrors "storefront/internal/errors"
	"storefront/internal/logger"
	"storefront/internal/metrics"
	"storefront/internal/models"
	"storefront/internal/uuid"
)

const (
	unknownValue        = "unknown"
	defaultWriteTimeout = 5 * time.Second
)

// auditService builds and persists audit entries.
type auditService struct {
	store        AuditStore
	deadLetters  DeadLetterQueue
	writeTimeout time.Duration
	now          func() time.Time
}

// AuditOption configures the audit service.
type AuditOption func(*auditService)

// WithDeadLetterQueue sends entries whose write fails to dlq.
func WithDeadLetterQueue(dlq DeadLetterQueue) AuditOption {
	return func(s *auditService) { s.deadLetters = dlq }
}

// WithWriteTimeout bounds each store write.
func WithWriteTimeout(d time.Duration) AuditOption {
	return func(s *auditService) {
		if d > 0 {
			s.writeTimeout = d
		}
	}
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(store AuditStore, opts ...AuditOption) AuditServicer {
	s := &auditService{
		store:        store,
		writeTimeout: defaultWriteTimeout,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record writes an audit entry. Errors and panics are logged, counted and,
// for store failures, dead-lettered; they never propagate to the caller so
// the business operation's outcome does not depend on the audit trail.
func (s *auditService) Record(ctx context.Context, rec AuditRecord) {
	defer func() {
		if r := recover(); r != nil {
			metrics.AuditWritesTotal.WithLabelValues(string(rec.Action), metrics.ResultFailed).Inc()
			logger.Get().Errorw("audit recorder panicked",
				"action", rec.Action,
				"actor_id", rec.ActorID,
				"panic", fmt.Sprint(r),
			)
		}
	}()

	entry, err := s.build(rec)
	if err != nil {
		metrics.AuditWritesTotal.WithLabelValues(string(rec.Action), metrics.ResultRejected).Inc()
		logger.Get().Errorw("audit entry rejected",
			"action", rec.Action,
			"actor_id", rec.ActorID,
			"error", err,
		)
		return
	}

	if err := s.write(ctx, entry); err != nil {
		logger.Get().Errorw("failed to write audit entry",
			"audit_id", entry.ID,
			"action", entry.Action,
			"actor_id", entry.ActorID,
			"error", err,
		)
		s.deadLetter(ctx, entry)
	}
}

// Create writes an audit entry and reports failures.
func (s *auditService) Create(ctx context.Context, rec AuditRecord) (*models.AuditLog, error) {
	entry, err := s.build(rec)
	if err != nil {
		metrics.AuditWritesTotal.WithLabelValues(string(rec.Action), metrics.ResultRejected).Inc()
		return nil, err
	}
	if err := s.write(ctx, entry); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrAuditWriteFailed, err)
	}
	return entry, nil
}

// write persists entry on a context detached from the request, so a client
// disconnect does not cancel it, bounded by the write timeout.
func (s *auditService) write(ctx context.Context, entry *models.AuditLog) error {
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.writeTimeout)
	defer cancel()

	if err := s.store.Append(writeCtx, entry); err != nil {
		metrics.AuditWritesTotal.WithLabelValues(string(entry.Action), metrics.ResultFailed).Inc()
		return err
	}
	metrics.AuditWritesTotal.WithLabelValues(string(entry.Action), metrics.ResultOK).Inc()
	return nil
}

func (s *auditService) deadLetter(ctx context.Context, entry *models.AuditLog) {
	if s.deadLetters == nil {
		return
	}
	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.writeTimeout)
	defer cancel()

	if err := s.deadLetters.Push(pushCtx, entry); err != nil {
		metrics.AuditDeadLettersTotal.WithLabelValues(metrics.DeadLetterFailed).Inc()
		logger.Get().Errorw("failed to dead-letter audit entry",
			"audit_id", entry.ID,
			"action", entry.Action,
			"actor_id", entry.ActorID,
			"error", err,
		)
		return
	}
	metrics.AuditDeadLettersTotal.WithLabelValues(metrics.DeadLetterQueued).Inc()
}

// build validates rec and derives the request-dependent fields.
func (s *auditService) build(rec AuditRecord) (*models.AuditLog, error) {
	actorID := strings.TrimSpace(rec.ActorID)
	if actorID == "" {
		return nil, apperrors.ErrMissingActor
	}
	if !rec.Action.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidAuditAction,
			fmt.Sprintf("Unknown audit action %q", rec.Action))
	}

	entry := &models.AuditLog{
		ID:        uuid.New(),
		ActorID:   actorID,
		Action:    rec.Action,
		Notes:     strings.TrimSpace(rec.Notes),
		IPAddress: ClientIP(rec.Meta),
		CreatedAt: s.now().UTC(),
	}
	if err := entry.SetTargets(rec.Targets); err != nil {
		if errors.Is(err, models.ErrDuplicateTargetKind) {
			return nil, apperrors.Wrap(apperrors.ErrDuplicateTarget, err)
		}
		return nil, apperrors.Wrap(apperrors.WithMessage(apperrors.ErrInvalidInput, "Unknown audit target kind"), err)
	}

	role := unknownValue
	if rec.Meta != nil {
		entry.UserAgent = strings.TrimSpace(rec.Meta.UserAgent)
		entry.Location = strings.TrimSpace(rec.Meta.Location)
		if rec.Meta.ActorRole != "" {
			role = string(rec.Meta.ActorRole)
		}
	}
	entry.Tags = NormalizeTags(append(append([]string{}, rec.Tags...), role))

	return entry, nil
}

// ClientIP picks the address to record for a request: an explicit override,
// then the first X-Forwarded-For hop, then the connection address without
// its port, then "unknown".
func ClientIP(meta *RequestMeta) string {
	if meta == nil {
		return unknownValue
	}
	if ip := strings.TrimSpace(meta.IPOverride); ip != "" {
		return ip
	}
	if first, _, _ := strings.Cut(meta.ForwardedFor, ","); strings.TrimSpace(first) != "" {
		return strings.TrimSpace(first)
	}
	if addr := strings.TrimSpace(meta.RemoteAddr); addr != "" {
		if host, _, err := net.SplitHostPort(addr); err == nil {
			return host
		}
		return addr
	}
	return unknownValue
}

// NormalizeTags lowercases and trims tags, dropping blanks and duplicates
// while keeping first-seen order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
