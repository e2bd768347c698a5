package services

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/internal/models"
	"storefront/internal/pagination"
)

// AuditStore is the append-only persistence for audit entries. It has no
// update or delete operations.
type AuditStore interface {
	// Append inserts entry. Appending an id that already exists is a no-op,
	// so dead-letter replays are idempotent.
	Append(ctx context.Context, entry *models.AuditLog) error
	// Find returns one page of matching entries, newest first, and the total
	// number of matches.
	Find(ctx context.Context, filter AuditLogFilter, page pagination.PageRequest) ([]models.AuditLog, int64, error)
}

type gormAuditStore struct {
	db *gorm.DB
}

// NewAuditStore creates an AuditStore backed by the audit_logs table.
func NewAuditStore(db *gorm.DB) AuditStore {
	return &gormAuditStore{db: db}
}

func (s *gormAuditStore) Append(ctx context.Context, entry *models.AuditLog) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(entry).Error
}

func (s *gormAuditStore) Find(ctx context.Context, filter AuditLogFilter, page pagination.PageRequest) ([]models.AuditLog, int64, error) {
	page.Defaults()
	query := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&models.AuditLog{}).Scopes(auditFilterScope(filter))
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.AuditLog
	if total > 0 && page.Offset() < int(total) {
		if err := query().Order("created_at DESC").Order("id DESC").
			Scopes(pagination.Paginate(page)).
			Find(&entries).Error; err != nil {
			return nil, 0, err
		}
	}
	return entries, total, nil
}

// auditFilterScope applies the optional filters. Substring matches are
// case-insensitive and treat the user's input literally.
func auditFilterScope(filter AuditLogFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if action := strings.TrimSpace(filter.Action); action != "" {
			db = db.Where("LOWER(action) LIKE ? ESCAPE '\\'", likePattern(action))
		}
		if filter.StartDate != nil {
			db = db.Where("created_at >= ?", filter.StartDate.UTC())
		}
		if filter.EndDate != nil {
			db = db.Where("created_at <= ?", filter.EndDate.UTC())
		}
		if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
			pattern := likePattern(keyword)
			db = db.Where("(LOWER(notes) LIKE ? ESCAPE '\\' OR LOWER(action) LIKE ? ESCAPE '\\')", pattern, pattern)
		}
		return db
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
