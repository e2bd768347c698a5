package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/models"
	"storefront/internal/pagination"
	"storefront/internal/testutil"
)

func TestAuditStore_AppendIsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	store := NewAuditStore(db)
	ctx := context.Background()

	entry := &models.AuditLog{ActorID: "actor", Action: models.ActionLogin, Tags: []string{"customer"}}
	require.NoError(t, store.Append(ctx, entry))
	require.NotEmpty(t, entry.ID)

	replay := &models.AuditLog{ID: entry.ID, ActorID: "actor", Action: models.ActionLogin, CreatedAt: entry.CreatedAt}
	require.NoError(t, store.Append(ctx, replay))

	var count int64
	require.NoError(t, db.Model(&models.AuditLog{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAuditLog_IsImmutable(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	entry := testutil.CreateTestAuditLog(t, db, "actor", models.ActionLogin, "original", time.Now())

	err := db.Model(entry).Update("notes", "rewritten").Error
	assert.True(t, errors.Is(err, models.ErrAuditLogImmutable), "update: %v", err)

	entry.Notes = "rewritten"
	err = db.Save(entry).Error
	assert.True(t, errors.Is(err, models.ErrAuditLogImmutable), "save: %v", err)

	err = db.Delete(entry).Error
	assert.True(t, errors.Is(err, models.ErrAuditLogImmutable), "delete: %v", err)

	var stored models.AuditLog
	require.NoError(t, db.First(&stored, "id = ?", entry.ID).Error)
	assert.Equal(t, "original", stored.Notes)
}

func TestAuditStore_FindOrdersNewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	store := NewAuditStore(db)

	base := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	testutil.CreateTestAuditLog(t, db, "a", models.ActionLogin, "first", base)
	testutil.CreateTestAuditLog(t, db, "a", models.ActionLogout, "second", base.Add(time.Hour))
	testutil.CreateTestAuditLog(t, db, "a", models.ActionLogin, "third", base.Add(2*time.Hour))

	entries, total, err := store.Find(context.Background(), AuditLogFilter{}, pagination.PageRequest{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, entries, 3)
	assert.Equal(t, "third", entries[0].Notes)
	assert.Equal(t, "first", entries[2].Notes)
}

func TestLikePatternEscapesWildcards(t *testing.T) {
	assert.Equal(t, `%50\% off%`, likePattern("50% OFF"))
	assert.Equal(t, `%a\_b%`, likePattern("a_b"))
	assert.Equal(t, `%c:\\tmp%`, likePattern(`C:\tmp`))
}
