package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bitminded/backoffice/internal/domain"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_pragma=foreign_keys(1)"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrator().DropTable(&domain.RateLimitTracking{}))
	require.NoError(t, db.AutoMigrate(&domain.RateLimitTracking{}))
	return db
}

func TestAllowUnderLimit(t *testing.T) {
	db := testDB(t)
	base := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	l := NewWithClock(db, func() time.Time { return base })
	lim := Limits{PerMinute: 3, PerHour: 10}

	for i := 0; i < 3; i++ {
		res := l.Allow("alice", IdentifierUser, "create-github-repository", lim)
		assert.True(t, res.Allowed, "call %d", i+1)
	}
}

func TestRejectOverMinuteLimit(t *testing.T) {
	db := testDB(t)
	base := time.Date(2026, 3, 1, 10, 30, 15, 0, time.UTC)
	l := NewWithClock(db, func() time.Time { return base })
	lim := Limits{PerMinute: 3, PerHour: 10}

	for i := 0; i < 3; i++ {
		require.True(t, l.Allow("alice", IdentifierUser, "create-github-repository", lim).Allowed)
	}
	res := l.Allow("alice", IdentifierUser, "create-github-repository", lim)
	assert.False(t, res.Allowed)
	// the minute window ends at 10:31:00, 45 seconds away
	assert.Equal(t, 45, res.RetryAfter)
}

func TestRejectOverHourLimit(t *testing.T) {
	db := testDB(t)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := base
	l := NewWithClock(db, func() time.Time { return clock })
	lim := Limits{PerMinute: 100, PerHour: 5}

	for i := 0; i < 5; i++ {
		require.True(t, l.Allow("alice", IdentifierUser, "send-notification", lim).Allowed)
		clock = clock.Add(2 * time.Minute)
	}
	res := l.Allow("alice", IdentifierUser, "send-notification", lim)
	assert.False(t, res.Allowed)
	assert.Greater(t, res.RetryAfter, 0)
}

func TestWindowRollover(t *testing.T) {
	db := testDB(t)
	clock := time.Date(2026, 3, 1, 10, 30, 50, 0, time.UTC)
	l := NewWithClock(db, func() time.Time { return clock })
	lim := Limits{PerMinute: 1, PerHour: 100}

	require.True(t, l.Allow("alice", IdentifierUser, "create-github-repository", lim).Allowed)
	require.False(t, l.Allow("alice", IdentifierUser, "create-github-repository", lim).Allowed)

	// a fresh minute window opens at 10:31
	clock = clock.Add(15 * time.Second)
	assert.True(t, l.Allow("alice", IdentifierUser, "create-github-repository", lim).Allowed)
}

func TestIdentifiersAreIndependent(t *testing.T) {
	db := testDB(t)
	base := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	l := NewWithClock(db, func() time.Time { return base })
	lim := Limits{PerMinute: 1, PerHour: 100}

	require.True(t, l.Allow("alice", IdentifierUser, "create-github-repository", lim).Allowed)
	require.False(t, l.Allow("alice", IdentifierUser, "create-github-repository", lim).Allowed)

	// a different operator and a different function each get their own budget
	assert.True(t, l.Allow("bob", IdentifierUser, "create-github-repository", lim).Allowed)
	assert.True(t, l.Allow("alice", IdentifierUser, "send-notification", lim).Allowed)
	assert.True(t, l.Allow("203.0.113.7", IdentifierIP, "create-github-repository", lim).Allowed)
}

func TestZeroLimitsDisableChecks(t *testing.T) {
	db := testDB(t)
	base := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	l := NewWithClock(db, func() time.Time { return base })

	for i := 0; i < 20; i++ {
		assert.True(t, l.Allow("alice", IdentifierUser, "anything", Limits{}).Allowed)
	}
}

func TestPurgeDropsExpiredWindows(t *testing.T) {
	db := testDB(t)
	clock := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	l := NewWithClock(db, func() time.Time { return clock })
	lim := Limits{PerMinute: 5, PerHour: 100}

	require.True(t, l.Allow("alice", IdentifierUser, "create-github-repository", lim).Allowed)

	var count int64
	require.NoError(t, db.Model(&domain.RateLimitTracking{}).Count(&count).Error)
	assert.Equal(t, int64(2), count) // one minute row, one hour row

	// two hours later both rows are older than the purge horizon
	clock = clock.Add(2 * time.Hour)
	require.True(t, l.Allow("alice", IdentifierUser, "create-github-repository", lim).Allowed)

	require.NoError(t, db.Model(&domain.RateLimitTracking{}).
		Where("window_start < ?", clock.Add(-time.Hour)).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestFailOpenOnStoreError(t *testing.T) {
	db := testDB(t)
	base := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	l := NewWithClock(db, func() time.Time { return base })

	// dropping the table makes every read fail; requests must still pass
	require.NoError(t, db.Migrator().DropTable(&domain.RateLimitTracking{}))
	res := l.Allow("alice", IdentifierUser, "create-github-repository", Limits{PerMinute: 1, PerHour: 1})
	assert.True(t, res.Allowed)
}
