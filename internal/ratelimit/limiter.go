// Package ratelimit implements a fixed-window request counter backed by the
// rate_limit_tracking table. Windows are aligned to minute and hour
// boundaries, so bursts at a boundary can reach twice the nominal rate.
//
// The check is read-then-increment without a row lock: concurrent calls from
// the same identifier can race past the limit. Callers are authenticated
// operators clicking UI buttons, so the window still bounds sustained abuse.
package ratelimit

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bitminded/backoffice/internal/domain"
	"github.com/bitminded/backoffice/pkg/common"
	"github.com/bitminded/backoffice/pkg/metrics"
)

const (
	IdentifierUser = "user"
	IdentifierIP   = "ip"
)

type Limits struct {
	PerMinute int
	PerHour   int
}

type Result struct {
	Allowed bool
	// RetryAfter is the whole seconds until the blocking window ends; only
	// set when Allowed is false.
	RetryAfter int
}

type Limiter struct {
	db  *gorm.DB
	now func() time.Time
}

func New(db *gorm.DB) *Limiter {
	return &Limiter{db: db, now: time.Now}
}

// NewWithClock builds a limiter with an injected clock (tests).
func NewWithClock(db *gorm.DB, now func() time.Time) *Limiter {
	return &Limiter{db: db, now: now}
}

// Allow consumes one request slot for (identifier, identifierType, function).
// Store errors fail open: an unavailable database must not take the admin
// panel down with it.
func (l *Limiter) Allow(identifier, identifierType, function string, lim Limits) Result {
	now := l.now()

	// Opportunistic purge of windows older than the largest window.
	if err := l.db.
		Where("window_start < ?", now.Add(-time.Hour)).
		Delete(&domain.RateLimitTracking{}).Error; err != nil {
		zap.L().Warn("rate limit purge failed", zap.Error(err))
	}

	minuteStart := now.Truncate(time.Minute)
	hourStart := now.Truncate(time.Hour)

	minuteRow, err := l.window(identifier, identifierType, function, domain.RateWindowMinute, minuteStart)
	if err != nil {
		zap.L().Warn("rate limit read failed, allowing request", zap.Error(err))
		return Result{Allowed: true}
	}
	hourRow, err := l.window(identifier, identifierType, function, domain.RateWindowHour, hourStart)
	if err != nil {
		zap.L().Warn("rate limit read failed, allowing request", zap.Error(err))
		return Result{Allowed: true}
	}

	if lim.PerMinute > 0 && minuteRow.Count >= lim.PerMinute {
		metrics.Inc(metrics.MetricRateLimitRejects)
		return Result{Allowed: false, RetryAfter: retryAfter(now, minuteStart.Add(time.Minute))}
	}
	if lim.PerHour > 0 && hourRow.Count >= lim.PerHour {
		metrics.Inc(metrics.MetricRateLimitRejects)
		return Result{Allowed: false, RetryAfter: retryAfter(now, hourStart.Add(time.Hour))}
	}

	l.increment(minuteRow, now)
	l.increment(hourRow, now)
	return Result{Allowed: true}
}

func (l *Limiter) window(identifier, identifierType, function, kind string, start time.Time) (*domain.RateLimitTracking, error) {
	var row domain.RateLimitTracking
	err := l.db.
		Where("identifier = ? AND identifier_type = ? AND function_name = ? AND window_kind = ? AND window_start = ?",
			identifier, identifierType, function, kind, start).
		First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return &domain.RateLimitTracking{
			Identifier:     identifier,
			IdentifierType: identifierType,
			FunctionName:   function,
			WindowKind:     kind,
			WindowStart:    start,
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (l *Limiter) increment(row *domain.RateLimitTracking, now time.Time) {
	if row.ID == 0 {
		row.ID = common.UUIDint64()
		row.Count = 1
		row.CreatedAt = now
		row.UpdatedAt = now
		if err := l.db.Create(row).Error; err != nil {
			zap.L().Warn("rate limit insert failed", zap.Error(err))
		}
		return
	}
	if err := l.db.Model(&domain.RateLimitTracking{}).
		Where("id = ?", row.ID).
		Updates(map[string]interface{}{
			"count":      gorm.Expr("count + 1"),
			"updated_at": now,
		}).Error; err != nil {
		zap.L().Warn("rate limit increment failed", zap.Error(err))
	}
}

func retryAfter(now, windowEnd time.Time) int {
	secs := int(windowEnd.Sub(now).Seconds())
	if secs < 1 {
		secs = 1
	}
	return secs
}
