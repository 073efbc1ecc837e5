package app

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/bitminded/backoffice/internal/domain"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	var err error
	// The rate limiter purges opportunistically on every check; this is the
	// backstop for functions that go quiet.
	_, err = a.sched.AddFunc("@every 10m", func() {
		res := a.gormDB.
			Where("window_start < ?", time.Now().Add(-time.Hour)).
			Delete(&domain.RateLimitTracking{})
		if res.Error != nil {
			zap.L().Error("rate limit purge failed", zap.Error(res.Error))
		} else if res.RowsAffected > 0 {
			zap.L().Info("purged stale rate limit windows", zap.Int64("rows", res.RowsAffected))
		}
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@daily", func() {
		days := a.GetSettingsInt64Value("system", "opr_log_retention_days")
		if days <= 0 {
			days = 365
		}
		a.gormDB.
			Where("opt_time < ? ", time.Now().
				Add(-time.Hour*24*time.Duration(days))).Delete(domain.SysOprLog{})
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	// Expire sales whose end date has passed; the admin UI reads the flag
	// directly so this keeps listings honest without a manual pass.
	_, err = a.sched.AddFunc("@every 1h", func() {
		now := time.Now()
		a.gormDB.Model(&domain.Product{}).
			Where("is_on_sale = ? AND sale_ends_at IS NOT NULL AND sale_ends_at < ?", true, now).
			Updates(map[string]interface{}{
				"is_on_sale":     false,
				"sale_price_chf": nil,
				"sale_price_eur": nil,
				"sale_price_usd": nil,
				"updated_at":     now,
			})
		a.gormDB.Model(&domain.Service{}).
			Where("is_on_sale = ? AND sale_ends_at IS NOT NULL AND sale_ends_at < ?", true, now).
			Updates(map[string]interface{}{
				"is_on_sale": false,
				"updated_at": now,
			})
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}
}
