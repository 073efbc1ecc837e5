package app

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/bitminded/backoffice/internal/domain"
	"github.com/bitminded/backoffice/pkg/common"
)

const settingsCacheTTL = 30 * time.Second

// ConfigManager reads settings from the sys_config table with a short
// in-memory cache so hot paths (rate-limit thresholds) don't hit the DB on
// every request.
type ConfigManager struct {
	app       *Application
	mu        sync.RWMutex
	cache     map[string]string
	refreshed time.Time
}

func NewConfigManager(a *Application) *ConfigManager {
	return &ConfigManager{app: a, cache: make(map[string]string)}
}

func (m *ConfigManager) lookup(category, name string) (string, bool) {
	key := category + "." + name
	m.mu.RLock()
	fresh := time.Since(m.refreshed) < settingsCacheTTL
	v, hit := m.cache[key]
	m.mu.RUnlock()
	if fresh && hit {
		return v, true
	}

	var rows []domain.SysConfig
	if err := m.app.DB().Find(&rows).Error; err != nil {
		zap.S().Errorf("settings load error %s", err.Error())
		return v, hit
	}
	m.mu.Lock()
	m.cache = make(map[string]string, len(rows))
	for _, r := range rows {
		m.cache[r.Type+"."+r.Name] = r.Value
	}
	m.refreshed = time.Now()
	v, hit = m.cache[key]
	m.mu.Unlock()
	return v, hit
}

func (m *ConfigManager) GetString(category, name string) string {
	v, _ := m.lookup(category, name)
	return v
}

func (m *ConfigManager) GetInt64(category, name string) int64 {
	v, _ := m.lookup(category, name)
	return cast.ToInt64(v)
}

func (m *ConfigManager) GetBool(category, name string) bool {
	v, _ := m.lookup(category, name)
	return cast.ToBool(v)
}

// Save upserts settings keyed "category.name" and invalidates the cache.
func (m *ConfigManager) Save(settings map[string]interface{}) error {
	db := m.app.DB()
	for key, val := range settings {
		parts := strings.SplitN(key, ".", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid settings key %q", key)
		}
		value := cast.ToString(val)
		var count int64
		db.Model(&domain.SysConfig{}).
			Where("type = ? and name = ?", parts[0], parts[1]).
			Count(&count)
		if count == 0 {
			if err := db.Create(&domain.SysConfig{
				ID:    common.UUIDint64(),
				Type:  parts[0],
				Name:  parts[1],
				Value: value,
			}).Error; err != nil {
				return err
			}
			continue
		}
		if err := db.Model(&domain.SysConfig{}).
			Where("type = ? and name = ?", parts[0], parts[1]).
			Update("value", value).Error; err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.refreshed = time.Time{}
	m.mu.Unlock()
	return nil
}
