package app

import (
	"errors"
	"sync"
	"time"

	"github.com/spf13/cast"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/harings-be/commerce-pricelist/internal/domain"
)

const settingsCacheTTL = 30 * time.Second

// SettingsManager reads runtime settings from the sys_config table with a
// short-lived cache so hot paths avoid a query per lookup.
type SettingsManager struct {
	db       *gorm.DB
	mu       sync.RWMutex
	cache    map[string]string
	loadedAt time.Time
}

func NewSettingsManager(db *gorm.DB) *SettingsManager {
	return &SettingsManager{db: db, cache: map[string]string{}}
}

func (m *SettingsManager) reload() {
	var configs []domain.SysConfig
	if err := m.db.Find(&configs).Error; err != nil {
		zap.L().Error("failed to load settings", zap.Error(err))
		return
	}
	next := make(map[string]string, len(configs))
	for _, c := range configs {
		next[c.Type+"."+c.Name] = c.Value
	}
	m.cache = next
	m.loadedAt = time.Now()
}

func (m *SettingsManager) value(category, name string) string {
	m.mu.RLock()
	fresh := time.Since(m.loadedAt) < settingsCacheTTL
	v, ok := m.cache[category+"."+name]
	m.mu.RUnlock()
	if fresh && ok {
		return v
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if time.Since(m.loadedAt) >= settingsCacheTTL {
		m.reload()
	}
	return m.cache[category+"."+name]
}

func (m *SettingsManager) GetString(category, name string) string {
	return m.value(category, name)
}

func (m *SettingsManager) GetInt64(category, name string) int64 {
	return cast.ToInt64(m.value(category, name))
}

func (m *SettingsManager) GetInt(category, name string) int {
	return cast.ToInt(m.value(category, name))
}

func (m *SettingsManager) GetBool(category, name string) bool {
	return cast.ToBool(m.value(category, name))
}

// Set upserts a setting value and invalidates the cache.
func (m *SettingsManager) Set(category, name, value string) error {
	var cfg domain.SysConfig
	err := m.db.Where("type = ? and name = ?", category, name).First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = m.db.Create(&domain.SysConfig{Type: category, Name: name, Value: value}).Error
	} else if err == nil {
		err = m.db.Model(&domain.SysConfig{}).Where("id = ?", cfg.ID).Update("value", value).Error
	}
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.loadedAt = time.Time{}
	m.mu.Unlock()
	return nil
}
