package policy

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ClientConfig is the database row holding one tenant policy blob.
type ClientConfig struct {
	ClientID   string          `gorm:"column:client_id;primaryKey"`
	ConfigType string          `gorm:"column:config_type;primaryKey"`
	Config     json.RawMessage `gorm:"column:config;type:jsonb"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;not null;default:CURRENT_TIMESTAMP"`
}

// TableName specifies the table name for the ClientConfig model.
func (ClientConfig) TableName() string {
	return "client_configs"
}

// Store loads tenant policies from the client_configs table. A missing or
// malformed policy always resolves to defaults, never to an error: policy
// lookup must not be able to stall the moderation pipeline.
type Store struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewStore creates a policy store backed by the given database.
func NewStore(db *gorm.DB, logger *logrus.Logger) *Store {
	return &Store{db: db, logger: logger}
}

func (s *Store) load(ctx context.Context, clientID string, configType ConfigType, out interface{}) {
	var row ClientConfig
	err := s.db.WithContext(ctx).
		Where("client_id = ? AND config_type = ?", clientID, string(configType)).
		First(&row).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"client_id":   clientID,
				"config_type": configType,
			}).Error("Failed to load client config, using defaults")
		}
		return
	}

	if err := json.Unmarshal(row.Config, out); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"client_id":   clientID,
			"config_type": configType,
		}).Error("Malformed client config, using defaults")
	}
}

// ClassificationRules returns the tenant's classification rules, normalized.
func (s *Store) ClassificationRules(ctx context.Context, clientID string) ClassificationRules {
	var rules ClassificationRules
	s.load(ctx, clientID, ConfigClassificationRules, &rules)
	rules.Normalize()
	return rules
}

// ModerationRules returns the tenant's moderation rules, normalized.
func (s *Store) ModerationRules(ctx context.Context, clientID string) ModerationRules {
	var rules ModerationRules
	s.load(ctx, clientID, ConfigModerationRules, &rules)
	rules.Normalize()
	return rules
}

// ResponseTemplates returns the tenant's reply templates, normalized.
func (s *Store) ResponseTemplates(ctx context.Context, clientID string) ResponseTemplates {
	var templates ResponseTemplates
	s.load(ctx, clientID, ConfigResponseTemplates, &templates)
	templates.Normalize()
	return templates
}

// NotificationSettings returns the tenant's notification channel flags.
func (s *Store) NotificationSettings(ctx context.Context, clientID string) NotificationSettings {
	var settings NotificationSettings
	s.load(ctx, clientID, ConfigNotifications, &settings)
	return settings
}

// Save upserts one tenant policy blob. Policies are externally mutable and
// versioned last-write-wins.
func (s *Store) Save(ctx context.Context, clientID string, configType ConfigType, config interface{}) error {
	raw, err := json.Marshal(config)
	if err != nil {
		return err
	}

	row := ClientConfig{
		ClientID:   clientID,
		ConfigType: string(configType),
		Config:     json.RawMessage(raw),
		UpdatedAt:  time.Now().UTC(),
	}

	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "client_id"}, {Name: "config_type"}},
			DoUpdates: clause.AssignmentColumns([]string{"config", "updated_at"}),
		}).
		Create(&row).Error
}
