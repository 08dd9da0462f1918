package settings

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultCurrency matches the dashboard's fallback display currency.
const DefaultCurrency = "XAF"

// Record is a viewer's persisted UI settings, the gateway-side stand-in for
// the dashboard's old localStorage userSettings blob.
type Record struct {
	ViewerID  string         `gorm:"column:viewer_id;primaryKey" json:"viewerId"`
	Currency  string         `gorm:"column:currency" json:"currency"`
	Prefs     datatypes.JSON `gorm:"column:prefs" json:"prefs"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func (Record) TableName() string {
	return "viewer_settings"
}

type Service struct {
	DB *gorm.DB
}

// Get returns the viewer's settings, or defaults when none are stored yet.
func (s *Service) Get(ctx context.Context, viewerID string) (*Record, error) {
	var rec Record
	err := s.DB.WithContext(ctx).Where("viewer_id = ?", viewerID).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &Record{ViewerID: viewerID, Currency: DefaultCurrency}, nil
		}
		return nil, err
	}
	if rec.Currency == "" {
		rec.Currency = DefaultCurrency
	}
	return &rec, nil
}

// Put upserts the viewer's settings wholesale.
func (s *Service) Put(ctx context.Context, viewerID, currency string, prefs map[string]interface{}) (*Record, error) {
	if currency == "" {
		currency = DefaultCurrency
	}
	prefsJSON := datatypes.JSON("{}")
	if prefs != nil {
		b, err := json.Marshal(prefs)
		if err != nil {
			return nil, err
		}
		prefsJSON = datatypes.JSON(b)
	}
	rec := Record{ViewerID: viewerID, Currency: currency, Prefs: prefsJSON}
	err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "viewer_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"currency", "prefs", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Currency is a convenience for the projector options; it never fails, the
// default currency covers both the missing-row and DB-error cases.
func (s *Service) Currency(ctx context.Context, viewerID string) string {
	if s == nil || s.DB == nil {
		return DefaultCurrency
	}
	rec, err := s.Get(ctx, viewerID)
	if err != nil {
		return DefaultCurrency
	}
	return rec.Currency
}
