package database

import (
	"cribz-gateway/internal/application/settings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open opens the gateway-local GORM DB from a DSN. PreferSimpleProtocol
// disables prepared statement caching to avoid 42P05 ("prepared statement
// already exists") behind connection poolers.
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
}

// AutoMigrate runs migrations for the gateway's own tables. Listings and
// hotels live upstream and are never persisted here.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&settings.Record{})
}
