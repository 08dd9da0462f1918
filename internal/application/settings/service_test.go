package settings

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupSettingsTest(t *testing.T) *Service {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Record{}))
	return &Service{DB: db}
}

func TestGet_DefaultsWhenUnset(t *testing.T) {
	svc := setupSettingsTest(t)

	rec, err := svc.Get(context.Background(), "viewer-1")
	require.NoError(t, err)
	assert.Equal(t, "XAF", rec.Currency)
	assert.Equal(t, "viewer-1", rec.ViewerID)
}

func TestPut_ThenGet(t *testing.T) {
	svc := setupSettingsTest(t)

	_, err := svc.Put(context.Background(), "viewer-1", "USD", map[string]interface{}{"theme": "dark"})
	require.NoError(t, err)

	rec, err := svc.Get(context.Background(), "viewer-1")
	require.NoError(t, err)
	assert.Equal(t, "USD", rec.Currency)
	assert.JSONEq(t, `{"theme":"dark"}`, string(rec.Prefs))
}

func TestPut_UpsertsExistingRow(t *testing.T) {
	svc := setupSettingsTest(t)

	_, err := svc.Put(context.Background(), "viewer-1", "USD", nil)
	require.NoError(t, err)
	_, err = svc.Put(context.Background(), "viewer-1", "EUR", nil)
	require.NoError(t, err)

	rec, err := svc.Get(context.Background(), "viewer-1")
	require.NoError(t, err)
	assert.Equal(t, "EUR", rec.Currency)

	var count int64
	require.NoError(t, svc.DB.Model(&Record{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestPut_EmptyCurrencyFallsBackToDefault(t *testing.T) {
	svc := setupSettingsTest(t)

	rec, err := svc.Put(context.Background(), "viewer-1", "", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultCurrency, rec.Currency)
}

func TestCurrency_NeverFails(t *testing.T) {
	assert.Equal(t, DefaultCurrency, (&Service{}).Currency(context.Background(), "viewer-1"))

	svc := setupSettingsTest(t)
	_, err := svc.Put(context.Background(), "viewer-1", "GBP", nil)
	require.NoError(t, err)
	assert.Equal(t, "GBP", svc.Currency(context.Background(), "viewer-1"))
	assert.Equal(t, DefaultCurrency, svc.Currency(context.Background(), "stranger"))
}
