package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "root", cfg.Database.User)
	assert.Equal(t, "Attendance", cfg.Database.Name)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.Equal(t, 64, cfg.HubBuffer)
	assert.Equal(t, ":3000", cfg.HTTPAddress())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_NAME", "badges")
	t.Setenv("STORE_TIMEOUT", "750ms")
	t.Setenv("DB_SKIP_SCHEMA", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8081", cfg.HTTPAddress())
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 750*time.Millisecond, cfg.StoreTimeout)
	assert.True(t, cfg.Database.SkipSchema)
}

func TestLoadRejectsNonPositiveTimeout(t *testing.T) {
	t.Setenv("STORE_TIMEOUT", "0s")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE_TIMEOUT")
}

func TestDSN(t *testing.T) {
	d := Database{Host: "127.0.0.1", Port: "3307", User: "rfid", Password: "s3cret", Name: "Attendance"}

	dsn := d.DSN()
	assert.True(t, strings.HasPrefix(dsn, "rfid:s3cret@tcp(127.0.0.1:3307)/Attendance?"), dsn)
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")
	assert.Contains(t, dsn, "clientFoundRows=true")
}

func TestAllowedOrigins(t *testing.T) {
	assert.Equal(t, "*", Config{CORSOrigins: " , "}.AllowedOrigins())
	assert.Equal(t, "http://a,http://b", Config{CORSOrigins: "http://a, http://b ,"}.AllowedOrigins())
}
