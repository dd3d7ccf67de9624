package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/medilens/internal/domain/model"
)

// allConfigKeys lists every MEDILENS_ env var that Load() reads.
var allConfigKeys = []string{
	"MEDILENS_ENV",
	"MEDILENS_API_BASE",
	"MEDILENS_DEV_API_BASE",
	"MEDILENS_LISTEN_ADDR",
	"MEDILENS_DB_PATH",
	"MEDILENS_SECRET_KEY",
	"MEDILENS_HTTP_TIMEOUT",
	"MEDILENS_GEO_TIMEOUT",
	"MEDILENS_GEO_MAX_AGE",
	"MEDILENS_GEO_AUTO",
	"MEDILENS_GEO_PERMISSION",
	"MEDILENS_LATITUDE",
	"MEDILENS_LONGITUDE",
	"MEDILENS_SPLASH_DURATION",
}

// isolateConfigEnv saves and unsets all MEDILENS_ env vars so tests don't
// inherit values from the host environment (e.g. a .env loaded by a dev shell).
// t.Cleanup restores original values after the test.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "", cfg.Env)
	assert.Equal(t, "https://hsc1606.onrender.com", cfg.APIBaseURL)
	assert.Equal(t, "127.0.0.1:5173", cfg.ListenAddr)
	assert.Equal(t, "medilens.db", cfg.DBPath)
	assert.Nil(t, cfg.SecretKey)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 8*time.Second, cfg.GeoTimeout)
	assert.Equal(t, 60*time.Second, cfg.GeoMaxAge)
	assert.False(t, cfg.GeoAuto)
	assert.True(t, cfg.GeoPermitted)
	assert.False(t, cfg.HasDevicePosition())
	assert.Equal(t, 3250*time.Millisecond, cfg.SplashDuration)
}

func TestLoad_Success(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("MEDILENS_API_BASE", "https://api.example.com/")
	t.Setenv("MEDILENS_LISTEN_ADDR", "0.0.0.0:9090")
	t.Setenv("MEDILENS_DB_PATH", "/tmp/test.db")
	t.Setenv("MEDILENS_HTTP_TIMEOUT", "5s")
	t.Setenv("MEDILENS_GEO_TIMEOUT", "2s")
	t.Setenv("MEDILENS_GEO_MAX_AGE", "0s")
	t.Setenv("MEDILENS_GEO_AUTO", "true")
	t.Setenv("MEDILENS_GEO_PERMISSION", "denied")
	t.Setenv("MEDILENS_LATITUDE", "12.9")
	t.Setenv("MEDILENS_LONGITUDE", "77.6")
	t.Setenv("MEDILENS_SPLASH_DURATION", "1s")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", cfg.APIBaseURL)
	assert.Equal(t, "0.0.0.0:9090", cfg.ListenAddr)
	assert.Equal(t, "/tmp/test.db", cfg.DBPath)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, model.PositionOptions{Timeout: 2 * time.Second}, cfg.PositionOptions())
	assert.True(t, cfg.GeoAuto)
	assert.False(t, cfg.GeoPermitted)
	assert.Equal(t, &model.Coordinates{Latitude: 12.9, Longitude: 77.6}, cfg.DevicePosition)
	assert.Equal(t, time.Second, cfg.SplashDuration)
}

func TestLoad_DevelopmentSelectsDevBase(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("MEDILENS_ENV", "development")
	t.Setenv("MEDILENS_API_BASE", "https://ignored.example.com")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8000", cfg.APIBaseURL)
}

func TestLoad_DevelopmentCustomBase(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("MEDILENS_ENV", "development")
	t.Setenv("MEDILENS_DEV_API_BASE", "http://localhost:9000")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000", cfg.APIBaseURL)
}

func TestLoad_InvalidAPIBase(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("MEDILENS_API_BASE", "ftp://example.com")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MEDILENS_API_BASE")
}

func TestLoad_InvalidDurations(t *testing.T) {
	for _, key := range []string{
		"MEDILENS_HTTP_TIMEOUT",
		"MEDILENS_GEO_TIMEOUT",
		"MEDILENS_GEO_MAX_AGE",
		"MEDILENS_SPLASH_DURATION",
	} {
		t.Run(key, func(t *testing.T) {
			isolateConfigEnv(t)
			t.Setenv(key, "not-a-duration")

			cfg, err := Load()

			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoad_NegativeDuration(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("MEDILENS_GEO_TIMEOUT", "-1s")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "MEDILENS_GEO_TIMEOUT")
}

func TestLoad_InvalidGeoAuto(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("MEDILENS_GEO_AUTO", "sometimes")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "MEDILENS_GEO_AUTO")
}

func TestLoad_InvalidGeoPermission(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("MEDILENS_GEO_PERMISSION", "prompt")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "MEDILENS_GEO_PERMISSION")
}

func TestLoad_PartialDevicePosition(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("MEDILENS_LATITUDE", "12.9")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MEDILENS_LATITUDE")
}

func TestLoad_OutOfRangeDevicePosition(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("MEDILENS_LATITUDE", "95")
	t.Setenv("MEDILENS_LONGITUDE", "0")

	_, err := Load()

	var vErr *model.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "latitude", vErr.Field)
}

func TestLoad_SecretKey_Valid(t *testing.T) {
	isolateConfigEnv(t)
	// 64 hex chars = 32 bytes
	t.Setenv("MEDILENS_SECRET_KEY", "0102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f20")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Len(t, cfg.SecretKey, 32)
}

func TestLoad_SecretKey_TooShort(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("MEDILENS_SECRET_KEY", "deadbeef")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MEDILENS_SECRET_KEY")
}

func TestLoad_SecretKey_NotHex(t *testing.T) {
	isolateConfigEnv(t)
	// 64 chars but not valid hex
	t.Setenv("MEDILENS_SECRET_KEY", "zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MEDILENS_SECRET_KEY")
}
