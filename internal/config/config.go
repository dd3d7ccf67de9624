// Package config loads application configuration from environment variables.
package config

import (
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ericfisherdev/medilens/internal/domain/model"
)

// EnvDevelopment selects the development API base.
const EnvDevelopment = "development"

// Default values for optional variables.
const (
	defaultAPIBase        = "https://hsc1606.onrender.com"
	defaultDevAPIBase     = "http://127.0.0.1:8000"
	defaultListenAddr     = "127.0.0.1:5173"
	defaultDBPath         = "medilens.db"
	defaultHTTPTimeout    = 30 * time.Second
	defaultGeoTimeout     = 8 * time.Second
	defaultGeoMaxAge      = 60 * time.Second
	defaultSplashDuration = 3250 * time.Millisecond
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	Env            string
	APIBaseURL     string
	ListenAddr     string
	DBPath         string
	SecretKey      []byte
	HTTPTimeout    time.Duration
	GeoTimeout     time.Duration
	GeoMaxAge      time.Duration
	GeoAuto        bool
	GeoPermitted   bool
	DevicePosition *model.Coordinates
	SplashDuration time.Duration
}

// PositionOptions returns the configured geolocation acquisition options.
func (c *Config) PositionOptions() model.PositionOptions {
	return model.PositionOptions{Timeout: c.GeoTimeout, MaximumAge: c.GeoMaxAge}
}

// HasDevicePosition reports whether a fixed device position was configured.
// Without one the client has no geolocation capability.
func (c *Config) HasDevicePosition() bool {
	return c.DevicePosition != nil
}

// Load reads configuration from environment variables and returns a validated Config.
// All variables are optional. MEDILENS_ENV=development selects MEDILENS_DEV_API_BASE
// (http://127.0.0.1:8000), otherwise MEDILENS_API_BASE (https://hsc1606.onrender.com)
// is used. MEDILENS_SECRET_KEY, when set, must be 64 hex characters.
func Load() (*Config, error) {
	env := strings.TrimSpace(os.Getenv("MEDILENS_ENV"))

	apiBase := lookupString("MEDILENS_API_BASE", defaultAPIBase)
	apiVar := "MEDILENS_API_BASE"
	if env == EnvDevelopment {
		apiBase = lookupString("MEDILENS_DEV_API_BASE", defaultDevAPIBase)
		apiVar = "MEDILENS_DEV_API_BASE"
	}
	if err := validateBaseURL(apiBase); err != nil {
		return nil, fmt.Errorf("%s %w", apiVar, err)
	}

	secretKey, err := loadSecretKey()
	if err != nil {
		return nil, err
	}

	httpTimeout, err := lookupDuration("MEDILENS_HTTP_TIMEOUT", defaultHTTPTimeout)
	if err != nil {
		return nil, err
	}
	geoTimeout, err := lookupDuration("MEDILENS_GEO_TIMEOUT", defaultGeoTimeout)
	if err != nil {
		return nil, err
	}
	geoMaxAge, err := lookupDuration("MEDILENS_GEO_MAX_AGE", defaultGeoMaxAge)
	if err != nil {
		return nil, err
	}
	splash, err := lookupDuration("MEDILENS_SPLASH_DURATION", defaultSplashDuration)
	if err != nil {
		return nil, err
	}

	geoAuto := false
	if v, ok := os.LookupEnv("MEDILENS_GEO_AUTO"); ok && v != "" {
		geoAuto, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("MEDILENS_GEO_AUTO has invalid boolean %q: %w", v, err)
		}
	}

	geoPermitted := true
	if v, ok := os.LookupEnv("MEDILENS_GEO_PERMISSION"); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "granted":
		case "denied":
			geoPermitted = false
		default:
			return nil, fmt.Errorf("MEDILENS_GEO_PERMISSION must be granted or denied, got %q", v)
		}
	}

	position, err := model.ParseCoordinates(os.Getenv("MEDILENS_LATITUDE"), os.Getenv("MEDILENS_LONGITUDE"))
	if err != nil {
		return nil, fmt.Errorf("MEDILENS_LATITUDE/MEDILENS_LONGITUDE: %w", err)
	}

	return &Config{
		Env:            env,
		APIBaseURL:     strings.TrimRight(apiBase, "/"),
		ListenAddr:     lookupString("MEDILENS_LISTEN_ADDR", defaultListenAddr),
		DBPath:         lookupString("MEDILENS_DB_PATH", defaultDBPath),
		SecretKey:      secretKey,
		HTTPTimeout:    httpTimeout,
		GeoTimeout:     geoTimeout,
		GeoMaxAge:      geoMaxAge,
		GeoAuto:        geoAuto,
		GeoPermitted:   geoPermitted,
		DevicePosition: position,
		SplashDuration: splash,
	}, nil
}

func lookupString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func lookupDuration(key string, def time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s has invalid duration %q: %w", key, v, err)
	}
	if parsed < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %q", key, v)
	}
	return parsed, nil
}

// loadSecretKey decodes MEDILENS_SECRET_KEY into a 32-byte AES-256 key.
// An unset variable yields a nil key and tokens are stored unencrypted.
func loadSecretKey() ([]byte, error) {
	v, ok := os.LookupEnv("MEDILENS_SECRET_KEY")
	if !ok || v == "" {
		return nil, nil
	}
	if len(v) != 64 {
		return nil, fmt.Errorf("MEDILENS_SECRET_KEY must be 64 hex characters (32 bytes), got %d characters", len(v))
	}
	key, err := hex.DecodeString(v)
	if err != nil {
		return nil, fmt.Errorf("MEDILENS_SECRET_KEY is not valid hex: %w", err)
	}
	return key, nil
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("is not a valid URL %q: %w", raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("must be an absolute http(s) URL, got %q", raw)
	}
	return nil
}
