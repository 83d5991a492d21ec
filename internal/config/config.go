package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Defaults for upstream endpoints. All three are public, keyless APIs.
const (
	defaultIVBaseURL   = "https://waterservices.usgs.gov/nwis/iv/"
	defaultStatBaseURL = "https://waterservices.usgs.gov/nwis/stat/"
	defaultZipBaseURL  = "https://api.zippopotam.us"
)

// Config holds all engine settings, populated from environment variables.
type Config struct {
	LogLevel  string
	LogFormat string

	// HTTPAddr serves health and metrics endpoints in watch mode.
	// Empty disables the server.
	HTTPAddr        string
	ShutdownTimeout time.Duration

	RadiusMiles float64
	MaxSites    int
	MaxReports  int

	SiteCacheTTL   time.Duration
	ReportCacheTTL time.Duration

	USGSIVBaseURL   string
	USGSStatBaseURL string
	ZipBaseURL      string
	ReportsFeedURL  string
	UpstreamTimeout time.Duration

	LocationFile    string
	RefreshInterval time.Duration

	// DeviceLat/DeviceLon stand in for a positioning source on hosts that
	// have one. DeviceFixSet is true only when both are present.
	DeviceLat    float64
	DeviceLon    float64
	DeviceFixSet bool
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	siteTTL, err := parseDuration("SITE_CACHE_TTL", 15*time.Minute)
	if err != nil {
		return nil, err
	}
	reportTTL, err := parseDuration("REPORT_CACHE_TTL", 60*time.Minute)
	if err != nil {
		return nil, err
	}
	upstreamTimeout, err := parseDuration("UPSTREAM_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	refreshInterval, err := parseDuration("REFRESH_INTERVAL", 15*time.Minute)
	if err != nil {
		return nil, err
	}

	radius, err := parseFloat("RADIUS_MILES", 50)
	if err != nil {
		return nil, err
	}
	maxSites, err := parseInt("MAX_SITES", 6)
	if err != nil {
		return nil, err
	}
	maxReports, err := parseInt("MAX_REPORTS", 4)
	if err != nil {
		return nil, err
	}

	deviceLat, deviceLon, deviceFixSet, err := parseDeviceFix()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		LogLevel:  envOrDefault("LOG_LEVEL", "info"),
		LogFormat: envOrDefault("LOG_FORMAT", "text"),

		HTTPAddr:        os.Getenv("HTTP_ADDR"),
		ShutdownTimeout: shutdownTimeout,

		RadiusMiles: radius,
		MaxSites:    maxSites,
		MaxReports:  maxReports,

		SiteCacheTTL:   siteTTL,
		ReportCacheTTL: reportTTL,

		USGSIVBaseURL:   envOrDefault("USGS_IV_BASE_URL", defaultIVBaseURL),
		USGSStatBaseURL: envOrDefault("USGS_STAT_BASE_URL", defaultStatBaseURL),
		ZipBaseURL:      envOrDefault("ZIP_BASE_URL", defaultZipBaseURL),
		ReportsFeedURL:  os.Getenv("REPORTS_FEED_URL"),

		UpstreamTimeout: upstreamTimeout,

		LocationFile:    envOrDefault("LOCATION_FILE", defaultLocationFile()),
		RefreshInterval: refreshInterval,

		DeviceLat:    deviceLat,
		DeviceLon:    deviceLon,
		DeviceFixSet: deviceFixSet,
	}

	if cfg.RadiusMiles <= 0 {
		return nil, errors.New("RADIUS_MILES must be positive")
	}
	if cfg.MaxSites <= 0 {
		return nil, errors.New("MAX_SITES must be positive")
	}
	if cfg.MaxReports <= 0 {
		return nil, errors.New("MAX_REPORTS must be positive")
	}

	return cfg, nil
}

func parseDeviceFix() (lat, lon float64, set bool, err error) {
	latStr, lonStr := os.Getenv("DEVICE_LAT"), os.Getenv("DEVICE_LON")
	if latStr == "" && lonStr == "" {
		return 0, 0, false, nil
	}
	if latStr == "" || lonStr == "" {
		return 0, 0, false, errors.New("DEVICE_LAT and DEVICE_LON must be set together")
	}
	lat, latErr := strconv.ParseFloat(latStr, 64)
	lon, lonErr := strconv.ParseFloat(lonStr, 64)
	if latErr != nil || lonErr != nil {
		return 0, 0, false, errors.New("DEVICE_LAT and DEVICE_LON must be decimal degrees")
	}
	return lat, lon, true, nil
}

func defaultLocationFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "location.json"
	}
	return filepath.Join(dir, "localwaters", "location.json")
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func parseInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

func parseFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return f, nil
}
