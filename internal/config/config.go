package config

import (
	"encoding/json"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"tagsense/internal/core/model"
)

type Config struct {
	// HTTP API.
	Host     string
	Port     string
	APIToken string

	// LocalSense engine connection.
	WSHost   string
	WSPort   int
	Username string
	Password string

	// Alarm endpoint and signing key.
	AlarmHost string
	AlarmPort int
	SecretKey string

	// Geofencing.
	Zones        []model.Zone
	RetriggerSec int
	TargetTagID  uint32

	// Optional backing stores.
	MongoURI      string
	MongoDatabase string
	RedisURL      string
}

// LoadConfig reads the whole configuration from environment variables.
// Missing or malformed required variables are fatal: a geofencing server
// with a half-read zone table must not start.
func LoadConfig() *Config {
	cfg := &Config{
		Host:     getEnv("HOST", "0.0.0.0"),
		Port:     getEnv("PORT", "8000"),
		APIToken: getEnv("API_TOKEN", ""),

		WSHost:   requireEnv("LOCALSENSE_WS_HOST"),
		WSPort:   requireInt("LOCALSENSE_WS_PORT"),
		Username: requireEnv("LOCALSENSE_USERNAME"),
		Password: requireEnv("LOCALSENSE_PASSWORD"),

		AlarmHost: requireEnv("LOCALSENSE_ALARM_HOST"),
		AlarmPort: requireInt("LOCALSENSE_ALARM_PORT"),
		SecretKey: requireEnv("LOCALSENSE_SECRET_KEY"),

		RetriggerSec: requireInt("RETRIGGER_AFTER_SEC"),
		TargetTagID:  uint32(requireInt("TARGET_TAG_ID")),

		MongoURI:      getEnv("MONGODB_URI", ""),
		MongoDatabase: getEnv("MONGODB_DATABASE", "tagsense"),
		RedisURL:      getEnv("REDIS_URL", ""),
	}

	cfg.Zones = loadZones()
	return cfg
}

// RetriggerDuration is the minimum interval between repeated alerts for a
// tag that stays inside a zone.
func (c *Config) RetriggerDuration() time.Duration {
	return time.Duration(c.RetriggerSec) * time.Second
}

type zoneSpec struct {
	Name string  `json:"name"`
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// loadZones reads the danger zone table. DANGER_ZONES takes a JSON array of
// zone objects; the single-zone DANGER_ZONE_* variables remain supported
// for deployments with one press pit.
func loadZones() []model.Zone {
	var specs []zoneSpec

	if raw := os.Getenv("DANGER_ZONES"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &specs); err != nil {
			log.Fatalf("DANGER_ZONES is not valid JSON: %v", err)
		}
		if len(specs) == 0 {
			log.Fatal("DANGER_ZONES must contain at least one zone")
		}
	} else {
		specs = []zoneSpec{{
			Name: getEnv("DANGER_ZONE_NAME", "danger-zone"),
			MinX: requireFloat("DANGER_ZONE_MIN_X"),
			MinY: requireFloat("DANGER_ZONE_MIN_Y"),
			MaxX: requireFloat("DANGER_ZONE_MAX_X"),
			MaxY: requireFloat("DANGER_ZONE_MAX_Y"),
		}}
	}

	seen := make(map[string]bool, len(specs))
	zones := make([]model.Zone, 0, len(specs))
	for _, spec := range specs {
		if seen[spec.Name] {
			log.Fatalf("Duplicate danger zone name: %q", spec.Name)
		}
		seen[spec.Name] = true

		zone, err := model.NewZone(spec.Name, spec.MinX, spec.MinY, spec.MaxX, spec.MaxY)
		if err != nil {
			log.Fatalf("Invalid danger zone %q: %v", spec.Name, err)
		}
		zones = append(zones, zone)
	}
	return zones
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return strings.TrimSpace(value)
}

func requireEnv(key string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		log.Fatalf("%s environment variable is required", key)
	}
	return value
}

func requireInt(key string) int {
	value := requireEnv(key)
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Fatalf("%s must be an integer, got %q", key, value)
	}
	return n
}

func requireFloat(key string) float64 {
	value := requireEnv(key)
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Fatalf("%s must be a number, got %q", key, value)
	}
	return f
}
