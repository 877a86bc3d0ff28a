package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the configuration settings for the dispatch service.
//
// Fields:
// - Env: The current environment (local, development, production).
// - Port: The port for the monitoring server.
// - ProviderType: The type of geocoding provider to use (google, nominatim).
// - APIKey: The API key for the geocoding provider (required for Google).
// - Debounce: The quiet period before a queued geocode batch runs.
// - ChunkSize: The number of concurrent geocode calls per batch chunk.
// - PollInterval: The interval at which the order stream polls the backend.
// - BusinessLat/BusinessLng: The pizzeria's own location, used as a proximity
//   hint to bias geocoding toward the locally relevant area.
// - Database: Configuration settings for the PostgreSQL database.
type Config struct {
	Env          string         // Env is the current environment: local, development, production.
	Port         int            // Port is the monitoring server port.
	ProviderType string         // ProviderType specifies which geocoding provider to use.
	APIKey       string         // APIKey for the external geocoding service.
	Debounce     time.Duration  // Debounce is the geocode scheduler quiet period.
	ChunkSize    int            // ChunkSize caps concurrent geocode calls per chunk.
	PollInterval time.Duration  // PollInterval is the order stream polling interval.
	BusinessLat  float64        // BusinessLat is the latitude of the pizzeria.
	BusinessLng  float64        // BusinessLng is the longitude of the pizzeria.
	Database     PostgresConfig // Database holds the postgres database configuration.
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string // Host is the database server address.
	Port     string // Port is the database server port.
	User     string // User is the database user.
	Password string // Password is the database user's password.
	Name     string // Name is the name of the database.
}

// MustLoad reads the configuration from the environment (a local .env file is
// honored when present) and panics if a value cannot be parsed. The geocoding
// pipeline defaults follow the dashboard behavior: a 300ms debounce and chunks
// of 8 concurrent lookups.
func MustLoad() *Config {
	_ = godotenv.Load()

	vpr := viper.New()
	vpr.SetEnvPrefix("DISPATCH")
	vpr.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vpr.AutomaticEnv()

	vpr.SetDefault("env", "production")
	vpr.SetDefault("health_port", 8080)
	vpr.SetDefault("provider_type", "nominatim")
	vpr.SetDefault("geocode_debounce", "300ms")
	vpr.SetDefault("geocode_chunk_size", 8)
	vpr.SetDefault("poll_interval", "5s")
	vpr.SetDefault("business_lat", 0.0)
	vpr.SetDefault("business_lng", 0.0)
	vpr.SetDefault("db.port", "5432")

	debounce, err := time.ParseDuration(vpr.GetString("geocode_debounce"))
	if err != nil {
		panic("failed to parse geocode debounce from configuration")
	}

	pollInterval, err := time.ParseDuration(vpr.GetString("poll_interval"))
	if err != nil {
		panic("failed to parse poll interval from configuration")
	}

	return &Config{
		Env:          vpr.GetString("env"),
		Port:         vpr.GetInt("health_port"),
		ProviderType: vpr.GetString("provider_type"),
		APIKey:       vpr.GetString("provider_key"),
		Debounce:     debounce,
		ChunkSize:    vpr.GetInt("geocode_chunk_size"),
		PollInterval: pollInterval,
		BusinessLat:  vpr.GetFloat64("business_lat"),
		BusinessLng:  vpr.GetFloat64("business_lng"),
		Database: PostgresConfig{
			Host:     vpr.GetString("db.host"),
			Port:     vpr.GetString("db.port"),
			User:     vpr.GetString("db.username"),
			Password: vpr.GetString("db.password"),
			Name:     vpr.GetString("db.name"),
		},
	}
}
