package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port       string `env:"PORT,        default=8080"`
	Env        string `env:"ENV,         default=development"`
	LogLevel   string `env:"LOG_LEVEL,   default=info"`
	JWTSecret  string `env:"JWT_SECRET"`
	// OperatorPasswordHash is the bcrypt hash of the password exchanged for
	// an API token at /auth/token.
	OperatorPasswordHash string `env:"OPERATOR_PASSWORD_HASH"`

	Upstream UpstreamConfig
	Tracker  TrackerConfig
	Mongo    MongoConfig
	Redis    RedisConfig
}

// UpstreamConfig holds the ParcelsApp API settings. APIKey and
// DestinationCountry are treated as immutable for the process lifetime.
type UpstreamConfig struct {
	BaseURL            string        `env:"PARCELSAPP_BASE_URL,  default=https://parcelsapp.com"`
	APIKey             string        `env:"PARCELSAPP_API_KEY"`
	DestinationCountry string        `env:"DESTINATION_COUNTRY"`
	Language           string        `env:"PARCELSAPP_LANGUAGE,  default=en"`
	Timeout            time.Duration `env:"PARCELSAPP_TIMEOUT,   default=10s"`
}

// TrackerConfig tunes the coordinator. UUIDTTL is the session staleness
// threshold — the upstream session lifetime is undocumented, so it is a
// knob rather than a constant.
type TrackerConfig struct {
	UUIDTTL      time.Duration `env:"UUID_TTL,       default=30m"`
	ScanInterval time.Duration `env:"SCAN_INTERVAL,  default=20m"`
	MaxInFlight  int           `env:"MAX_IN_FLIGHT,  default=4"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=parcel_tracker"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
