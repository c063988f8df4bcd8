package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the server
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Auth        AuthConfig
	Logging     LoggingConfig
	RateLimit   RateLimitConfig
	Simulation  SimulationConfig
	Replication ReplicationConfig
}

type ServerConfig struct {
	Addr        string
	Environment string
	CORSOrigins []string
	MaxConns    int
	MaxConnsIP  int
}

type DatabaseConfig struct {
	Path string
}

type AuthConfig struct {
	JWTSecret       string
	TokenExpiration time.Duration
	AllowGuests     bool
}

type LoggingConfig struct {
	Level      string
	JSONFormat bool
}

type RateLimitConfig struct {
	MessagesPerSecond float64
	BurstSize         int
}

type SimulationConfig struct {
	MovementInterval  time.Duration
	CombatInterval    time.Duration
	BroadcastInterval time.Duration
	EffectLifetime    time.Duration
	SectorName        string
	AsteroidCount     int
	SentryCount       int
	SpawnRadius       float64
}

type ReplicationConfig struct {
	ResyncInterval time.Duration
	Decimation     int
	WindowInterval time.Duration
	WindowSize     float64
	WindowMargin   float64
}

// LoadConfig reads an optional env file and assembles the config from the
// environment
func LoadConfig(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	environment := getEnv("ENVIRONMENT", "development")
	cfg := &Config{
		Server: ServerConfig{
			Addr:        getEnv("SERVER_ADDR", ":8080"),
			Environment: environment,
			CORSOrigins: []string{getEnv("CORS_ORIGIN", "*")},
			MaxConns:    getEnvInt("SERVER_MAX_CONNS", 1000),
			MaxConnsIP:  getEnvInt("SERVER_MAX_CONNS_PER_IP", 5),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "sector.db"),
		},
		Auth: AuthConfig{
			JWTSecret:       getEnv("JWT_SECRET", ""),
			TokenExpiration: time.Duration(getEnvInt("JWT_EXPIRATION_HOURS", 168)) * time.Hour,
			AllowGuests:     getEnv("ALLOW_GUESTS", "true") == "true",
		},
		Logging: LoggingConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			JSONFormat: environment == "production",
		},
		RateLimit: RateLimitConfig{
			MessagesPerSecond: getEnvFloat("RATE_LIMIT_MESSAGES_PER_SECOND", 30),
			BurstSize:         getEnvInt("RATE_LIMIT_BURST_SIZE", 50),
		},
		Simulation: SimulationConfig{
			MovementInterval:  getEnvMillis("MOVEMENT_INTERVAL_MS", 50),
			CombatInterval:    getEnvMillis("COMBAT_INTERVAL_MS", 100),
			BroadcastInterval: getEnvMillis("BROADCAST_INTERVAL_MS", 100),
			EffectLifetime:    getEnvMillis("EFFECT_LIFETIME_MS", int(DefaultEffectLifetime/time.Millisecond)),
			SectorName:        getEnv("SECTOR_NAME", "Alpha"),
			AsteroidCount:     getEnvInt("SECTOR_ASTEROIDS", 24),
			SentryCount:       getEnvInt("SECTOR_SENTRIES", 2),
			SpawnRadius:       getEnvFloat("SPAWN_RADIUS", 400),
		},
		Replication: ReplicationConfig{
			ResyncInterval: getEnvMillis("RESYNC_INTERVAL_MS", 50),
			Decimation:     getEnvInt("LOWRES_DECIMATION", DefaultDecimation),
			WindowInterval: getEnvMillis("WINDOW_INTERVAL_MS", 750),
			WindowSize:     getEnvFloat("WINDOW_SIZE", 1000),
			WindowMargin:   getEnvFloat("WINDOW_MARGIN", 250),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("SERVER_ADDR is required")
	}
	if c.Auth.JWTSecret != "" && len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long")
	}
	if c.Replication.Decimation < 1 {
		return fmt.Errorf("LOWRES_DECIMATION must be at least 1")
	}
	if c.Replication.WindowMargin < 0 || c.Replication.WindowMargin >= c.Replication.WindowSize {
		return fmt.Errorf("WINDOW_MARGIN must be in [0, WINDOW_SIZE)")
	}
	for name, d := range map[string]time.Duration{
		"MOVEMENT_INTERVAL_MS":  c.Simulation.MovementInterval,
		"COMBAT_INTERVAL_MS":    c.Simulation.CombatInterval,
		"BROADCAST_INTERVAL_MS": c.Simulation.BroadcastInterval,
		"RESYNC_INTERVAL_MS":    c.Replication.ResyncInterval,
		"WINDOW_INTERVAL_MS":    c.Replication.WindowInterval,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}

// SlogLevel maps the configured level name to a slog level
func (c LoggingConfig) SlogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	f, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return fallback
	}
	return f
}

func getEnvMillis(key string, fallback int) time.Duration {
	return time.Duration(getEnvInt(key, fallback)) * time.Millisecond
}
