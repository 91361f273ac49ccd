// Package config loads and validates the mining invocation's JSON
// configuration file, with environment-variable overrides applied on top.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"candleminer/internal/mineerrors"
)

// Config is the full recognised configuration, spanning the mining
// parameters of spec.md §6 and the ambient service/storage layers.
type Config struct {
	Candle   CandleConfig   `json:"candle"`
	Zigzag   ZigzagConfig   `json:"zigzag"`
	Common   CommonConfig   `json:"common"`
	Report   ReportConfig   `json:"report"`
	Logging  LoggingConfig  `json:"logging"`
	Server   ServerConfig   `json:"server"`
	Auth     AuthConfig     `json:"auth"`
	Vault    VaultConfig    `json:"vault"`
	Redis    RedisConfig    `json:"redis"`
	Database DatabaseConfig `json:"database"`
}

// CandleConfig holds the candle miner's tunables (spec §6).
type CandleConfig struct {
	CandleFitTolerance float64 `json:"candle-fit-tolerance" validate:"gte=0"`
	VolumeFitTolerance float64 `json:"volume-fit-tolerance"`
	PatternLength      int     `json:"pattern-length" validate:"gte=2,lte=31"`
	FitSignatures      bool    `json:"fit-signatures"`
}

// ZigzagConfig holds the zigzag miner's tunables (spec §6).
type ZigzagConfig struct {
	Zigzags        int     `json:"zigzags" validate:"gte=2"`
	Epsilon        int     `json:"epsilon" validate:"gte=1"`
	PriceTolerance float64 `json:"price-tolerance"`
	VolumeTolerance float64 `json:"volume-tolerance"`
	TimeTolerance  int     `json:"time-tolerance"`
}

// CommonConfig holds the tunables shared by both miners (spec §6).
type CommonConfig struct {
	SamplePercentage float64 `json:"sample-percentage"`
	ExitAfter        int     `json:"exit-after" validate:"gte=1,lte=100"`
	MomentumOrder    int     `json:"momentum-order"`
}

// ReportConfig holds the orchestrator's filter predicates (spec §6).
type ReportConfig struct {
	OutputFilename string  `json:"output-filename"`
	FilterP        float64 `json:"filter-p"`
	FilterMean     float64 `json:"filter-mean"`
	FilterMeanP    float64 `json:"filter-mean-p"`
	FilterCount    int     `json:"filter-count"`
	FilterTrivial  bool    `json:"filter-trivial"`
}

// LoggingConfig controls the structured logger (internal/logging).
type LoggingConfig struct {
	Level       string `json:"level"`        // DEBUG, INFO, WARN, ERROR
	Output      string `json:"output"`       // stdout, stderr, or file path
	JSONFormat  bool   `json:"json_format"`  // Output as JSON
	IncludeFile bool   `json:"include_file"` // Include file and line number
}

// ServerConfig holds the mining HTTP service's listener settings.
type ServerConfig struct {
	Port            int    `json:"port"`
	Host            string `json:"host"`
	AllowedOrigins  string `json:"allowed_origins"`
	ReadTimeout     int    `json:"read_timeout"`
	WriteTimeout    int    `json:"write_timeout"`
	ShutdownTimeout int    `json:"shutdown_timeout"`
}

// AuthConfig holds bearer-token authentication settings for the HTTP service.
// There is no self-service registration: a single operator account is
// configured up front, identified by OperatorEmail with a bcrypt hash in
// OperatorPasswordHash.
type AuthConfig struct {
	Enabled              bool          `json:"enabled"`
	JWTSecret            string        `json:"jwt_secret"`
	AccessTokenDuration  time.Duration `json:"access_token_duration"`
	RefreshTokenDuration time.Duration `json:"refresh_token_duration"`
	MinPasswordLength    int           `json:"min_password_length"`
	OperatorEmail        string        `json:"operator_email"`
	OperatorPasswordHash string        `json:"operator_password_hash"`
}

// VaultConfig holds HashiCorp Vault settings used to resolve secrets that
// would otherwise live in plaintext config (DB DSN, Redis password, JWT
// secret).
type VaultConfig struct {
	Enabled    bool   `json:"enabled"`
	Address    string `json:"address"`
	Token      string `json:"token"`
	MountPath  string `json:"mount_path"`
	SecretPath string `json:"secret_path"`
}

// RedisConfig holds the result-cache connection settings.
type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	PoolSize int    `json:"pool_size"`
	TTL      time.Duration `json:"ttl"`
}

// DatabaseConfig holds the mining-run audit-log connection settings.
type DatabaseConfig struct {
	Enabled bool   `json:"enabled"`
	DSN     string `json:"dsn"`
}

var validate = validator.New()

// Load reads the JSON file at path, applies environment-variable overrides,
// fills in spec-mandated defaults for any key the file omitted, and
// validates structural invariants (pattern-length range, zigzags >= 2).
func Load(path string) (*Config, error) {
	cfg, err := loadFromFile(path)
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)

	if err := validate.Struct(cfg); err != nil {
		return nil, mineerrors.NewConfigError("invalid configuration", err)
	}
	return cfg, nil
}

func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, mineerrors.NewIOError(path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, mineerrors.NewConfigError(fmt.Sprintf("parsing %s", path), err)
	}
	return &cfg, nil
}

// applyDefaults fills in the spec §6 defaults for any key that was zero in
// the parsed file (JSON's zero value for a field coincides with "not set"
// for every key here, since every default is itself non-zero or a
// recognisable "off" sentinel).
func applyDefaults(cfg *Config) {
	if cfg.Candle.CandleFitTolerance == 0 {
		cfg.Candle.CandleFitTolerance = 0.1
	}
	if cfg.Candle.PatternLength == 0 {
		cfg.Candle.PatternLength = 2
	}
	if cfg.Common.SamplePercentage == 0 {
		cfg.Common.SamplePercentage = -1
	}
	if cfg.Common.ExitAfter == 0 {
		cfg.Common.ExitAfter = 2
	}
	if cfg.Common.MomentumOrder == 0 {
		cfg.Common.MomentumOrder = -1
	}
	if cfg.Zigzag.Zigzags == 0 {
		cfg.Zigzag.Zigzags = 2
	}
	if cfg.Zigzag.Epsilon == 0 {
		cfg.Zigzag.Epsilon = 6
	}
	if cfg.Zigzag.PriceTolerance == 0 {
		cfg.Zigzag.PriceTolerance = 0.1
	}
	if cfg.Zigzag.VolumeTolerance == 0 {
		cfg.Zigzag.VolumeTolerance = -1
	}
	if cfg.Zigzag.TimeTolerance == 0 {
		cfg.Zigzag.TimeTolerance = 2
	}
}

// applyEnvOverrides layers environment variables over the file-supplied
// values for the ambient/domain stack — the mining parameters themselves
// are always sourced from the config file and CLI, never the environment.
func applyEnvOverrides(cfg *Config) {
	cfg.Logging.Level = getEnvOrDefault("LOG_LEVEL", orDefault(cfg.Logging.Level, "INFO"))
	cfg.Logging.Output = getEnvOrDefault("LOG_OUTPUT", orDefault(cfg.Logging.Output, "stdout"))
	cfg.Logging.JSONFormat = getEnvOrDefault("LOG_JSON", boolStr(cfg.Logging.JSONFormat)) == "true"
	cfg.Logging.IncludeFile = getEnvOrDefault("LOG_INCLUDE_FILE", boolStr(cfg.Logging.IncludeFile)) == "true"

	cfg.Server.Port = getEnvIntOrDefault("SERVER_PORT", orDefaultInt(cfg.Server.Port, 8080))
	cfg.Server.Host = getEnvOrDefault("SERVER_HOST", orDefault(cfg.Server.Host, "0.0.0.0"))
	cfg.Server.AllowedOrigins = getEnvOrDefault("SERVER_ALLOWED_ORIGINS", orDefault(cfg.Server.AllowedOrigins, "*"))
	cfg.Server.ReadTimeout = getEnvIntOrDefault("SERVER_READ_TIMEOUT", orDefaultInt(cfg.Server.ReadTimeout, 30))
	cfg.Server.WriteTimeout = getEnvIntOrDefault("SERVER_WRITE_TIMEOUT", orDefaultInt(cfg.Server.WriteTimeout, 30))

	cfg.Auth.Enabled = getEnvOrDefault("AUTH_ENABLED", boolStr(cfg.Auth.Enabled)) == "true"
	cfg.Auth.JWTSecret = getEnvOrDefault("AUTH_JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.AccessTokenDuration = getEnvDurationOrDefault("AUTH_ACCESS_TOKEN_DURATION", orDefaultDuration(cfg.Auth.AccessTokenDuration, 15*time.Minute))
	cfg.Auth.RefreshTokenDuration = getEnvDurationOrDefault("AUTH_REFRESH_TOKEN_DURATION", orDefaultDuration(cfg.Auth.RefreshTokenDuration, 7*24*time.Hour))
	cfg.Auth.MinPasswordLength = getEnvIntOrDefault("AUTH_MIN_PASSWORD_LENGTH", orDefaultInt(cfg.Auth.MinPasswordLength, 8))
	cfg.Auth.OperatorEmail = getEnvOrDefault("AUTH_OPERATOR_EMAIL", cfg.Auth.OperatorEmail)
	cfg.Auth.OperatorPasswordHash = getEnvOrDefault("AUTH_OPERATOR_PASSWORD_HASH", cfg.Auth.OperatorPasswordHash)

	cfg.Vault.Enabled = getEnvOrDefault("VAULT_ENABLED", boolStr(cfg.Vault.Enabled)) == "true"
	cfg.Vault.Address = getEnvOrDefault("VAULT_ADDR", orDefault(cfg.Vault.Address, "http://localhost:8200"))
	cfg.Vault.Token = getEnvOrDefault("VAULT_TOKEN", cfg.Vault.Token)
	cfg.Vault.MountPath = getEnvOrDefault("VAULT_MOUNT_PATH", orDefault(cfg.Vault.MountPath, "secret"))
	cfg.Vault.SecretPath = getEnvOrDefault("VAULT_SECRET_PATH", orDefault(cfg.Vault.SecretPath, "candleminer/secrets"))

	cfg.Redis.Enabled = getEnvOrDefault("REDIS_ENABLED", boolStr(cfg.Redis.Enabled)) == "true"
	cfg.Redis.Address = getEnvOrDefault("REDIS_ADDR", orDefault(cfg.Redis.Address, "localhost:6379"))
	cfg.Redis.Password = getEnvOrDefault("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvIntOrDefault("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.PoolSize = getEnvIntOrDefault("REDIS_POOL_SIZE", orDefaultInt(cfg.Redis.PoolSize, 10))
	cfg.Redis.TTL = getEnvDurationOrDefault("REDIS_TTL", orDefaultDuration(cfg.Redis.TTL, time.Hour))

	cfg.Database.Enabled = getEnvOrDefault("DATABASE_ENABLED", boolStr(cfg.Database.Enabled)) == "true"
	cfg.Database.DSN = getEnvOrDefault("DATABASE_DSN", cfg.Database.DSN)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func orDefaultInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func orDefaultDuration(v, def time.Duration) time.Duration {
	if v == 0 {
		return def
	}
	return v
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// GenerateSampleConfig writes a configuration file populated with every
// spec-mandated default.
func GenerateSampleConfig(filename string) error {
	cfg := Config{
		Candle: CandleConfig{
			CandleFitTolerance: 0.1,
			VolumeFitTolerance: 0,
			PatternLength:      2,
			FitSignatures:      false,
		},
		Zigzag: ZigzagConfig{
			Zigzags:         2,
			Epsilon:         6,
			PriceTolerance:  0.1,
			VolumeTolerance: -1,
			TimeTolerance:   2,
		},
		Common: CommonConfig{
			SamplePercentage: -1,
			ExitAfter:        2,
			MomentumOrder:    -1,
		},
		Report: ReportConfig{},
		Logging: LoggingConfig{
			Level:      "INFO",
			Output:     "stdout",
			JSONFormat: true,
		},
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0o644)
}
