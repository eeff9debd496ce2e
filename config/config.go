/*
Package config loads service configuration.

PURPOSE:
  Layers defaults, an optional YAML file and LEAVE_-prefixed environment
  variables (dots become underscores: auth.secret → LEAVE_AUTH_SECRET)
  into one Config, then validates it.

SECTIONS:
  server        listen address, timeouts, CORS, static dir, upload limit
  database      SQLite path
  logger        zap level / format / output
  auth          token secret, session TTL, cookie, default admin
  leave         annual and sick policy documents (see factory)
  certificates  local or s3 backend
  scheduler     session purge

USAGE:
  cfg, err := config.Load("config.yaml")
  annual, sick, err := cfg.Policies()

SEE ALSO:
  - config.example.yaml: every key with its default
  - factory/policy.go: leave.* schema
*/
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/warp/leave-manager/certstore"
	"github.com/warp/leave-manager/factory"
	"github.com/warp/leave-manager/logging"
	"github.com/warp/leave-manager/timeoff"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "LEAVE"

// Config is the full service configuration.
type Config struct {
	Server       ServerConfig            `mapstructure:"server"`
	Database     DatabaseConfig          `mapstructure:"database"`
	Logger       logging.Config          `mapstructure:"logger"`
	Auth         AuthConfig              `mapstructure:"auth"`
	Leave        factory.LeavePolicyJSON `mapstructure:"leave"`
	Certificates certstore.Config        `mapstructure:"certificates"`
	Scheduler    SchedulerConfig         `mapstructure:"scheduler"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	StaticDir       string        `mapstructure:"static_dir"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes"`
}

// Addr is the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type AuthConfig struct {
	Secret               string        `mapstructure:"secret"`
	SessionTTL           time.Duration `mapstructure:"session_ttl"`
	CookieName           string        `mapstructure:"cookie_name"`
	CookieSecure         bool          `mapstructure:"cookie_secure"`
	DefaultAdminUsername string        `mapstructure:"default_admin_username"`
	DefaultAdminPassword string        `mapstructure:"default_admin_password"`
	BcryptCost           int           `mapstructure:"bcrypt_cost"`
}

type SchedulerConfig struct {
	Enabled              bool          `mapstructure:"enabled"`
	SessionPurgeInterval time.Duration `mapstructure:"session_purge_interval"`
}

// Load reads configuration. An empty path skips the file layer.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// No default for the cap, so AutomaticEnv cannot see it on its own.
	_ = v.BindEnv("leave.annual.cap")

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.static_dir", "")
	v.SetDefault("server.max_upload_bytes", 10<<20)

	// Database
	v.SetDefault("database.path", "data/leave.db")

	// Logger
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output_path", "stdout")

	// Auth
	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.session_ttl", 12*time.Hour)
	v.SetDefault("auth.cookie_name", "leave_session")
	v.SetDefault("auth.cookie_secure", false)
	v.SetDefault("auth.default_admin_username", "admin")
	v.SetDefault("auth.default_admin_password", "admin123")
	v.SetDefault("auth.bcrypt_cost", 0)

	// Leave policies
	v.SetDefault("leave.annual.default_rate", "1.25")
	v.SetDefault("leave.sick.probation_days", timeoff.DefaultProbationDays)
	v.SetDefault("leave.sick.probation_entitlement", timeoff.DefaultProbationEntitlement)
	v.SetDefault("leave.sick.cycle_days", timeoff.DefaultCycleDays)
	v.SetDefault("leave.sick.cycle_entitlement", timeoff.DefaultCycleEntitlement)

	// Certificates
	v.SetDefault("certificates.backend", "local")
	v.SetDefault("certificates.local_dir", "data/certificates")
	v.SetDefault("certificates.s3.bucket", "")
	v.SetDefault("certificates.s3.region", "us-east-1")
	v.SetDefault("certificates.s3.endpoint", "")
	v.SetDefault("certificates.s3.access_key_id", "")
	v.SetDefault("certificates.s3.secret_access_key", "")
	v.SetDefault("certificates.s3.use_path_style", false)

	// Scheduler
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.session_purge_interval", time.Hour)
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("server timeouts must be positive"))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("server.max_upload_bytes must be positive"))
	}
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	if c.Auth.Secret == "" {
		errs = append(errs, errors.New("auth.secret is required (set LEAVE_AUTH_SECRET)"))
	}
	if c.Auth.SessionTTL <= 0 {
		errs = append(errs, errors.New("auth.session_ttl must be positive"))
	}
	if c.Auth.CookieName == "" {
		errs = append(errs, errors.New("auth.cookie_name is required"))
	}

	switch c.Certificates.Backend {
	case "local":
		if c.Certificates.LocalDir == "" {
			errs = append(errs, errors.New("certificates.local_dir is required for the local backend"))
		}
	case "s3":
		if c.Certificates.S3.Bucket == "" {
			errs = append(errs, errors.New("certificates.s3.bucket is required for the s3 backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("certificates.backend must be local or s3, got %q", c.Certificates.Backend))
	}

	if c.Scheduler.Enabled && c.Scheduler.SessionPurgeInterval <= 0 {
		errs = append(errs, errors.New("scheduler.session_purge_interval must be positive"))
	}

	if _, _, err := c.Policies(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Policies builds the engine policies from the leave section.
func (c *Config) Policies() (timeoff.AnnualPolicy, timeoff.SickPolicy, error) {
	return factory.NewPolicyFactory().FromJSON(c.Leave)
}
