package config

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"go_course_certify/internal/model"

	"github.com/spf13/viper"
)

type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Reconcile ReconcileConfig `mapstructure:"reconcile"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Directory DirectoryConfig `mapstructure:"directory"`
	Mailer    MailerConfig    `mapstructure:"mailer"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
	SES       SESConfig       `mapstructure:"ses"`
	SendGrid  SendGridConfig  `mapstructure:"sendgrid"`
	Events    EventsConfig    `mapstructure:"events"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // postgres | sqlite
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// EngineConfig tunes the progress and certificate engine.
type EngineConfig struct {
	MaxWriteAttempts       int           `mapstructure:"max_write_attempts"`
	BackoffInitial         time.Duration `mapstructure:"backoff_initial"`
	BackoffMax             time.Duration `mapstructure:"backoff_max"`
	ClaimGracePeriod       time.Duration `mapstructure:"claim_grace_period"`
	VerificationCodeLength int           `mapstructure:"verification_code_length"`
	VerificationCodeTries  int           `mapstructure:"verification_code_tries"`
}

type ReconcileConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Schedule    string `mapstructure:"schedule"`
	BatchSize   int    `mapstructure:"batch_size"`
	Concurrency int    `mapstructure:"concurrency"`
}

type CatalogConfig struct {
	Type    string             `mapstructure:"type"` // static | http
	BaseURL string             `mapstructure:"base_url"`
	Timeout time.Duration      `mapstructure:"timeout"`
	Courses []model.CourseInfo `mapstructure:"courses"`
}

type DirectoryUser struct {
	UserID      string `mapstructure:"user_id"`
	DisplayName string `mapstructure:"display_name"`
	Email       string `mapstructure:"email"`
}

type DirectoryConfig struct {
	Type    string          `mapstructure:"type"` // static | http
	BaseURL string          `mapstructure:"base_url"`
	Timeout time.Duration   `mapstructure:"timeout"`
	Users   []DirectoryUser `mapstructure:"users"`
}

type MailerConfig struct {
	Type string `mapstructure:"type"` // log | smtp | ses | sendgrid
}

type SMTPConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	From string `mapstructure:"from"`
}

type SESConfig struct {
	Region          string `mapstructure:"region"`
	From            string `mapstructure:"from"`
	AuthType        string `mapstructure:"auth_type"` // static_credentials | iam_role
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

type SendGridConfig struct {
	APIKey   string `mapstructure:"api_key"`
	From     string `mapstructure:"from"`
	FromName string `mapstructure:"from_name"`
}

type EventsConfig struct {
	Type      string `mapstructure:"type"` // log | redis
	RedisAddr string `mapstructure:"redis_addr"`
	Channel   string `mapstructure:"channel"`
}

var Cfg Config

// LoadConfig reads config.yaml from path (or the working directory), applies
// APP_* environment overrides and fills defaults.
func LoadConfig(path string) error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	v.AddConfigPath(".")

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			slog.Warn("Config file not found, using defaults and environment variables")
		} else {
			slog.Error("Error reading config file", slog.Any("error", err))
			return err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		slog.Error("Error unmarshalling config", slog.Any("error", err))
		return err
	}
	if !v.IsSet("reconcile.enabled") {
		cfg.Reconcile.Enabled = DefaultReconcileEnabled
	}
	cfg.ApplyDefaults()
	Cfg = cfg

	slog.Info("Config loaded",
		slog.String("server_port", Cfg.Server.Port),
		slog.String("db_driver", Cfg.Database.Driver),
		slog.String("catalog", Cfg.Catalog.Type),
		slog.String("directory", Cfg.Directory.Type),
		slog.String("mailer", Cfg.Mailer.Type),
		slog.String("events", Cfg.Events.Type),
		slog.Bool("reconcile_enabled", Cfg.Reconcile.Enabled),
	)
	return nil
}

// AutomaticEnv only resolves keys viper already knows about, so the scalar
// keys are bound explicitly.
func bindEnv(v *viper.Viper) {
	for _, key := range []string{
		"database.driver", "database.url",
		"server.port", "log.level",
		"engine.max_write_attempts", "engine.claim_grace_period",
		"reconcile.enabled", "reconcile.schedule",
		"catalog.type", "catalog.base_url",
		"directory.type", "directory.base_url",
		"mailer.type",
		"ses.region", "ses.from", "ses.auth_type", "ses.access_key_id", "ses.secret_access_key",
		"sendgrid.api_key", "sendgrid.from",
		"events.type", "events.redis_addr", "events.channel",
	} {
		_ = v.BindEnv(key)
	}
}

// ApplyDefaults fills every zero-valued setting with its default.
func (c *Config) ApplyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = DefaultDatabaseDriver
	}
	if c.Database.URL == "" {
		slog.Warn("Database URL is not set in config")
	}
	if c.Database.MaxOpenConns <= 0 {
		c.Database.MaxOpenConns = DefaultMaxOpenConns
	}
	if c.Database.MaxIdleConns <= 0 {
		c.Database.MaxIdleConns = DefaultMaxIdleConns
	}
	if c.Database.ConnMaxLifetime <= 0 {
		c.Database.ConnMaxLifetime = time.Hour
	}
	if c.Server.Port == "" {
		c.Server.Port = DefaultServerPort
	}
	if c.Server.RequestTimeout <= 0 {
		c.Server.RequestTimeout = DefaultRequestTimeout
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if len(c.CORS.AllowedMethods) == 0 {
		c.CORS.AllowedMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	}
	if len(c.CORS.AllowedHeaders) == 0 {
		c.CORS.AllowedHeaders = []string{"Content-Type", "X-Learner-ID", "X-Request-ID"}
	}

	if c.Engine.MaxWriteAttempts <= 0 {
		c.Engine.MaxWriteAttempts = DefaultMaxWriteAttempts
	}
	if c.Engine.BackoffInitial <= 0 {
		c.Engine.BackoffInitial = DefaultBackoffInitial
	}
	if c.Engine.BackoffMax <= 0 {
		c.Engine.BackoffMax = DefaultBackoffMax
	}
	if c.Engine.ClaimGracePeriod <= 0 {
		c.Engine.ClaimGracePeriod = DefaultClaimGracePeriod
	}
	if c.Engine.VerificationCodeLength < MinVerificationCodeLength {
		c.Engine.VerificationCodeLength = DefaultVerificationCodeLength
	}
	if c.Engine.VerificationCodeTries <= 0 {
		c.Engine.VerificationCodeTries = DefaultVerificationCodeTries
	}

	if c.Reconcile.Schedule == "" {
		c.Reconcile.Schedule = DefaultReconcileSchedule
	}
	if c.Reconcile.BatchSize <= 0 {
		c.Reconcile.BatchSize = DefaultReconcileBatchSize
	}
	if c.Reconcile.Concurrency <= 0 {
		c.Reconcile.Concurrency = DefaultReconcileConcurrency
	}

	if c.Catalog.Type == "" {
		c.Catalog.Type = "static"
	}
	if c.Catalog.Timeout <= 0 {
		c.Catalog.Timeout = DefaultCollaboratorTimeout
	}
	if c.Directory.Type == "" {
		c.Directory.Type = "static"
	}
	if c.Directory.Timeout <= 0 {
		c.Directory.Timeout = DefaultCollaboratorTimeout
	}
	if c.Mailer.Type == "" {
		c.Mailer.Type = "log"
	}
	if c.Events.Type == "" {
		c.Events.Type = "log"
	}
	if c.Events.Channel == "" {
		c.Events.Channel = DefaultEventsChannel
	}
}
