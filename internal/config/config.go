// Package config loads StoreHunter settings from defaults, an optional config
// file, a .env file and STOREHUNTER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "STOREHUNTER"

type Configuration struct {
	Browser      Browser      `mapstructure:"browser"`
	Navigation   Navigation   `mapstructure:"navigation"`
	Batch        Batch        `mapstructure:"batch"`
	Interstitial Interstitial `mapstructure:"interstitial"`
	Server       Server       `mapstructure:"server"`
	Store        Store        `mapstructure:"store"`
	Report       Report       `mapstructure:"report"`
	DeviceFarm   DeviceFarm   `mapstructure:"devicefarm"`
	AWS          AWS          `mapstructure:"aws"`
	Log          Log          `mapstructure:"log"`
}

type Browser struct {
	ExecPath  string `mapstructure:"exec_path"`
	Headless  bool   `mapstructure:"headless"`
	NoSandbox bool   `mapstructure:"no_sandbox"`
	Locale    string `mapstructure:"locale"`
}

type Navigation struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	AbortGrace  time.Duration `mapstructure:"abort_grace"`
	SettleDelay time.Duration `mapstructure:"settle_delay"`
}

type Batch struct {
	Rate  float64 `mapstructure:"rate"`
	Burst int     `mapstructure:"burst"`
}

type Interstitial struct {
	Domains []string `mapstructure:"domains"`
	Phrases []string `mapstructure:"phrases"`
}

type Server struct {
	Addr                string   `mapstructure:"addr"`
	MaxConcurrentTests  int      `mapstructure:"max_concurrent_tests"`
	AllowPrivateTargets bool     `mapstructure:"allow_private_targets"`
	CORSOrigins         []string `mapstructure:"cors_origins"`
}

type Store struct {
	Backend       string        `mapstructure:"backend"`
	DatabaseURL   string        `mapstructure:"database_url"`
	MaxAge        time.Duration `mapstructure:"max_age"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type Report struct {
	S3Bucket   string `mapstructure:"s3_bucket"`
	S3Prefix   string `mapstructure:"s3_prefix"`
	S3Endpoint string `mapstructure:"s3_endpoint"`
}

type DeviceFarm struct {
	Region     string `mapstructure:"region"`
	ProjectARN string `mapstructure:"project_arn"`
}

type AWS struct {
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Region          string `mapstructure:"region"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SetDefaults registers every key so environment overrides are seen by
// Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("browser.exec_path", "")
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.no_sandbox", false)
	v.SetDefault("browser.locale", "en-US")
	v.SetDefault("navigation.timeout", 30*time.Second)
	v.SetDefault("navigation.abort_grace", 2*time.Second)
	v.SetDefault("navigation.settle_delay", time.Second)
	v.SetDefault("batch.rate", 0.0)
	v.SetDefault("batch.burst", 1)
	v.SetDefault("interstitial.domains", []string{})
	v.SetDefault("interstitial.phrases", []string{})
	v.SetDefault("server.addr", ":3000")
	v.SetDefault("server.max_concurrent_tests", 2)
	v.SetDefault("server.allow_private_targets", false)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("store.backend", "memory")
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.max_age", time.Hour)
	v.SetDefault("store.sweep_interval", time.Hour)
	v.SetDefault("report.s3_bucket", "")
	v.SetDefault("report.s3_prefix", "reports/")
	v.SetDefault("report.s3_endpoint", "")
	v.SetDefault("devicefarm.region", "us-west-2")
	v.SetDefault("devicefarm.project_arn", "")
	v.SetDefault("aws.access_key_id", "")
	v.SetDefault("aws.secret_access_key", "")
	v.SetDefault("aws.region", "us-east-1")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// NewViper returns a viper instance with defaults and environment binding.
// The standard AWS variables are honoured alongside the prefixed ones.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("aws.access_key_id", EnvPrefix+"_AWS_ACCESS_KEY_ID", "AWS_ACCESS_KEY_ID")
	_ = v.BindEnv("aws.secret_access_key", EnvPrefix+"_AWS_SECRET_ACCESS_KEY", "AWS_SECRET_ACCESS_KEY")
	_ = v.BindEnv("aws.region", EnvPrefix+"_AWS_REGION", "AWS_REGION")
	_ = v.BindEnv("devicefarm.project_arn", EnvPrefix+"_DEVICEFARM_PROJECT_ARN", "AWS_DEVICE_FARM_PROJECT_ARN")
	_ = v.BindEnv("store.database_url", EnvPrefix+"_STORE_DATABASE_URL", "DATABASE_URL")
	return v
}

// LoadDotEnv loads files (default ".env") into the process environment
// without overriding existing variables. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads the optional config file and decodes v into a validated
// Configuration.
func Load(v *viper.Viper, file string) (*Configuration, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}
	var c Configuration
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects settings the service cannot run with.
func (c *Configuration) Validate() error {
	var errs []error
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be debug, info, warn or error (got %q)", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json (got %q)", c.Log.Format))
	}
	switch c.Store.Backend {
	case "memory":
	case "postgres":
		if c.Store.DatabaseURL == "" {
			errs = append(errs, errors.New("store.database_url is required for the postgres backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.backend must be memory or postgres (got %q)", c.Store.Backend))
	}
	if c.Navigation.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("navigation.timeout must be positive (got %s)", c.Navigation.Timeout))
	}
	if c.Navigation.AbortGrace < 0 || c.Navigation.SettleDelay < 0 {
		errs = append(errs, errors.New("navigation.abort_grace and navigation.settle_delay must not be negative"))
	}
	if c.Batch.Rate < 0 {
		errs = append(errs, fmt.Errorf("batch.rate must not be negative (got %g)", c.Batch.Rate))
	}
	if c.Server.MaxConcurrentTests < 1 {
		errs = append(errs, fmt.Errorf("server.max_concurrent_tests must be at least 1 (got %d)", c.Server.MaxConcurrentTests))
	}
	return errors.Join(errs...)
}
