package models

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         string `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	DBName       string `mapstructure:"dbname"`
	SSLMode      string `mapstructure:"sslmode"`
	MaxConns     int32  `mapstructure:"max_conns"`
	MaxTxRetries int    `mapstructure:"max_tx_retries"`
}

// URL is the connection string understood by pgx.
func (d DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + d.Port,
		Path:     "/" + d.DBName,
		RawQuery: "sslmode=" + d.SSLMode,
	}
	return u.String()
}

// DSN is the key/value connection string used with database/sql and lib/pq.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type WebhookConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Source  string        `mapstructure:"source"`
}

type KafkaConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	BrokerList       string `mapstructure:"broker_list"`
	AlertTopic       string `mapstructure:"alert_topic"`
	SessionTimeoutMs int    `mapstructure:"session_timeout_ms"`
}

type CloudStorageConfig struct {
	Provider   string `mapstructure:"provider"`
	Region     string `mapstructure:"region"`
	BucketName string `mapstructure:"bucket_name"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Config struct {
	Store          string             `mapstructure:"store"` // "postgres" or "memory"
	Database       DatabaseConfig     `mapstructure:"database"`
	Server         ServerConfig       `mapstructure:"server"`
	Webhook        WebhookConfig      `mapstructure:"webhook"`
	Kafka          KafkaConfig        `mapstructure:"kafka"`
	CloudStorage   CloudStorageConfig `mapstructure:"cloud_storage"`
	Log            LogConfig          `mapstructure:"log"`
	ShopName       string             `mapstructure:"shop_name"`
	TicketScope    string             `mapstructure:"ticket_scope"`
	ReportTimezone string             `mapstructure:"report_timezone"`
	OutputPath     string             `mapstructure:"output_path"`
}

func setDefaults() {
	viper.SetDefault("store", "postgres")

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", "5432")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.dbname", "backoffice")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.max_conns", 10)
	viper.SetDefault("database.max_tx_retries", 3)

	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.read_timeout", "10s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "60s")

	viper.SetDefault("webhook.url", "")
	viper.SetDefault("webhook.timeout", "12s")
	viper.SetDefault("webhook.source", WebhookSource)

	viper.SetDefault("kafka.enabled", false)
	viper.SetDefault("kafka.broker_list", "localhost:9092")
	viper.SetDefault("kafka.alert_topic", "stock_alert_events")
	viper.SetDefault("kafka.session_timeout_ms", 45000)

	viper.SetDefault("cloud_storage.provider", "local")
	viper.SetDefault("cloud_storage.region", "eu-west-3")
	viper.SetDefault("cloud_storage.bucket_name", "")

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")

	viper.SetDefault("shop_name", "La Storia di JOJO")
	viper.SetDefault("ticket_scope", TicketScopeBusinessUnit)
	viper.SetDefault("report_timezone", "Africa/Tunis")
	viper.SetDefault("output_path", "exports")
}

// LoadConfig initializes and reads the configuration using Viper. A missing
// default config file is not an error; an explicit one must exist.
func LoadConfig(cfgFile string) (*Config, error) {
	setDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName("backoffice")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("BACKOFFICE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		)
	})
	if err := viper.Unmarshal(&config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (cfg *Config) Validate() error {
	switch cfg.Store {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unsupported store %q", cfg.Store)
	}
	switch cfg.TicketScope {
	case TicketScopeBusinessUnit, TicketScopeGlobal:
	default:
		return fmt.Errorf("unsupported ticket scope %q", cfg.TicketScope)
	}
	switch cfg.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unsupported log format %q", cfg.Log.Format)
	}
	if cfg.Webhook.Timeout <= 0 {
		return fmt.Errorf("webhook timeout must be positive")
	}
	if _, err := time.LoadLocation(cfg.ReportTimezone); err != nil {
		return fmt.Errorf("invalid report timezone %q: %w", cfg.ReportTimezone, err)
	}
	return nil
}

// Location returns the time zone business days are cut in.
func (cfg *Config) Location() *time.Location {
	loc, err := time.LoadLocation(cfg.ReportTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
