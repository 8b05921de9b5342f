package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/angas/electrack-go/logging"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

type AppConfigApi struct {
	Address string
	Port    int16
}

type AppConfigDatabase struct {
	Path string
	// Maximum number of log entries kept in the database, default: 10000
	LogMaxEntries *int `mapstructure:"log_max_entries"`
}

func (d AppConfigDatabase) GetLogMaxEntries() int {
	if d.LogMaxEntries == nil {
		return 10000
	}
	return *d.LogMaxEntries
}

type AppConfigEnergyPrice struct {
	// Which provider to fetch prices from, e.g. "tibber://<api-token>@api.tibber.com"
	// or "nordpool://SE3"
	ProviderDsn string `mapstructure:"provider_dsn"`
	// Nordpool delivery area, used by the fallback provider: "SE1".."SE4"
	Area string `mapstructure:"area"`
	// Upper bound for one fetch-and-persist cycle in seconds, default: 30
	FetchTimeoutSeconds *int `mapstructure:"fetch_timeout_seconds"`
	// Cron expression for the daily price prefetch, default: "15 13 * * *"
	RefreshAt *string `mapstructure:"refresh_at"`
}

func (e AppConfigEnergyPrice) GetFetchTimeout() time.Duration {
	if e.FetchTimeoutSeconds == nil {
		return 30 * time.Second
	}
	return time.Duration(*e.FetchTimeoutSeconds) * time.Second
}

func (e AppConfigEnergyPrice) GetRefreshAt() string {
	if e.RefreshAt == nil {
		return "15 13 * * *"
	}
	return *e.RefreshAt
}

type AppConfigLogging struct {
	// Min log level for database: "DEBUG", "INFO", "WARN", "ERROR", default: "INFO"
	DbLevel *string `mapstructure:"db_level"`
	// Log attributes format: "TEXT", "JSON", default: "JSON"
	DbAttrsFormat *string `mapstructure:"db_attrs_format"`
	// Min log level for console: "DEBUG", "INFO", "WARN", "ERROR", default: "INFO"
	ConsoleLevel *string `mapstructure:"console_level"`
}

func (l AppConfigLogging) GetDbLevel() slog.Level {
	return logging.LevelFromString(l.DbLevel)
}

func (l AppConfigLogging) GetDbAttrsFormat() logging.LogAttrFormat {
	if l.DbAttrsFormat == nil {
		return logging.LogAttrFormatJSON
	}
	if strings.EqualFold(*l.DbAttrsFormat, "text") {
		return logging.LogAttrFormatText
	}
	return logging.LogAttrFormatJSON
}

func (l AppConfigLogging) GetConsoleLevel() slog.Level {
	return logging.LevelFromString(l.ConsoleLevel)
}

type AppConfig struct {
	Api         AppConfigApi
	Database    AppConfigDatabase
	EnergyPrice AppConfigEnergyPrice `mapstructure:"energy_price"`
	Logging     AppConfigLogging
}

func Load(path string) (*AppConfig, error) {
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.AddConfigPath("config")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var c AppConfig

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}

	if err := viper.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config file: %w", err)
	}

	return &c, nil
}

// Watch reports config file changes. Most settings need a restart to take
// effect, so the callback just gets the freshly parsed config and decides
// what to do with it.
func Watch(logger *slog.Logger, onChange func(*AppConfig)) {
	viper.OnConfigChange(func(e fsnotify.Event) {
		logger.Info("config file changed", slog.String("file", e.Name))
		var c AppConfig
		if err := viper.Unmarshal(&c); err != nil {
			logger.Error("unable to unmarshal changed config", slog.Any("error", err))
			return
		}
		onChange(&c)
	})
	viper.WatchConfig()
}
