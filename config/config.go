// Package config loads runtime settings from the environment and .env files.
package config

import (
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/accountrms/forecasting/forecast"
)

type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Tables   TablesConfig
	Forecast ForecastConfig
	Notify   NotifyConfig
}

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
	ReadTimeout    int // seconds
	WriteTimeout   int // seconds
}

type LogConfig struct {
	Level string
}

// TablesConfig holds the reference table paths (.csv or .xlsx).
type TablesConfig struct {
	Yearly         string
	LeadTime       string
	Reliability    string
	MaterialMaster string
	StockValue     string
	RefreshSeconds int // 0 disables polling for changed files
}

type ForecastConfig struct {
	DefaultOEM              string
	HorizonDays             int
	MaxHorizonDays          int
	InitialFloorMode        string
	InitialFloorValue       float64
	BufferMultiplier        float64
	StaticCurrentYearParams bool
}

// NotifyConfig selects the notification log backend: "csv" or "sqlite".
type NotifyConfig struct {
	Backend string
	Path    string
}

const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

var (
	once     sync.Once
	instance *Config
)

// Load reads .env (if present) and the process environment once.
func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		instance = FromViper(viper.GetViper())
	})

	return instance
}

// SetDefaults registers every key with its default value.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_ALLOWED_ORIGINS", "*")
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 15)
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("FORECAST_YEARLY_TABLE", "files/forecasted.csv")
	v.SetDefault("FORECAST_LEADTIME_TABLE", "files/leadtime.csv")
	v.SetDefault("FORECAST_RELIABILITY_TABLE", "files/reliability.csv")
	v.SetDefault("FORECAST_MATERIAL_MASTER", "files/spare_items_master_file.csv")
	v.SetDefault("FORECAST_STOCK_VALUE_TABLE", "files/stock_value_2024.csv")
	v.SetDefault("FORECAST_TABLE_REFRESH_SECONDS", 0)
	v.SetDefault("FORECAST_DEFAULT_OEM", "")
	v.SetDefault("FORECAST_HORIZON_DAYS", forecast.DefaultHorizonDays)
	v.SetDefault("FORECAST_MAX_HORIZON_DAYS", forecast.DefaultMaxHorizonDays)
	v.SetDefault("FORECAST_INITIAL_FLOOR_MODE", string(forecast.FloorTwiceConsumption))
	v.SetDefault("FORECAST_INITIAL_FLOOR_VALUE", 0)
	v.SetDefault("FORECAST_BUFFER_MULTIPLIER", forecast.DefaultBufferMultiplier)
	v.SetDefault("FORECAST_STATIC_CURRENT_YEAR_PARAMS", true)

	v.SetDefault("NOTIFICATION_LOG_BACKEND", BackendCSV)
	v.SetDefault("NOTIFICATION_LOG_PATH", "files/notifications.csv")
}

// FromViper builds a Config from an explicit viper instance.
func FromViper(v *viper.Viper) *Config {
	SetDefaults(v)

	// Read from environment variables
	v.AutomaticEnv()

	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			AllowedOrigins: splitList(v.GetString("SERVER_ALLOWED_ORIGINS")),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Tables: TablesConfig{
			Yearly:         v.GetString("FORECAST_YEARLY_TABLE"),
			LeadTime:       v.GetString("FORECAST_LEADTIME_TABLE"),
			Reliability:    v.GetString("FORECAST_RELIABILITY_TABLE"),
			MaterialMaster: v.GetString("FORECAST_MATERIAL_MASTER"),
			StockValue:     v.GetString("FORECAST_STOCK_VALUE_TABLE"),
			RefreshSeconds: v.GetInt("FORECAST_TABLE_REFRESH_SECONDS"),
		},
		Forecast: ForecastConfig{
			DefaultOEM:              v.GetString("FORECAST_DEFAULT_OEM"),
			HorizonDays:             v.GetInt("FORECAST_HORIZON_DAYS"),
			MaxHorizonDays:          v.GetInt("FORECAST_MAX_HORIZON_DAYS"),
			InitialFloorMode:        v.GetString("FORECAST_INITIAL_FLOOR_MODE"),
			InitialFloorValue:       v.GetFloat64("FORECAST_INITIAL_FLOOR_VALUE"),
			BufferMultiplier:        v.GetFloat64("FORECAST_BUFFER_MULTIPLIER"),
			StaticCurrentYearParams: v.GetBool("FORECAST_STATIC_CURRENT_YEAR_PARAMS"),
		},
		Notify: NotifyConfig{
			Backend: v.GetString("NOTIFICATION_LOG_BACKEND"),
			Path:    v.GetString("NOTIFICATION_LOG_PATH"),
		},
	}
}

// splitList reads a comma-separated value. Environment values reach viper as
// one string and its own slice cast splits on whitespace only.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Engine converts the forecast settings into an engine configuration.
// The result is validated by the engine on every run.
func (c ForecastConfig) Engine() forecast.Config {
	return forecast.Config{
		HorizonDays:      c.HorizonDays,
		MaxHorizonDays:   c.MaxHorizonDays,
		BufferMultiplier: c.BufferMultiplier,
		Floor: forecast.InitialStockFloor{
			Mode:  forecast.FloorMode(c.InitialFloorMode),
			Value: c.InitialFloorValue,
		},
		StaticCurrentYearParams: c.StaticCurrentYearParams,
	}
}
