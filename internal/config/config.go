package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the challenge service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	JWTSecret              string
	OperatorChatID         int64
	PenaltyCoins           int
	DispatchInterval       time.Duration
	SweepInterval          time.Duration
	ReminderInterval       time.Duration
	ReminderWindow         time.Duration
	LeaderboardCacheTTL    time.Duration
	LeaderboardSize        int
	GatewayBaseURL         string
	GatewayToken           string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("GEMA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "GEMA Challenge API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("penalty.coins", 2)
	v.SetDefault("dispatch.interval", "1m")
	v.SetDefault("sweep.interval", "30m")
	v.SetDefault("reminder.interval", "30m")
	v.SetDefault("reminder.window", "1h")
	v.SetDefault("leaderboard.cache_ttl", "5m")
	v.SetDefault("leaderboard.size", 5)
	v.SetDefault("cloudinary.folder", "gema/challenge")

	dispatchInterval, err := parseDuration(v, "dispatch.interval")
	if err != nil {
		return Config{}, err
	}
	sweepInterval, err := parseDuration(v, "sweep.interval")
	if err != nil {
		return Config{}, err
	}
	reminderInterval, err := parseDuration(v, "reminder.interval")
	if err != nil {
		return Config{}, err
	}
	reminderWindow, err := parseDuration(v, "reminder.window")
	if err != nil {
		return Config{}, err
	}
	cacheTTL, err := parseDuration(v, "leaderboard.cache_ttl")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		JWTSecret:              v.GetString("jwt.secret"),
		OperatorChatID:         v.GetInt64("operator.chat_id"),
		PenaltyCoins:           v.GetInt("penalty.coins"),
		DispatchInterval:       dispatchInterval,
		SweepInterval:          sweepInterval,
		ReminderInterval:       reminderInterval,
		ReminderWindow:         reminderWindow,
		LeaderboardCacheTTL:    cacheTTL,
		LeaderboardSize:        v.GetInt("leaderboard.size"),
		GatewayBaseURL:         v.GetString("gateway.base_url"),
		GatewayToken:           v.GetString("gateway.token"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.OperatorChatID == 0 {
		return Config{}, fmt.Errorf("operator chat id must be provided")
	}

	if cfg.PenaltyCoins < 0 {
		cfg.PenaltyCoins = 0
	}

	if cfg.LeaderboardSize <= 0 {
		cfg.LeaderboardSize = 5
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := v.GetString(key)
	duration, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if duration <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return duration, nil
}
