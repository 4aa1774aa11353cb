package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the bot process.
// Tags use mapstructure for Viper unmarshalling; every key can also be set
// through the environment variable of the same name.
type Config struct {
	DiscordToken   string `mapstructure:"DISCORD_TOKEN"`
	DiscordGuildID string `mapstructure:"DISCORD_GUILD_ID"`
	DiscordRoleID  string `mapstructure:"DISCORD_ROLE_ID"`

	// TikTokUsername is the live host to watch, without the leading @.
	TikTokUsername string `mapstructure:"TIKTOK_USERNAME"`

	// GiftNames is the comma-separated allow-list of gift labels that
	// qualify for the role. Matching is case-insensitive.
	GiftNames string `mapstructure:"GIFT_NAMES"`

	MongoURI    string `mapstructure:"MONGO_URI"`
	MongoDBName string `mapstructure:"MONGO_DB_NAME"`

	HTTPPort string `mapstructure:"HTTP_PORT"`

	SweepInterval    time.Duration `mapstructure:"SWEEP_INTERVAL"`
	InactivityWindow time.Duration `mapstructure:"INACTIVITY_WINDOW"`
	VerifyCooldown   time.Duration `mapstructure:"VERIFY_COOLDOWN"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogPretty bool   `mapstructure:"LOG_PRETTY"`

	OtelServiceName string `mapstructure:"OTEL_SERVICE_NAME"`
}

// GiftNameList returns the allow-list split, trimmed and lowercased.
func (c *Config) GiftNameList() []string {
	var names []string
	for _, name := range strings.Split(c.GiftNames, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Load reads configuration from an optional config file, environment
// variables, and defaults, then validates the required settings.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/rolegate/")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("GIFT_NAMES", "Teamherz")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DB_NAME", "rolegate")
	v.SetDefault("HTTP_PORT", "3000")
	v.SetDefault("SWEEP_INTERVAL", time.Hour)
	v.SetDefault("INACTIVITY_WINDOW", 7*24*time.Hour)
	v.SetDefault("VERIFY_COOLDOWN", 30*time.Second)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)
	v.SetDefault("OTEL_SERVICE_NAME", "rolegate")

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, the environment covers it.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects a configuration missing any setting the bot cannot run
// without. This fails the process before any outbound connection is made.
func (c *Config) validate() error {
	var missing []string
	if c.DiscordToken == "" {
		missing = append(missing, "DISCORD_TOKEN")
	}
	if c.DiscordGuildID == "" {
		missing = append(missing, "DISCORD_GUILD_ID")
	}
	if c.DiscordRoleID == "" {
		missing = append(missing, "DISCORD_ROLE_ID")
	}
	if c.TikTokUsername == "" {
		missing = append(missing, "TIKTOK_USERNAME")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be positive, got %s", c.SweepInterval)
	}
	if c.InactivityWindow <= 0 {
		return fmt.Errorf("INACTIVITY_WINDOW must be positive, got %s", c.InactivityWindow)
	}
	return nil
}
