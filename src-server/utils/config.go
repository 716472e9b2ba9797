package utils

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	port                     string
	metricCollectionInterval time.Duration
	interactionTimeout       time.Duration

	databaseURL string

	discordGuildID  string
	discordAppToken string
	discordClientId string

	verifyRoleID       string
	verifyLogChannelID string

	welcomeChannelID string
	rulesChannelID   string
	contestChannelID string

	ticketAdminRoleID  string
	ticketCategoryID   string
	ticketLogChannelID string

	panelAdminRoleID  string
	panelTargetRoleID string
}

// NewViper returns a viper instance reading everything from the environment.
func NewViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	return v
}

// NewConfig reads the bot configuration out of v. Missing required keys are
// reported together so a broken deployment fails on the first start.
func NewConfig(v *viper.Viper) (*Config, error) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("METRIC_COLLECTION_INTERVAL", "15s")
	v.SetDefault("INTERACTION_TIMEOUT", "10s")

	var errs []error
	required := func(key string) string {
		value := strings.TrimSpace(v.GetString(key))
		if value == "" {
			errs = append(errs, fmt.Errorf("%s is not set", key))
		}
		return value
	}
	optional := func(key string) string {
		value := strings.TrimSpace(v.GetString(key))
		if value == "" {
			slog.Warn(key + " is not set")
		}
		return value
	}
	duration := func(key string) time.Duration {
		raw := v.GetString(key)
		d, err := time.ParseDuration(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
			return 0
		}
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", key))
		}
		return d
	}

	c := &Config{
		port:                     v.GetString("PORT"),
		metricCollectionInterval: duration("METRIC_COLLECTION_INTERVAL"),
		interactionTimeout:       duration("INTERACTION_TIMEOUT"),

		databaseURL: required("DATABASE_URL"),

		discordGuildID:  required("DISCORD_GUILD_ID"),
		discordAppToken: required("DISCORD_APP_TOKEN"),
		discordClientId: required("DISCORD_CLIENT_ID"),

		verifyRoleID:       optional("VERIFY_ROLE_ID"),
		verifyLogChannelID: optional("VERIFY_LOG_CHANNEL_ID"),

		welcomeChannelID: optional("WELCOME_CHANNEL_ID"),
		rulesChannelID:   optional("RULES_CHANNEL_ID"),
		contestChannelID: optional("CONTEST_CHANNEL_ID"),

		ticketAdminRoleID:  optional("TICKET_ADMIN_ROLE_ID"),
		ticketCategoryID:   optional("TICKET_CATEGORY_ID"),
		ticketLogChannelID: optional("TICKET_LOG_CHANNEL_ID"),

		panelAdminRoleID:  optional("PANEL_ADMIN_ROLE_ID"),
		panelTargetRoleID: optional("PANEL_TARGET_ROLE_ID"),
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("NewConfig: %w", err)
	}

	slog.Debug("env", "PORT", c.port)
	slog.Debug("env", "METRIC_COLLECTION_INTERVAL", c.metricCollectionInterval)
	slog.Debug("env", "INTERACTION_TIMEOUT", c.interactionTimeout)
	slog.Debug("env", "DISCORD_GUILD_ID", c.discordGuildID)
	slog.Debug("env", "DISCORD_CLIENT_ID", c.discordClientId)
	slog.Debug("env", "DISCORD_APP_TOKEN", redact(c.discordAppToken))
	slog.Debug("env", "DATABASE_URL", redact(c.databaseURL))
	return c, nil
}

func redact(secret string) string {
	if len(secret) <= 3 {
		return "..."
	}
	return secret[0:3] + "..."
}

// Get PORT env, default to 8080
func (c *Config) GetPort() string {
	return c.port
}

// Get METRIC_COLLECTION_INTERVAL env, default to 15s
func (c *Config) GetMetricCollectionInterval() time.Duration {
	return c.metricCollectionInterval
}

// Get INTERACTION_TIMEOUT env, default to 10s
func (c *Config) GetInteractionTimeout() time.Duration {
	return c.interactionTimeout
}

// Get DATABASE_URL env
func (c *Config) GetDatabaseURL() string {
	return c.databaseURL
}

// Get DISCORD_GUILD_ID env
func (c *Config) GetDiscordGuildID() string {
	return c.discordGuildID
}

// Get DISCORD_APP_TOKEN env
func (c *Config) GetDiscordAppToken() string {
	return c.discordAppToken
}

// Get DISCORD_CLIENT_ID env
func (c *Config) GetDiscordClientId() string {
	return c.discordClientId
}

// Get VERIFY_ROLE_ID env
func (c *Config) GetVerifyRoleID() string {
	return c.verifyRoleID
}

// Get VERIFY_LOG_CHANNEL_ID env
func (c *Config) GetVerifyLogChannelID() string {
	return c.verifyLogChannelID
}

// Get WELCOME_CHANNEL_ID env
func (c *Config) GetWelcomeChannelID() string {
	return c.welcomeChannelID
}

// Get RULES_CHANNEL_ID env
func (c *Config) GetRulesChannelID() string {
	return c.rulesChannelID
}

// Get CONTEST_CHANNEL_ID env
func (c *Config) GetContestChannelID() string {
	return c.contestChannelID
}

// Get TICKET_ADMIN_ROLE_ID env
func (c *Config) GetTicketAdminRoleID() string {
	return c.ticketAdminRoleID
}

// Get TICKET_CATEGORY_ID env
func (c *Config) GetTicketCategoryID() string {
	return c.ticketCategoryID
}

// Get TICKET_LOG_CHANNEL_ID env
func (c *Config) GetTicketLogChannelID() string {
	return c.ticketLogChannelID
}

// Get PANEL_ADMIN_ROLE_ID env
func (c *Config) GetPanelAdminRoleID() string {
	return c.panelAdminRoleID
}

// Get PANEL_TARGET_ROLE_ID env
func (c *Config) GetPanelTargetRoleID() string {
	return c.panelTargetRoleID
}
