package utils_test

import (
	"testing"
	"time"

	"gildia/src-server/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigMissingRequired(t *testing.T) {
	v := utils.NewViper()
	v.Set("DISCORD_GUILD_ID", "1")

	_, err := utils.NewConfig(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL is not set")
	assert.Contains(t, err.Error(), "DISCORD_APP_TOKEN is not set")
	assert.Contains(t, err.Error(), "DISCORD_CLIENT_ID is not set")
	assert.NotContains(t, err.Error(), "DISCORD_GUILD_ID")
}

func TestNewConfigDefaults(t *testing.T) {
	v := utils.NewViper()
	v.Set("DATABASE_URL", "sqlite://:memory:")
	v.Set("DISCORD_GUILD_ID", "1")
	v.Set("DISCORD_APP_TOKEN", "token")
	v.Set("DISCORD_CLIENT_ID", "2")
	v.Set("TICKET_ADMIN_ROLE_ID", "  3 ")

	cfg, err := utils.NewConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.GetPort())
	assert.Equal(t, 15*time.Second, cfg.GetMetricCollectionInterval())
	assert.Equal(t, 10*time.Second, cfg.GetInteractionTimeout())
	assert.Equal(t, "3", cfg.GetTicketAdminRoleID())
	assert.Empty(t, cfg.GetVerifyRoleID())
}

func TestNewConfigFromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/gildia")
	t.Setenv("DISCORD_GUILD_ID", "1")
	t.Setenv("DISCORD_APP_TOKEN", "token")
	t.Setenv("DISCORD_CLIENT_ID", "2")
	t.Setenv("WELCOME_CHANNEL_ID", "4")
	t.Setenv("INTERACTION_TIMEOUT", "3s")

	cfg, err := utils.NewConfig(utils.NewViper())
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/gildia", cfg.GetDatabaseURL())
	assert.Equal(t, "4", cfg.GetWelcomeChannelID())
	assert.Equal(t, 3*time.Second, cfg.GetInteractionTimeout())
}

func TestNewConfigBadDuration(t *testing.T) {
	v := utils.NewViper()
	v.Set("DATABASE_URL", "sqlite://:memory:")
	v.Set("DISCORD_GUILD_ID", "1")
	v.Set("DISCORD_APP_TOKEN", "token")
	v.Set("DISCORD_CLIENT_ID", "2")
	v.Set("METRIC_COLLECTION_INTERVAL", "soon")
	v.Set("INTERACTION_TIMEOUT", "-1s")

	_, err := utils.NewConfig(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid METRIC_COLLECTION_INTERVAL")
	assert.Contains(t, err.Error(), "INTERACTION_TIMEOUT must be positive")
}
