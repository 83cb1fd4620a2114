package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DISCORD_TOKEN", "token-xyz")
	t.Setenv("DISCORD_GUILD_ID", "guild-123")
}

func TestLoadAppliesDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "token-xyz", cfg.Discord.Token)
	assert.Equal(t, "guild-123", cfg.Discord.GuildID)
	assert.Equal(t, "Creator Tickets", cfg.Ticket.CategoryName)
	assert.Equal(t, "lets-get-started", cfg.Ticket.PanelChannelName)
	assert.Equal(t, 10, cfg.Ticket.DeleteDelaySeconds)
	assert.True(t, cfg.Ticket.AutoDelete)
	assert.Nil(t, cfg.Ticket.StaffRoleIDs)
	assert.Equal(t, "file", cfg.State.Backend)
	assert.Equal(t, "ticket_state.json", cfg.State.FilePath)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, 10*time.Second, cfg.Ticket.DeleteDelay())
}

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")
	t.Setenv("DISCORD_GUILD_ID", "guild-123")

	_, err := Load()
	assert.ErrorContains(t, err, "DISCORD_TOKEN")
}

func TestLoadRequiresGuildID(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token-xyz")
	t.Setenv("DISCORD_GUILD_ID", "")

	_, err := Load()
	assert.ErrorContains(t, err, "DISCORD_GUILD_ID")
}

func TestLoadRejectsUnknownStateBackend(t *testing.T) {
	setRequired(t)
	t.Setenv("STATE_BACKEND", "s3")

	_, err := Load()
	assert.ErrorContains(t, err, "STATE_BACKEND")
}

func TestLoadParsesStaffRoleList(t *testing.T) {
	setRequired(t)
	t.Setenv("TICKET_STAFF_ROLE_IDS", "111, 222 ,,333")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"111", "222", "333"}, cfg.Ticket.StaffRoleIDs)
}

func TestLoadAcceptsRedisBackend(t *testing.T) {
	setRequired(t)
	t.Setenv("STATE_BACKEND", "redis")
	t.Setenv("STATE_REDIS_KEY", "bot:state")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.State.Backend)
	assert.Equal(t, "bot:state", cfg.State.RedisKey)
}

func TestBoolAndIntFallbacks(t *testing.T) {
	setRequired(t)
	t.Setenv("TICKET_AUTO_DELETE", "not-a-bool")
	t.Setenv("TICKET_DELETE_DELAY_SECONDS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Ticket.AutoDelete)
	assert.Equal(t, 10, cfg.Ticket.DeleteDelaySeconds)
}
