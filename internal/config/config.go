package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the bot.
type Config struct {
	App          AppConfig
	Discord      DiscordConfig
	Ticket       TicketConfig
	State        StateConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
}

// AppConfig controls the ops HTTP server.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// DiscordConfig holds gateway connection values and greeter settings.
type DiscordConfig struct {
	Token            string
	GuildID          string
	WelcomeChannelID string
	WelcomeMessage   string
}

// TicketConfig controls the ticket lifecycle.
type TicketConfig struct {
	CategoryID         string
	CategoryName       string
	PanelChannelID     string
	PanelChannelName   string
	PanelMessage       string
	IntroMessage       string
	StaffRoleIDs       []string
	DeleteDelaySeconds int
	AutoDelete         bool
}

// StateConfig selects and parameterizes the state store backend.
type StateConfig struct {
	Backend  string // "file" or "redis"
	FilePath string
	RedisKey string
}

// PostgresConfig holds DB connection values for the audit trail.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines ops API authentication parameters.
type AuthConfig struct {
	AdminKey              string
	JWTSecret             string
	AccessTokenTTLMinutes int
}

// NotificationConfig holds the log channel and webhook stub endpoints.
type NotificationConfig struct {
	LogChannelID string
	WebhookURL   string
}

const (
	defaultPanelMessage = "Need help getting started? Press the button below and a private " +
		"ticket channel will be opened for you. Our team will meet you there."
	defaultIntroMessage = "Thanks for opening a ticket! Describe what you need help with and " +
		"a staff member will reply as soon as possible. Staff can close this ticket with the button below."
	defaultWelcomeMessage = "Welcome to the community! Head over to the instructions channel " +
		"to learn how to get started."
)

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	token := os.Getenv("DISCORD_TOKEN")
	if token == "" {
		return nil, errors.New("DISCORD_TOKEN is required")
	}
	guildID := os.Getenv("DISCORD_GUILD_ID")
	if guildID == "" {
		return nil, errors.New("DISCORD_GUILD_ID is required")
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	backend := strings.ToLower(getEnv("STATE_BACKEND", "file"))
	if backend != "file" && backend != "redis" {
		return nil, fmt.Errorf("invalid STATE_BACKEND %q: expected file or redis", backend)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "creator-ticket-bot"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Discord: DiscordConfig{
			Token:            token,
			GuildID:          guildID,
			WelcomeChannelID: os.Getenv("WELCOME_CHANNEL_ID"),
			WelcomeMessage:   getEnv("WELCOME_MESSAGE", defaultWelcomeMessage),
		},
		Ticket: TicketConfig{
			CategoryID:         os.Getenv("TICKET_CATEGORY_ID"),
			CategoryName:       getEnv("TICKET_CATEGORY_NAME", "Creator Tickets"),
			PanelChannelID:     os.Getenv("TICKET_PANEL_CHANNEL_ID"),
			PanelChannelName:   getEnv("TICKET_PANEL_CHANNEL_NAME", "lets-get-started"),
			PanelMessage:       getEnv("TICKET_PANEL_MESSAGE", defaultPanelMessage),
			IntroMessage:       getEnv("TICKET_INTRO_MESSAGE", defaultIntroMessage),
			StaffRoleIDs:       getEnvAsList("TICKET_STAFF_ROLE_IDS"),
			DeleteDelaySeconds: getEnvAsInt("TICKET_DELETE_DELAY_SECONDS", 10),
			AutoDelete:         getEnvAsBool("TICKET_AUTO_DELETE", true),
		},
		State: StateConfig{
			Backend:  backend,
			FilePath: getEnv("STATE_FILE_PATH", "ticket_state.json"),
			RedisKey: getEnv("STATE_REDIS_KEY", "ticket-bot:state"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			AdminKey:              os.Getenv("OPS_ADMIN_KEY"),
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
		},
		Notification: NotificationConfig{
			LogChannelID: os.Getenv("LOG_CHANNEL_ID"),
			WebhookURL:   os.Getenv("NOTIFY_WEBHOOK_URL"),
		},
	}

	return cfg, nil
}

// Addr returns the ops HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// DeleteDelay returns the grace period before a closed channel is deleted.
func (t TicketConfig) DeleteDelay() time.Duration {
	if t.DeleteDelaySeconds <= 0 {
		return 0
	}
	return time.Duration(t.DeleteDelaySeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string) []string {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
