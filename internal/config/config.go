package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds runtime configuration loaded from environment variables.
type Config struct {
	Port        string
	Env         string
	DatabaseURL string
	CorsOrigins []string

	LogLevel         string
	LogDir           string
	LogRetentionDays int

	JWTSecret         string
	JWTIssuer         string
	AccessTTLSeconds  int64
	RefreshTTLSeconds int64
	AdminSetupKey     string

	DiscordAPIBase   string
	DiscordBotToken  string
	DiscordGuildID   string
	DiscordInviteURL string

	VerifierMode   string
	VerifierURL    string
	VerifierAPIKey string

	DocumentStorage     string
	DocumentStoragePath string
	MinioEndpoint       string
	MinioAccessKey      string
	MinioSecretKey      string
	MinioBucket         string
	MinioUseSSL         bool

	RedisAddr          string
	RedisPassword      string
	RateLimitPerMinute int

	AMQPURL           string
	WhitelistExchange string

	MetricsDiskPath      string
	MetricsSampleSeconds int

	MinecraftServerAddress string
	MinecraftServerVersion string
	MaxUploadMB            int
}

func Load() Config {
	return Config{
		Port:        envOr("PORT", "8080"),
		Env:         envOr("APP_ENV", "development"),
		DatabaseURL: mustEnv("DATABASE_URL"),
		CorsOrigins: parseCSV(envOr("CORS_ORIGINS", "")),

		LogLevel:         envOr("LOG_LEVEL", "info"),
		LogDir:           envOr("LOG_DIR", "storage/logs"),
		LogRetentionDays: clamp(envOrInt("LOG_RETENTION_DAYS", 7), 1, 7),

		JWTSecret:         mustEnv("JWT_SECRET"),
		JWTIssuer:         envOr("JWT_ISSUER", "foundgames"),
		AccessTTLSeconds:  int64(envOrInt("ACCESS_TTL_SECONDS", 14400)),
		RefreshTTLSeconds: int64(envOrInt("REFRESH_TTL_SECONDS", 1209600)),
		AdminSetupKey:     envOr("ADMIN_SETUP_KEY", ""),

		DiscordAPIBase:   envOr("DISCORD_API_BASE", "https://discord.com/api/v10"),
		DiscordBotToken:  envOr("DISCORD_BOT_TOKEN", ""),
		DiscordGuildID:   envOr("DISCORD_GUILD_ID", ""),
		DiscordInviteURL: envOr("DISCORD_INVITE_URL", ""),

		VerifierMode:   strings.ToLower(envOr("VERIFIER_MODE", "roster")),
		VerifierURL:    envOr("VERIFIER_URL", ""),
		VerifierAPIKey: envOr("VERIFIER_API_KEY", ""),

		DocumentStorage:     strings.ToLower(envOr("DOCUMENT_STORAGE", "file")),
		DocumentStoragePath: envOr("DOCUMENT_STORAGE_PATH", "storage/documents"),
		MinioEndpoint:       envOr("MINIO_ENDPOINT", ""),
		MinioAccessKey:      envOr("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:      envOr("MINIO_SECRET_KEY", ""),
		MinioBucket:         envOr("MINIO_BUCKET", "lease-documents"),
		MinioUseSSL:         envOrBool("MINIO_USE_SSL", false),

		RedisAddr:          envOr("REDIS_ADDR", ""),
		RedisPassword:      envOr("REDIS_PASSWORD", ""),
		RateLimitPerMinute: envOrInt("RATE_LIMIT_PER_MINUTE", 20),

		AMQPURL:           envOr("AMQP_URL", ""),
		WhitelistExchange: envOr("WHITELIST_EXCHANGE", "foundgames.whitelist"),

		MetricsDiskPath:      envOr("METRICS_DISK_PATH", "/"),
		MetricsSampleSeconds: clamp(envOrInt("METRICS_SAMPLE_INTERVAL", 15), 1, 3600),

		MinecraftServerAddress: envOr("MINECRAFT_SERVER_ADDRESS", ""),
		MinecraftServerVersion: envOr("MINECRAFT_SERVER_VERSION", "1.20.4"),
		MaxUploadMB:            clamp(envOrInt("MAX_UPLOAD_MB", 10), 1, 100),
	}
}

// Production reports whether APP_ENV selects production behaviour.
func (c Config) Production() bool {
	return c.Env == "production"
}

func mustEnv(key string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		panic("missing env var: " + key)
	}
	return value
}

func envOr(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func clamp(value, lo, hi int) int {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

func parseCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		value := strings.TrimSpace(part)
		if value != "" {
			items = append(items, value)
		}
	}
	return items
}
