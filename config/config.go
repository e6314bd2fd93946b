package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

func New() map[string]string {
	environ := os.Environ()
	envAsMap := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry != "" {
			key, value := split(entry)
			envAsMap[key] = value
		}
	}
	return envAsMap
}

// assumes entry is not the empty string
func split(entry string) (key, value string) {
	parts := strings.SplitN(entry, "=", 2)
	if len(parts) < 2 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

func GetString(config map[string]string, key string, defaultValue string) string {
	if config == nil {
		return defaultValue
	}

	if val, ok := config[key]; ok && val != "" {
		return val
	}
	return defaultValue
}

func GetInt(config map[string]string, key string, defaultValue int) int {
	if config == nil {
		return defaultValue
	}

	s, ok := config[key]
	if !ok {
		return defaultValue
	}

	asInt, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return defaultValue
	}

	return asInt
}

func GetBool(config map[string]string, key string, defaultValue bool) bool {
	if config == nil {
		return defaultValue
	}

	s, ok := config[key]
	if !ok {
		return defaultValue
	}

	asBool, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return defaultValue
	}

	return asBool
}

// GetList splits a comma separated value, dropping empty items.
func GetList(config map[string]string, key string) []string {
	raw := GetString(config, key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Settings is the typed view of the environment used by the server.
type Settings struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	DatabaseURL        string
	DatabaseReplicaURL string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetime    time.Duration

	MediaDriver        string
	MediaURL           string
	MediaBucket        string
	MediaRegion        string
	MediaEndpoint      string
	MediaPublicBaseURL string

	SessionSecret string
	SessionIdle   time.Duration
	SessionMaxAge time.Duration
	CookieSecure  bool

	RevalidateSecret string

	CacheDriver string
	RedisURL    string
	CacheTTL    time.Duration

	AcceptedOrigins    []string
	LoginRatePerMinute int
	// TrustedProxy honors X-Forwarded-For / X-Real-IP; only enable behind a proxy that overwrites them.
	TrustedProxy bool

	ResendAPIKey    string
	ResendFromEmail string
	AlertEmail      string
	AlertInterval   time.Duration
}

// Load builds Settings from an environment map, applying defaults.
func Load(c map[string]string) Settings {
	return Settings{
		Port:         GetString(c, "PORT", "8080"),
		ReadTimeout:  time.Duration(GetInt(c, "READ_TIMEOUT_SECONDS", 30)) * time.Second,
		WriteTimeout: time.Duration(GetInt(c, "WRITE_TIMEOUT_SECONDS", 30)) * time.Second,
		IdleTimeout:  time.Duration(GetInt(c, "IDLE_TIMEOUT_SECONDS", 120)) * time.Second,

		DatabaseURL:        GetString(c, "DATABASE_URL", ""),
		DatabaseReplicaURL: GetString(c, "DATABASE_REPLICA_URL", ""),
		MaxOpenConns:       GetInt(c, "DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:       GetInt(c, "DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime:    time.Duration(GetInt(c, "DB_CONN_MAX_LIFETIME_MINUTES", 30)) * time.Minute,

		MediaDriver:        strings.ToLower(GetString(c, "MEDIA_DRIVER", "cloudinary")),
		MediaURL:           GetString(c, "MEDIA_URL", GetString(c, "CLOUDINARY_URL", "")),
		MediaBucket:        GetString(c, "MEDIA_BUCKET", ""),
		MediaRegion:        GetString(c, "MEDIA_REGION", "us-east-1"),
		MediaEndpoint:      GetString(c, "MEDIA_ENDPOINT", ""),
		MediaPublicBaseURL: GetString(c, "MEDIA_PUBLIC_BASE_URL", ""),

		SessionSecret: GetString(c, "SESSION_SECRET", ""),
		SessionIdle:   time.Duration(GetInt(c, "SESSION_IDLE_HOURS", 24)) * time.Hour,
		SessionMaxAge: time.Duration(GetInt(c, "SESSION_MAX_AGE_HOURS", 24)) * time.Hour,
		CookieSecure:  GetBool(c, "COOKIE_SECURE", true),

		RevalidateSecret: GetString(c, "REVALIDATE_SECRET", ""),

		CacheDriver: strings.ToLower(GetString(c, "CACHE_DRIVER", "memory")),
		RedisURL:    GetString(c, "REDIS_URL", ""),
		CacheTTL:    time.Duration(GetInt(c, "CACHE_TTL_SECONDS", 3600)) * time.Second,

		AcceptedOrigins:    GetList(c, "ACCEPTED_ORIGINS"),
		LoginRatePerMinute: GetInt(c, "LOGIN_RATE_PER_MINUTE", 10),
		TrustedProxy:       GetBool(c, "TRUSTED_PROXY", false),

		ResendAPIKey:    GetString(c, "RESEND_API_KEY", ""),
		ResendFromEmail: GetString(c, "RESEND_FROM_EMAIL", ""),
		AlertEmail:      GetString(c, "ALERT_EMAIL", ""),
		AlertInterval:   time.Duration(GetInt(c, "ALERT_INTERVAL_SECONDS", 300)) * time.Second,
	}
}
