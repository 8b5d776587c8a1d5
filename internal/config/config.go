package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var ErrMissingConfig = errors.New("missing configuration")

const (
	ModePolling = "polling"
	ModeWebhook = "webhook"

	SessionMemory = "memory"
	SessionRedis  = "redis"
	SessionBolt   = "bolt"

	RecordSheets   = "sheets"
	RecordPostgres = "postgres"
)

type Redis struct {
	Host     string
	Port     string
	Password string
	DB       int
	Prefix   string
}

func (r Redis) Addr() string {
	return r.Host + ":" + r.Port
}

type Config struct {
	APIToken      string
	AdminIDs      []int64
	Mode          string
	WebhookURL    string
	WebhookSecret string
	Port          string

	Variant string
	Brand   string
	// Prompts are catalog overrides from the YAML file, lang -> key -> text.
	Prompts map[string]map[string]string

	SessionStore    string
	SessionTTLHours int
	Redis           Redis
	BoltPath        string

	RecordStores      []string
	GoogleCredentials []byte
	SheetRef          string
	SheetRange        string
	PostgresDSN       string

	DispatchTimeout time.Duration
	DispatchWorkers int

	LogLevel  string
	LogPretty bool
}

type Options struct {
	// ConfigFile is an optional YAML file. Environment variables override it.
	ConfigFile string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", ModePolling)
	v.SetDefault("port", "")
	v.SetDefault("variant", "full")
	v.SetDefault("brand", "standard")
	v.SetDefault("session_store", SessionMemory)
	v.SetDefault("session_ttl_hours", 24)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "feedback_bot")
	v.SetDefault("bolt_path", "sessions.db")
	v.SetDefault("record_store", RecordSheets)
	v.SetDefault("sheet_range", "A1")
	v.SetDefault("dispatch_timeout", "5s")
	v.SetDefault("dispatch_workers", 2)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", false)
}

func Load(opts Options) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config.Load: read %s: %w", opts.ConfigFile, err)
		}
	}

	cfg := &Config{
		APIToken:        firstNonEmpty(v.GetString("api_token"), v.GetString("bot_token")),
		Mode:            strings.ToLower(strings.TrimSpace(v.GetString("mode"))),
		WebhookURL:      strings.TrimRight(strings.TrimSpace(v.GetString("webhook_url")), "/"),
		WebhookSecret:   strings.TrimSpace(v.GetString("webhook_secret")),
		Port:            strings.TrimSpace(v.GetString("port")),
		Variant:         v.GetString("variant"),
		Brand:           v.GetString("brand"),
		SessionStore:    strings.ToLower(strings.TrimSpace(v.GetString("session_store"))),
		SessionTTLHours: v.GetInt("session_ttl_hours"),
		Redis: Redis{
			Host:     v.GetString("redis.host"),
			Port:     v.GetString("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			Prefix:   v.GetString("redis.prefix"),
		},
		BoltPath:        v.GetString("bolt_path"),
		RecordStores:    splitList(v.GetString("record_store")),
		SheetRef:        firstNonEmpty(v.GetString("sheet_url"), v.GetString("sheet_id")),
		SheetRange:      v.GetString("sheet_range"),
		PostgresDSN:     strings.TrimSpace(v.GetString("postgres_dsn")),
		DispatchTimeout: v.GetDuration("dispatch_timeout"),
		DispatchWorkers: v.GetInt("dispatch_workers"),
		LogLevel:        v.GetString("log_level"),
		LogPretty:       v.GetBool("log_pretty"),
	}

	ids, err := parseAdminIDs(v.GetString("admin_id"))
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	cfg.AdminIDs = ids

	if raw := strings.TrimSpace(v.GetString("google_credentials_base64")); raw != "" {
		creds, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("config.Load: GOOGLE_CREDENTIALS_BASE64: %w", err)
		}
		cfg.GoogleCredentials = creds
	}

	if v.IsSet("prompts") {
		if err := v.UnmarshalKey("prompts", &cfg.Prompts); err != nil {
			return nil, fmt.Errorf("config.Load: prompts: %w", err)
		}
	}

	return cfg, nil
}

// Validate reports every missing required setting at once.
func (c *Config) Validate() error {
	var missing []string
	if c.APIToken == "" {
		missing = append(missing, "API_TOKEN")
	}
	if len(c.AdminIDs) == 0 {
		missing = append(missing, "ADMIN_ID")
	}
	switch c.Mode {
	case ModePolling:
	case ModeWebhook:
		if c.WebhookURL == "" {
			missing = append(missing, "WEBHOOK_URL")
		}
	default:
		return fmt.Errorf("config.Validate: unknown MODE %q", c.Mode)
	}
	switch c.SessionStore {
	case SessionMemory, SessionRedis:
	case SessionBolt:
		if strings.TrimSpace(c.BoltPath) == "" {
			missing = append(missing, "BOLT_PATH")
		}
	default:
		return fmt.Errorf("config.Validate: unknown SESSION_STORE %q", c.SessionStore)
	}
	if len(c.RecordStores) == 0 {
		missing = append(missing, "RECORD_STORE")
	}
	for _, rs := range c.RecordStores {
		switch rs {
		case RecordSheets:
			if len(c.GoogleCredentials) == 0 {
				missing = append(missing, "GOOGLE_CREDENTIALS_BASE64")
			}
			if c.SheetRef == "" {
				missing = append(missing, "SHEET_URL")
			}
		case RecordPostgres:
			if c.PostgresDSN == "" {
				missing = append(missing, "POSTGRES_DSN")
			}
		default:
			return fmt.Errorf("config.Validate: unknown RECORD_STORE %q", rs)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("config.Validate: %w: %s", ErrMissingConfig, strings.Join(missing, ", "))
	}
	return nil
}

func (c *Config) ListenAddr() string {
	if c.Port == "" {
		if c.Mode == ModeWebhook {
			return ":8000"
		}
		return ""
	}
	return ":" + c.Port
}

func parseAdminIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range splitList(raw) {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ADMIN_ID %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
