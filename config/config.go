// Package config carrega a configuração do servidor a partir do ambiente.
//
// Ordem de precedência: variáveis de ambiente, depois .env (opcional), depois
// os defaults daqui. As chaves viper usam ponto e viram variáveis com "_":
// "smtp.host" é lida de SMTP_HOST.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Host string
	Port int
}

type SiteConfig struct {
	PublicDir string
	DataDir   string
}

type ContactConfig struct {
	ToEmail            string
	AttemptTimeout     time.Duration
	MaxBodyBytes       int64
	ConcurrencyMax     int
	ConcurrencyTimeout time.Duration
	ThrottlePerMinute  int
	ThrottleBurst      int
}

type ResendConfig struct {
	APIKey  string
	From    string
	BaseURL string
}

type SMTPConfig struct {
	Host   string
	Port   int
	Secure bool
	User   string
	Pass   string
	From   string

	// LocalName vai no EHLO; vazio deixa o cliente usar "localhost".
	LocalName string
}

type RateStatsConfig struct {
	Enabled       bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Prefix        string
	TTL           time.Duration
	Bucket        string
	TrackKeys     bool
}

type RateConfig struct {
	Enabled      bool
	Max          int
	Window       time.Duration
	CleanupEvery time.Duration
	KeyHeader    string
	TrustXFF     bool
	AddHeaders   bool
	RetryAfter   time.Duration
	Stats        RateStatsConfig
}

type LogConfig struct {
	Level       string
	Development bool
	File        string
	MaxSizeMB   int
	MaxBackups  int
	MaxAgeDays  int
	Compress    bool
}

type Config struct {
	Server  ServerConfig
	Site    SiteConfig
	Contact ContactConfig
	Resend  ResendConfig
	SMTP    SMTPConfig
	Rate    RateConfig
	Log     LogConfig
}

// Addr devolve host:porta para o http.Server.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// Load lê .env (ou os arquivos passados) sem sobrescrever o ambiente e monta o Config.
// Arquivo ausente não é erro.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("host"),
			Port: v.GetInt("port"),
		},
		Site: SiteConfig{
			PublicDir: v.GetString("site.public_dir"),
			DataDir:   v.GetString("site.data_dir"),
		},
		Contact: ContactConfig{
			ToEmail:           strings.TrimSpace(v.GetString("contact.to_email")),
			MaxBodyBytes:      v.GetInt64("contact.max_body_bytes"),
			ConcurrencyMax:    v.GetInt("contact.concurrency_max"),
			ThrottlePerMinute: v.GetInt("contact.throttle_per_minute"),
			ThrottleBurst:     v.GetInt("contact.throttle_burst"),
		},
		Resend: ResendConfig{
			APIKey:  v.GetString("resend.api_key"),
			From:    v.GetString("resend.from"),
			BaseURL: v.GetString("resend.base_url"),
		},
		SMTP: SMTPConfig{
			Host: v.GetString("smtp.host"),
			Port: v.GetInt("smtp.port"),
			// só o literal "true" liga TLS implícito
			Secure: v.GetString("smtp.secure") == "true",
			User:   v.GetString("smtp.user"),
			Pass:   v.GetString("smtp.pass"),
			From:   v.GetString("smtp.from"),

			LocalName: v.GetString("smtp.local_name"),
		},
		Rate: RateConfig{
			Enabled:    v.GetBool("rate.enabled"),
			Max:        v.GetInt("rate.max"),
			KeyHeader:  v.GetString("rate.key_header"),
			TrustXFF:   v.GetBool("trust_xff"),
			AddHeaders: v.GetBool("add_ratelimit_headers"),
			Stats: RateStatsConfig{
				Enabled:       v.GetBool("rate.stats.enabled"),
				RedisAddr:     v.GetString("rate.stats.redis_addr"),
				RedisPassword: v.GetString("rate.stats.redis_password"),
				RedisDB:       v.GetInt("rate.stats.redis_db"),
				Prefix:        v.GetString("rate.stats.prefix"),
				Bucket:        v.GetString("rate.stats.bucket"),
				TrackKeys:     v.GetBool("rate.stats.track_keys"),
			},
		},
		Log: LogConfig{
			Level:       v.GetString("log.level"),
			Development: v.GetBool("log.development"),
			File:        v.GetString("log.file"),
			MaxSizeMB:   v.GetInt("log.max_size"),
			MaxBackups:  v.GetInt("log.max_backups"),
			MaxAgeDays:  v.GetInt("log.max_age"),
			Compress:    v.GetBool("log.compress"),
		},
	}
	if cfg.SMTP.From == "" {
		cfg.SMTP.From = cfg.SMTP.User
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"contact.attempt_timeout", &cfg.Contact.AttemptTimeout},
		{"contact.concurrency_timeout", &cfg.Contact.ConcurrencyTimeout},
		{"rate.window", &cfg.Rate.Window},
		{"rate.cleanup_every", &cfg.Rate.CleanupEvery},
		{"retry_after", &cfg.Rate.RetryAfter},
		{"rate.stats.ttl", &cfg.Rate.Stats.TTL},
	}
	for _, d := range durations {
		parsed, err := time.ParseDuration(v.GetString(d.key))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", envName(d.key), err)
		}
		*d.dst = parsed
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 5000)
	v.SetDefault("site.public_dir", "public")
	v.SetDefault("site.data_dir", "data")

	v.SetDefault("contact.to_email", "")
	v.SetDefault("contact.attempt_timeout", "15s")
	v.SetDefault("contact.max_body_bytes", 64<<10)
	v.SetDefault("contact.concurrency_max", 10)
	v.SetDefault("contact.concurrency_timeout", "0s")
	v.SetDefault("contact.throttle_per_minute", 30)
	v.SetDefault("contact.throttle_burst", 5)

	v.SetDefault("resend.api_key", "")
	v.SetDefault("resend.from", "HalloweenVoice <onboarding@resend.dev>")
	v.SetDefault("resend.base_url", "https://api.resend.com")

	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.secure", "false")
	v.SetDefault("smtp.user", "")
	v.SetDefault("smtp.pass", "")
	v.SetDefault("smtp.from", "")
	v.SetDefault("smtp.local_name", "")

	v.SetDefault("rate.enabled", true)
	v.SetDefault("rate.max", 5)
	v.SetDefault("rate.window", "60s")
	v.SetDefault("rate.cleanup_every", "5m")
	v.SetDefault("rate.key_header", "")
	v.SetDefault("trust_xff", false)
	v.SetDefault("add_ratelimit_headers", false)
	v.SetDefault("retry_after", "1s")

	v.SetDefault("rate.stats.enabled", false)
	v.SetDefault("rate.stats.redis_addr", "")
	v.SetDefault("rate.stats.redis_password", "")
	v.SetDefault("rate.stats.redis_db", 0)
	v.SetDefault("rate.stats.prefix", "contact:ratelimit:stats")
	v.SetDefault("rate.stats.ttl", "24h")
	v.SetDefault("rate.stats.bucket", "minute")
	v.SetDefault("rate.stats.track_keys", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 28)
	v.SetDefault("log.compress", true)
}

func (c *Config) validate() error {
	switch {
	case c.Server.Port <= 0 || c.Server.Port > 65535:
		return errors.New("PORT must be between 1 and 65535")
	case c.Rate.Max <= 0:
		return errors.New("RATE_MAX must be > 0")
	case c.Rate.Window <= 0:
		return errors.New("RATE_WINDOW must be > 0")
	case c.Rate.CleanupEvery <= 0:
		return errors.New("RATE_CLEANUP_EVERY must be > 0")
	case c.Rate.Stats.Enabled && strings.TrimSpace(c.Rate.Stats.RedisAddr) == "":
		return errors.New("RATE_STATS_REDIS_ADDR is required when RATE_STATS_ENABLED=true")
	case c.Contact.ConcurrencyMax < 0:
		return errors.New("CONTACT_CONCURRENCY_MAX must be >= 0")
	case c.Contact.MaxBodyBytes <= 0:
		return errors.New("CONTACT_MAX_BODY_BYTES must be > 0")
	case c.SMTP.Host != "" && (c.SMTP.Port <= 0 || c.SMTP.Port > 65535):
		return errors.New("SMTP_PORT must be between 1 and 65535")
	}
	return nil
}

func envName(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
