// Package config loads and validates watcher configuration via Viper.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all watcher configuration knobs loaded via Viper. It is
// built once at process start and treated as immutable afterwards.
type Config struct {
	Target  TargetConfig  `mapstructure:"target"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Storage StorageConfig `mapstructure:"storage"`
	Watch   WatchConfig   `mapstructure:"watch"`
	Notify  NotifyConfig  `mapstructure:"notify"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// TargetConfig names the listing page under watch.
type TargetConfig struct {
	URL string `mapstructure:"url"`
}

// HTTPConfig configures HTTP request behavior. Retries and delay pace the
// startup connectivity probe; the watch loop itself never retries a fetch,
// its backoff lives in the daemon.
type HTTPConfig struct {
	TimeoutSeconds int               `mapstructure:"timeout_seconds"`
	Retries        int               `mapstructure:"retries"`
	DelaySeconds   int               `mapstructure:"delay_seconds"`
	Headers        map[string]string `mapstructure:"headers"`
}

// StorageConfig sets the persistence paths.
type StorageConfig struct {
	DataFile string `mapstructure:"data_file"`
	LogFile  string `mapstructure:"log_file"`
}

// WatchConfig governs the check cycle and record retention.
type WatchConfig struct {
	CheckIntervalSeconds int      `mapstructure:"check_interval_seconds"`
	MaxAnnouncements     int      `mapstructure:"max_announcements"`
	DateFormat           string   `mapstructure:"date_format"`
	Keywords             []string `mapstructure:"keywords"`
}

// NotifyConfig toggles the outbound notification channels.
type NotifyConfig struct {
	DesktopEnabled bool   `mapstructure:"desktop_enabled"`
	EmailEnabled   bool   `mapstructure:"email_enabled"`
	SMTPServer     string `mapstructure:"smtp_server"`
	SMTPPort       int    `mapstructure:"smtp_port"`
	SMTPUser       string `mapstructure:"smtp_user"`
	SMTPPassword   string `mapstructure:"smtp_password"`
	EmailFrom      string `mapstructure:"email_from"`
	EmailTo        string `mapstructure:"email_to"`
	WebhookEnabled bool   `mapstructure:"webhook_enabled"`
	WebhookURL     string `mapstructure:"webhook_url"`
}

// ServerConfig controls the optional daemon status server.
type ServerConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ANNWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("target.url", "https://hrss.qingdao.gov.cn/ztzl_47/zcpd_47/tzgg_47/")
	v.SetDefault("http.timeout_seconds", 30)
	v.SetDefault("http.retries", 3)
	v.SetDefault("http.delay_seconds", 1)
	v.SetDefault("http.headers", map[string]string{
		"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
		"Accept-Language": "zh-CN,zh;q=0.9,en;q=0.8",
	})
	v.SetDefault("storage.data_file", "data/announcements.json")
	v.SetDefault("storage.log_file", "logs/watcher.log")
	v.SetDefault("watch.check_interval_seconds", 1200)
	v.SetDefault("watch.max_announcements", 50)
	v.SetDefault("watch.date_format", "2006-01-02 15:04:05")
	v.SetDefault("watch.keywords", []string{"通知", "公告", "关于", "职称", "评审", "报送"})
	v.SetDefault("notify.desktop_enabled", true)
	v.SetDefault("notify.email_enabled", false)
	v.SetDefault("notify.smtp_port", 587)
	v.SetDefault("notify.webhook_enabled", false)
	v.SetDefault("server.enabled", false)
	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Target.URL) == "" {
		return fmt.Errorf("target.url must not be empty")
	}
	if u, err := url.Parse(c.Target.URL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("target.url must be an absolute URL")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.HTTP.Retries < 0 {
		return fmt.Errorf("http.retries must be >= 0")
	}
	if c.Watch.CheckIntervalSeconds <= 0 {
		return fmt.Errorf("watch.check_interval_seconds must be > 0")
	}
	if c.Watch.MaxAnnouncements <= 0 {
		return fmt.Errorf("watch.max_announcements must be > 0")
	}
	if len(c.Watch.Keywords) == 0 {
		return fmt.Errorf("watch.keywords must not be empty")
	}
	if c.Notify.EmailEnabled {
		if c.Notify.SMTPServer == "" || c.Notify.EmailFrom == "" || c.Notify.EmailTo == "" {
			return fmt.Errorf("notify.smtp_server, notify.email_from and notify.email_to must be set when email is enabled")
		}
		if c.Notify.SMTPPort <= 0 {
			return fmt.Errorf("notify.smtp_port must be > 0")
		}
	}
	if c.Notify.WebhookEnabled && strings.TrimSpace(c.Notify.WebhookURL) == "" {
		return fmt.Errorf("notify.webhook_url must be set when webhook is enabled")
	}
	if c.Server.Enabled && c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0 when the status server is enabled")
	}
	return nil
}

// Timeout converts the HTTP timeout into a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// ProbeDelay converts the request delay into a duration.
func (c Config) ProbeDelay() time.Duration {
	return time.Duration(c.HTTP.DelaySeconds) * time.Second
}

// CheckInterval converts the cycle interval into a duration.
func (c Config) CheckInterval() time.Duration {
	return time.Duration(c.Watch.CheckIntervalSeconds) * time.Second
}
