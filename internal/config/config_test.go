package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, "https://hrss.qingdao.gov.cn/ztzl_47/zcpd_47/tzgg_47/", cfg.Target.URL)
	require.Equal(t, 30*time.Second, cfg.Timeout())
	require.Equal(t, 3, cfg.HTTP.Retries)
	require.Equal(t, time.Second, cfg.ProbeDelay())
	require.Contains(t, cfg.HTTP.Headers, "User-Agent")

	require.Equal(t, "data/announcements.json", cfg.Storage.DataFile)
	require.Equal(t, "logs/watcher.log", cfg.Storage.LogFile)

	require.Equal(t, 20*time.Minute, cfg.CheckInterval())
	require.Equal(t, 50, cfg.Watch.MaxAnnouncements)
	require.Equal(t, "2006-01-02 15:04:05", cfg.Watch.DateFormat)
	require.Equal(t, []string{"通知", "公告", "关于", "职称", "评审", "报送"}, cfg.Watch.Keywords)

	require.True(t, cfg.Notify.DesktopEnabled)
	require.False(t, cfg.Notify.EmailEnabled)
	require.False(t, cfg.Notify.WebhookEnabled)

	require.False(t, cfg.Server.Enabled)
	require.Equal(t, 8080, cfg.Server.Port)
	require.True(t, cfg.Logging.Development)
}

func TestLoadFromFileOverridesDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `
target:
  url: https://example.com/announcements/
watch:
  check_interval_seconds: 600
  max_announcements: 10
  keywords:
    - 通知
server:
  enabled: true
  port: 9090
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "https://example.com/announcements/", cfg.Target.URL)
	require.Equal(t, 10*time.Minute, cfg.CheckInterval())
	require.Equal(t, 10, cfg.Watch.MaxAnnouncements)
	require.Equal(t, []string{"通知"}, cfg.Watch.Keywords)
	require.True(t, cfg.Server.Enabled)
	require.Equal(t, 9090, cfg.Server.Port)

	// Untouched keys keep their defaults.
	require.Equal(t, 30*time.Second, cfg.Timeout())
}

func TestLoadMissingFileFails(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadEnvironmentOverride(t *testing.T) {
	t.Setenv("ANNWATCH_TARGET_URL", "https://env.example.com/list/")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "https://env.example.com/list/", cfg.Target.URL)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	base := func() Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "empty target url",
			mutate:  func(c *Config) { c.Target.URL = "  " },
			wantErr: "target.url",
		},
		{
			name:    "relative target url",
			mutate:  func(c *Config) { c.Target.URL = "/listing/" },
			wantErr: "absolute",
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.HTTP.TimeoutSeconds = 0 },
			wantErr: "timeout",
		},
		{
			name:    "negative retries",
			mutate:  func(c *Config) { c.HTTP.Retries = -1 },
			wantErr: "retries",
		},
		{
			name:    "zero interval",
			mutate:  func(c *Config) { c.Watch.CheckIntervalSeconds = 0 },
			wantErr: "check_interval_seconds",
		},
		{
			name:    "zero retention",
			mutate:  func(c *Config) { c.Watch.MaxAnnouncements = 0 },
			wantErr: "max_announcements",
		},
		{
			name:    "no keywords",
			mutate:  func(c *Config) { c.Watch.Keywords = nil },
			wantErr: "keywords",
		},
		{
			name: "email enabled without smtp settings",
			mutate: func(c *Config) {
				c.Notify.EmailEnabled = true
			},
			wantErr: "smtp_server",
		},
		{
			name: "webhook enabled without url",
			mutate: func(c *Config) {
				c.Notify.WebhookEnabled = true
			},
			wantErr: "webhook_url",
		},
		{
			name: "server enabled with bad port",
			mutate: func(c *Config) {
				c.Server.Enabled = true
				c.Server.Port = 0
			},
			wantErr: "server.port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
