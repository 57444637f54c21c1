package app

import (
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yang208115/annwatch/internal/config"
)

func defaultConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)

	dir := t.TempDir()
	cfg.Storage.DataFile = filepath.Join(dir, "data", "announcements.json")
	cfg.Storage.LogFile = filepath.Join(dir, "logs", "watcher.log")
	return cfg
}

func TestNewAssemblesAllComponents(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig(t)
	a, err := New(cfg, zap.NewNop(), prometheus.NewRegistry())
	require.NoError(t, err)

	require.NotNil(t, a.Clock)
	require.NotNil(t, a.Fetcher)
	require.NotNil(t, a.Parser)
	require.NotNil(t, a.Store)
	require.NotNil(t, a.Notifier)
	require.NotNil(t, a.Metrics)
	require.NotNil(t, a.Watcher)
	require.NotNil(t, a.Checker)

	a.Close()
}

func TestNewRejectsRelativeTargetURL(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig(t)
	cfg.Target.URL = "/relative/path"

	_, err := New(cfg, zap.NewNop(), prometheus.NewRegistry())
	require.Error(t, err)
}

func TestNewWithAllChannelsEnabled(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig(t)
	cfg.Notify.EmailEnabled = true
	cfg.Notify.SMTPServer = "smtp.example.com"
	cfg.Notify.EmailFrom = "bot@example.com"
	cfg.Notify.EmailTo = "ops@example.com"
	cfg.Notify.WebhookEnabled = true
	cfg.Notify.WebhookURL = "https://hooks.example.com/annwatch"

	a, err := New(cfg, zap.NewNop(), prometheus.NewRegistry())
	require.NoError(t, err)
	require.NotNil(t, a.Notifier)
}
