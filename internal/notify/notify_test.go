package notify

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	gomail "gopkg.in/mail.v2"

	"github.com/yang208115/annwatch/internal/watch"
)

type recordingDeliverer struct {
	name     string
	err      error
	titles   []string
	messages []string
}

func (r *recordingDeliverer) Name() string { return r.name }

func (r *recordingDeliverer) Deliver(title, message string) error {
	r.titles = append(r.titles, title)
	r.messages = append(r.messages, message)
	return r.err
}

func TestNotifyEmptyInputIsNoOp(t *testing.T) {
	t.Parallel()

	desktop := &recordingDeliverer{name: "desktop"}
	extra := &recordingDeliverer{name: "email"}
	n := New(desktop, []Deliverer{extra}, zap.NewNop())

	require.False(t, n.Notify(nil))
	require.False(t, n.Notify([]watch.Announcement{}))
	require.Empty(t, desktop.titles)
	require.Empty(t, extra.titles)
}

func TestNotifySingleAnnouncementUsesTitleAsBody(t *testing.T) {
	t.Parallel()

	desktop := &recordingDeliverer{name: "desktop"}
	n := New(desktop, nil, zap.NewNop())

	ok := n.Notify([]watch.Announcement{{Title: "关于开展职称评审工作的通知", URL: "https://example.com/1"}})
	require.True(t, ok)
	require.Equal(t, []string{"新通知 (1条)"}, desktop.titles)
	require.Equal(t, []string{"关于开展职称评审工作的通知"}, desktop.messages)
}

func TestNotifySingleAnnouncementTruncatesLongTitle(t *testing.T) {
	t.Parallel()

	desktop := &recordingDeliverer{name: "desktop"}
	n := New(desktop, nil, zap.NewNop())

	long := strings.Repeat("通", 150)
	require.True(t, n.Notify([]watch.Announcement{{Title: long}}))
	require.Len(t, desktop.messages, 1)
	require.Equal(t, strings.Repeat("通", 100), desktop.messages[0])
}

func TestNotifyMultipleAnnouncementsUsesSummaryBody(t *testing.T) {
	t.Parallel()

	desktop := &recordingDeliverer{name: "desktop"}
	n := New(desktop, nil, zap.NewNop())

	ok := n.Notify([]watch.Announcement{{Title: "一"}, {Title: "二"}, {Title: "三"}})
	require.True(t, ok)
	require.Equal(t, []string{"新通知 (3条)"}, desktop.titles)
	require.Equal(t, []string{"发现3条新通知，请查看日志获取详情"}, desktop.messages)
}

func TestNotifyDesktopFailureStillReachesExtras(t *testing.T) {
	t.Parallel()

	desktop := &recordingDeliverer{name: "desktop", err: errors.New("no notification daemon")}
	email := &recordingDeliverer{name: "email"}
	webhook := &recordingDeliverer{name: "webhook", err: errors.New("503")}
	n := New(desktop, []Deliverer{email, webhook}, zap.NewNop())

	require.False(t, n.Notify([]watch.Announcement{{Title: "t"}}))
	require.Len(t, email.titles, 1)
	require.Len(t, webhook.titles, 1)
}

func TestNotifyWithoutDesktopChannel(t *testing.T) {
	t.Parallel()

	email := &recordingDeliverer{name: "email"}
	n := New(nil, []Deliverer{email}, zap.NewNop())

	require.False(t, n.Notify([]watch.Announcement{{Title: "t"}}))
	require.Len(t, email.titles, 1)
}

func TestNotifySystem(t *testing.T) {
	t.Parallel()

	desktop := &recordingDeliverer{name: "desktop"}
	extra := &recordingDeliverer{name: "email"}
	n := New(desktop, []Deliverer{extra}, zap.NewNop())

	require.True(t, n.NotifySystem("监控启动", "开始监控"))
	require.Equal(t, []string{"监控启动"}, desktop.titles)
	require.Empty(t, extra.titles, "system notices stay on the desktop channel")

	require.False(t, New(nil, nil, zap.NewNop()).NotifySystem("a", "b"))
}

func TestWebhookDelivererPostsJSON(t *testing.T) {
	t.Parallel()

	var (
		gotContentType string
		gotBody        map[string]string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewWebhookDeliverer(srv.URL, 5*time.Second)
	require.NoError(t, d.Deliver("新通知 (1条)", "测试消息"))
	require.Equal(t, "application/json", gotContentType)
	require.Equal(t, map[string]string{"title": "新通知 (1条)", "message": "测试消息"}, gotBody)
}

func TestWebhookDelivererRejectsErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewWebhookDeliverer(srv.URL, 5*time.Second).Deliver("t", "m")
	require.Error(t, err)
	require.Contains(t, err.Error(), "502")
}

func TestWebhookDelivererUnreachableEndpoint(t *testing.T) {
	t.Parallel()

	d := NewWebhookDeliverer("http://127.0.0.1:1/hook", time.Second)
	require.Error(t, d.Deliver("t", "m"))
}

func TestEmailDelivererBuildsMessage(t *testing.T) {
	t.Parallel()

	d := NewEmailDeliverer(EmailConfig{
		Server: "smtp.example.com",
		Port:   587,
		User:   "bot@example.com",
		From:   "bot@example.com",
		To:     "ops@example.com",
	})
	require.Equal(t, "email", d.Name())

	var captured strings.Builder
	d.send = func(m *gomail.Message) error {
		_, err := m.WriteTo(&captured)
		return err
	}

	require.NoError(t, d.Deliver("新通知 (2条)", "发现2条新通知，请查看日志获取详情"))
	raw := captured.String()
	require.Contains(t, raw, "From: bot@example.com")
	require.Contains(t, raw, "To: ops@example.com")
	require.Contains(t, raw, "Subject:")
}
