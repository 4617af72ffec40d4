package email

import (
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"announcements/pkg/logger"
)

func TestRenderCreated(t *testing.T) {
	subject, body, err := Render(TypeAnnouncementCreated, EmailData{
		UserName:   "Bob",
		SenderName: "Alice",
		SpaceName:  "Welcome Space",
		Message:    "Meeting moved to <b>Friday</b>",
		Link:       "https://humhub.local/announcements/1",
	})
	require.NoError(t, err)

	assert.Equal(t, "Alice 发布了新公告 - Welcome Space", subject)
	assert.Contains(t, body, "Bob")
	assert.Contains(t, body, "Meeting moved to &lt;b&gt;Friday&lt;/b&gt;")
	assert.Contains(t, body, `href="https://humhub.local/announcements/1"`)
}

func TestRenderUpdatedKeepsSubject(t *testing.T) {
	subject, body, err := Render(TypeAnnouncementUpdated, EmailData{Subject: "custom", Message: "hi"})
	require.NoError(t, err)

	assert.Equal(t, "custom", subject)
	assert.NotContains(t, body, "href")
}

func TestRenderUnknownType(t *testing.T) {
	_, _, err := Render(EmailType("missing"), EmailData{})
	assert.Error(t, err)
}

func TestBuildMessage(t *testing.T) {
	s := NewService(Config{Host: "smtp.humhub.local", Port: 25, From: "noreply@humhub.local", FromName: "HumHub"}, logger.NewNop())

	msg := string(s.buildMessage(&mail.Address{Address: "bob@humhub.local"}, "新公告", "<p>body</p>"))

	assert.True(t, strings.HasPrefix(msg, "From: HumHub <noreply@humhub.local>\r\nTo: <bob@humhub.local>\r\n"))
	assert.Contains(t, msg, "Subject: =?utf-8?q?")
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\n<p>body</p>"))
}

func TestEnabled(t *testing.T) {
	assert.True(t, NewService(Config{Host: "smtp.humhub.local", From: "noreply@humhub.local"}, logger.NewNop()).Enabled())
	assert.False(t, NewService(Config{From: "noreply@humhub.local"}, logger.NewNop()).Enabled())
	assert.False(t, NewService(Config{Host: "smtp.humhub.local"}, logger.NewNop()).Enabled())
}

func TestSendEmailRejectsMalformedRecipient(t *testing.T) {
	// 端口0不会被连接，地址校验先于拨号
	s := NewService(Config{Host: "127.0.0.1", Port: 0, From: "noreply@humhub.local"}, logger.NewNop())

	for _, to := range []string{
		"bob@humhub.local\r\nBcc: eve@example.com",
		"bob@humhub.local\nSubject: spoofed",
		"",
	} {
		err := s.SendEmail(TypeAnnouncementCreated, EmailData{To: to, Message: "hi"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "收件人地址无效")
	}
}
