package email

import (
	"bytes"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"

	"announcements/pkg/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Config 邮件配置
type Config struct {
	Host     string // SMTP服务器地址
	Port     int    // SMTP服务器端口，465使用隐式TLS，其余端口尝试STARTTLS
	Username string // 邮箱账号
	Password string // 邮箱密码
	From     string // 发件人
	FromName string // 发件人名称
}

// EmailType 邮件类型，与模板文件名一致
type EmailType string

const (
	// TypeAnnouncementCreated 新公告通知
	TypeAnnouncementCreated EmailType = "announcement_created"
	// TypeAnnouncementUpdated 公告更新通知
	TypeAnnouncementUpdated EmailType = "announcement_updated"
)

// EmailData 邮件数据
type EmailData struct {
	To         string // 收件人
	Subject    string // 邮件主题
	UserName   string // 收件人名称
	SenderName string // 公告发布者
	SpaceName  string // 空间名称
	Message    string // 公告内容
	Link       string // 公告链接
}

// Service 邮件服务
type Service struct {
	config Config
	logger *logger.Logger
}

// NewService 创建邮件服务
func NewService(config Config, logger *logger.Logger) *Service {
	return &Service{
		config: config,
		logger: logger,
	}
}

// Enabled 是否配置了SMTP服务器
func (s *Service) Enabled() bool {
	return s.config.Host != "" && s.config.From != ""
}

// SendEmail 渲染模板并发送邮件
func (s *Service) SendEmail(emailType EmailType, data EmailData) error {
	to, err := mail.ParseAddress(data.To)
	if err != nil {
		return fmt.Errorf("收件人地址无效: %w", err)
	}
	subject, body, err := Render(emailType, data)
	if err != nil {
		return err
	}
	return s.send(to, subject, body)
}

// Render 渲染邮件主题和正文
func Render(emailType EmailType, data EmailData) (string, string, error) {
	if data.Subject == "" {
		switch emailType {
		case TypeAnnouncementCreated:
			data.Subject = fmt.Sprintf("%s 发布了新公告", data.SenderName)
		case TypeAnnouncementUpdated:
			data.Subject = fmt.Sprintf("%s 更新了公告", data.SenderName)
		}
		if data.SpaceName != "" {
			data.Subject += " - " + data.SpaceName
		}
	}

	buf := new(bytes.Buffer)
	if err := templates.ExecuteTemplate(buf, string(emailType)+".html", data); err != nil {
		return "", "", fmt.Errorf("渲染邮件模板失败: %w", err)
	}
	return data.Subject, buf.String(), nil
}

// buildMessage 组装邮件头和正文
func (s *Service) buildMessage(to *mail.Address, subject, body string) []byte {
	from := s.config.From
	if s.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", s.config.FromName), s.config.From)
	}
	headers := [][2]string{
		{"From", from},
		{"To", to.String()},
		{"Subject", mime.QEncoding.Encode("utf-8", subject)},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}

	var b strings.Builder
	for _, h := range headers {
		b.WriteString(h[0] + ": " + h[1] + "\r\n")
	}
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

// send 通过SMTP发送邮件
func (s *Service) send(to *mail.Address, subject, body string) error {
	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
	tlsConfig := &tls.Config{ServerName: s.config.Host}

	var client *smtp.Client
	if s.config.Port == 465 {
		conn, err := tls.Dial("tcp", addr, tlsConfig)
		if err != nil {
			return fmt.Errorf("创建TLS连接失败: %w", err)
		}
		client, err = smtp.NewClient(conn, s.config.Host)
		if err != nil {
			return fmt.Errorf("创建SMTP客户端失败: %w", err)
		}
	} else {
		var err error
		client, err = smtp.Dial(addr)
		if err != nil {
			return fmt.Errorf("连接SMTP服务器失败: %w", err)
		}
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(tlsConfig); err != nil {
				client.Close()
				return fmt.Errorf("STARTTLS失败: %w", err)
			}
		}
	}
	defer client.Close()

	if s.config.Username != "" {
		auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP认证失败: %w", err)
		}
	}

	if err := client.Mail(s.config.From); err != nil {
		return fmt.Errorf("设置发件人失败: %w", err)
	}
	if err := client.Rcpt(to.Address); err != nil {
		return fmt.Errorf("设置收件人失败: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("准备发送数据失败: %w", err)
	}
	if _, err := w.Write(s.buildMessage(to, subject, body)); err != nil {
		return fmt.Errorf("写入邮件内容失败: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}

	s.logger.Info("邮件已发送", "to", to.Address, "subject", subject)
	return client.Quit()
}
