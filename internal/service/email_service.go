package service

import (
	"fmt"
	"html"
	"lake-backend/config"
	"lake-backend/internal/model"
	"lake-backend/internal/util"
	"time"

	"go.uber.org/zap"
	"gopkg.in/mail.v2"
)

type EmailService struct {
	smtpHost    string
	smtpPort    int
	username    string
	password    string
	frontendURL string
	enabled     bool

	// send 默认通过 SMTP 发送
	send func(m *mail.Message) error
}

func NewEmailService(cfg config.Config) *EmailService {
	s := &EmailService{
		smtpHost:    cfg.SMTPHost,
		smtpPort:    cfg.SMTPPort,
		username:    cfg.SMTPUsername,
		password:    cfg.SMTPPassword,
		frontendURL: cfg.FrontendURL,
		enabled:     cfg.SMTPEnabled(),
	}
	s.send = s.dialAndSend
	if !s.enabled {
		util.Logger.Info("未配置SMTP，跳过邮件发送")
	}
	return s
}

// SendWelcomeEmail 注册成功后异步发送欢迎邮件
func (s *EmailService) SendWelcomeEmail(user *model.User) {
	if !s.enabled || user.Email == "" {
		return
	}
	m := s.welcomeMessage(user)
	go func() {
		if err := s.send(m); err != nil {
			util.Logger.Error("异步发送邮件失败", zap.Error(err), zap.String("to", user.Email))
		}
	}()
}

func (s *EmailService) welcomeMessage(user *model.User) *mail.Message {
	m := mail.NewMessage()
	m.SetHeader("From", s.username)
	m.SetHeader("To", user.Email)
	m.SetHeader("Subject", "欢迎加入 Lake")
	m.SetBody("text/html", s.welcomeBody(user))
	return m
}

// welcomeBody 用户填写的内容都要转义后才能写入 HTML
func (s *EmailService) welcomeBody(user *model.User) string {
	name := user.FirstName
	if name == "" {
		name = user.Username
	}
	return fmt.Sprintf(`<p>亲爱的 %s，</p>
<p>您的账号 <strong>@%s</strong> 已创建成功。</p>
<p><a href="%s">立即登录</a>，关注感兴趣的人并分享您的第一条动态。</p>
<p>此邮件由系统自动发送，请勿直接回复。</p>`,
		html.EscapeString(name), html.EscapeString(user.Username), html.EscapeString(s.frontendURL))
}

func (s *EmailService) dialAndSend(m *mail.Message) error {
	util.Logger.Info("开始发送邮件", zap.Strings("to", m.GetHeader("To")))

	d := mail.NewDialer(s.smtpHost, s.smtpPort, s.username, s.password)
	d.Timeout = 20 * time.Second
	d.SSL = s.smtpPort == 465

	if err := d.DialAndSend(m); err != nil {
		util.Logger.Error("发送邮件失败", zap.Error(err))
		return fmt.Errorf("发送邮件失败: %w", err)
	}

	util.Logger.Info("邮件发送成功", zap.Strings("to", m.GetHeader("To")))
	return nil
}
