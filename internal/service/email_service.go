package service

import (
	"errors"
	"fmt"
	"mime"
	"net/mail"
	"net/smtp"
	"strings"

	"github.com/shudian-next/internal/config"
	"github.com/shudian-next/internal/models"
)

// 邮件发送相关错误
var (
	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrInvalidEmail              = errors.New("invalid email address")
)

// EmailService 邮件发送服务
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// OrderStatusEmailInput 订单状态邮件输入
type OrderStatusEmailInput struct {
	OrderNo string
	Status  models.ShipmentStatus
	Amount  models.Money
	IsGuest bool
}

// SendOrderStatusEmail 发送订单状态通知
func (s *EmailService) SendOrderStatusEmail(toEmail string, input OrderStatusEmailInput) error {
	subject := fmt.Sprintf("订单 %s 状态更新：%s", input.OrderNo, statusDisplayName(input.Status))
	lines := []string{
		fmt.Sprintf("您的订单 %s 当前状态为「%s」。", input.OrderNo, statusDisplayName(input.Status)),
		fmt.Sprintf("订单金额：%s", input.Amount.String()),
	}
	if input.IsGuest {
		lines = append(lines, "游客订单可凭订单号、邮箱与下单时设置的订单密码查询。")
	}
	return s.sendTextEmail(toEmail, subject, strings.Join(lines, "\n"))
}

func statusDisplayName(status models.ShipmentStatus) string {
	switch status {
	case models.ShipmentPending:
		return "待发货"
	case models.ShipmentShipping:
		return "配送中"
	case models.ShipmentShipped:
		return "已送达"
	case models.ShipmentCanceled:
		return "已取消"
	case models.ShipmentRefundRequested:
		return "退款处理中"
	case models.ShipmentRefundResolved:
		return "退款已完成"
	default:
		return status.String()
	}
}

func (s *EmailService) sendTextEmail(toEmail, subject, body string) error {
	if s.cfg == nil || !s.cfg.Enabled {
		return ErrEmailServiceDisabled
	}
	if s.cfg.Host == "" || s.cfg.Port == 0 || s.cfg.From == "" {
		return ErrEmailServiceNotConfigured
	}
	if _, err := mail.ParseAddress(toEmail); err != nil {
		return ErrInvalidEmail
	}

	from := buildFromAddress(s.cfg.From, s.cfg.FromName)
	msg := buildEmailMessage(from, toEmail, subject, body)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" || s.cfg.Password != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	return smtp.SendMail(addr, auth, s.cfg.From, []string{toEmail}, []byte(msg))
}

func buildFromAddress(from, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return from
	}
	return fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", name), from)
}

func buildEmailMessage(from, to, subject, body string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("From: %s\r\n", from))
	b.WriteString(fmt.Sprintf("To: %s\r\n", to))
	b.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject)))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return b.String()
}
