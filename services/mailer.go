package services

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"

	"github.com/HSouheill/matrix_backend/models"
)

// Notifier tells members about decisions on their commissions
type Notifier interface {
	CommissionProcessed(member *models.Member, c *models.LevelCommission) error
}

// SMTPMailer sends notices through an SMTP relay
type SMTPMailer struct {
	From   string
	dialer *gomail.Dialer
}

// NewMailerFromEnv builds an SMTPMailer from SMTP_* variables. A no-op
// notifier is returned when SMTP is not configured.
func NewMailerFromEnv() Notifier {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")
	sender := os.Getenv("FROM_EMAIL")
	if sender == "" {
		sender = smtpUser
	}

	if smtpHost == "" || smtpUser == "" || smtpPass == "" || sender == "" {
		log.Println("SMTP configuration is incomplete, commission emails are disabled")
		return noopNotifier{}
	}

	smtpPort := 2525
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			smtpPort = port
		}
	}

	return &SMTPMailer{
		From:   sender,
		dialer: gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPass),
	}
}

// CommissionMessage builds the notice for a processed commission
func (m *SMTPMailer) CommissionMessage(member *models.Member, c *models.LevelCommission) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.From)
	msg.SetHeader("To", member.Email)
	msg.SetHeader("Subject", fmt.Sprintf("Level %d commission %s", c.Level, c.Status))

	body := fmt.Sprintf("Hello %s,\n\nYour level %d matrix commission of %s is now %s.\n",
		member.FullName, c.Level, c.Amount.StringFixed(2), c.Status)
	if c.AdminNote != "" {
		body += "\nNote: " + c.AdminNote + "\n"
	}
	msg.SetBody("text/plain", body)
	return msg
}

func (m *SMTPMailer) CommissionProcessed(member *models.Member, c *models.LevelCommission) error {
	if err := m.dialer.DialAndSend(m.CommissionMessage(member, c)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

type noopNotifier struct{}

func (noopNotifier) CommissionProcessed(*models.Member, *models.LevelCommission) error { return nil }
