package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-mail/mail/v2"
)

// Email is one outbound notification. Kind, UserID and ReservationID only feed the email log.
type Email struct {
	To            string
	Subject       string
	HTML          string
	Kind          string
	UserID        string
	ReservationID string
}

type Mailer interface {
	Send(ctx context.Context, e Email) error
}

// SMTPAccount is the outbound account mail is sent through.
type SMTPAccount struct {
	Host        string
	Port        int
	Username    string
	Password    string
	SenderEmail string
	SenderName  string
}

func (a SMTPAccount) configured() bool {
	return a.Host != "" && a.SenderEmail != ""
}

// AccountSource resolves the SMTP account at send time.
type AccountSource interface {
	Account(ctx context.Context) (SMTPAccount, error)
}

var errMailNotConfigured = errors.New("no SMTP account configured")

type SMTPMailer struct {
	accounts AccountSource
	timeout  time.Duration
}

func NewSMTPMailer(accounts AccountSource) *SMTPMailer {
	return &SMTPMailer{accounts: accounts, timeout: 20 * time.Second}
}

func (m *SMTPMailer) Send(ctx context.Context, e Email) error {
	acc, err := m.accounts.Account(ctx)
	if err != nil {
		return err
	}
	if !acc.configured() {
		return errMailNotConfigured
	}

	msg := mail.NewMessage()
	msg.SetAddressHeader("From", acc.SenderEmail, acc.SenderName)
	msg.SetHeader("To", e.To)
	msg.SetHeader("Subject", e.Subject)
	msg.SetBody("text/html", e.HTML)

	d := mail.NewDialer(acc.Host, acc.Port, acc.Username, acc.Password)
	if acc.Port != 465 {
		d.StartTLSPolicy = mail.MandatoryStartTLS
	}
	d.Timeout = m.timeout
	return d.DialAndSend(msg)
}

// LogMailer only logs. Used when no SMTP account is configured.
type LogMailer struct {
	Logger *slog.Logger
}

func (m LogMailer) Send(_ context.Context, e Email) error {
	m.Logger.Info("email not sent, mailer disabled", "to", e.To, "subject", e.Subject, "kind", e.Kind)
	return nil
}
