package notify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"balloon_ofp/internal/flightplan"
	"balloon_ofp/internal/models"
)

// SMTPConfig holds the mail relay settings
type SMTPConfig struct {
	Host     string
	Port     int
	From     string
	To       []string
	Username string
	Password string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailNotifier mails the plain-text summary of a record
type EmailNotifier struct {
	cfg  SMTPConfig
	send sendFunc
	now  func() time.Time
}

// NewEmailNotifier creates a notifier sending through the configured relay
func NewEmailNotifier(cfg SMTPConfig) (*EmailNotifier, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp host is required")
	}
	if cfg.From == "" || len(cfg.To) == 0 {
		return nil, errors.New("smtp from and to addresses are required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &EmailNotifier{cfg: cfg, send: smtp.SendMail, now: time.Now}, nil
}

func (e *EmailNotifier) Notify(ctx context.Context, rec *models.FlightPlanRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if e.cfg.Username != "" {
		auth = smtp.PlainAuth("", e.cfg.Username, e.cfg.Password, e.cfg.Host)
	}

	addr := net.JoinHostPort(e.cfg.Host, strconv.Itoa(e.cfg.Port))
	if err := e.send(addr, auth, e.cfg.From, e.cfg.To, e.message(rec)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (e *EmailNotifier) Name() string {
	return "email"
}

func (e *EmailNotifier) message(rec *models.FlightPlanRecord) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", e.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(e.cfg.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", flightplan.Subject(rec))
	fmt.Fprintf(&b, "Date: %s\r\n", e.now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(flightplan.RenderSummary(rec), "\n", "\r\n"))
	return []byte(b.String())
}
