package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/smtp"
	"strings"
	"time"
)

// Sender delivers a preformatted reminder to an address. A non-nil error
// means the reminder must not be marked as delivered.
type Sender interface {
	Send(ctx context.Context, address, text string) error
}

// AddressBook maps a person to their delivery address.
type AddressBook map[string]string

// Lookup returns the address for person. Blank entries count as missing.
func (b AddressBook) Lookup(person string) (string, bool) {
	address := strings.TrimSpace(b[person])
	return address, address != ""
}

// ErrDryRun is returned by senders that did not deliver anything. The
// notifier leaves such obligations unmarked.
var ErrDryRun = errors.New("reminder not delivered: dry run")

// LogSender only logs reminders. It is the dry-run channel and always
// returns ErrDryRun.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) Send(ctx context.Context, address, text string) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Reminder (dry run)", "to", address, "text", text)
	return ErrDryRun
}

// SMTPSender mails reminders through an SMTP relay.
type SMTPSender struct {
	Host     string
	Port     int
	From     string
	Username string
	Password string

	// sendMail defaults to smtp.SendMail.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func (s *SMTPSender) Send(ctx context.Context, address, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var auth smtp.Auth
	if s.Username != "" {
		auth = smtp.PlainAuth("", s.Username, s.Password, s.Host)
	}
	send := s.sendMail
	if send == nil {
		send = smtp.SendMail
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", s.From)
	fmt.Fprintf(&msg, "To: %s\r\n", address)
	fmt.Fprintf(&msg, "Subject: %s\r\n", Subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	msg.WriteString(text)
	msg.WriteString("\r\n")

	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)
	if err := send(addr, auth, s.From, []string{address}, msg.Bytes()); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", address, err)
	}
	return nil
}

// WebhookSender posts reminders as JSON to a chat bridge.
type WebhookSender struct {
	URL    string
	Client *http.Client
}

type webhookPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

func (s *WebhookSender) Send(ctx context.Context, address, text string) error {
	body, err := json.Marshal(webhookPayload{To: address, Subject: Subject, Text: text})
	if err != nil {
		return fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "famledger-notifier/1.0")

	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return fmt.Errorf("webhook returned status %d", resp.StatusCode)
}
