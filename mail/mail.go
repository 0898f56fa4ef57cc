package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/pavelpuchok/releasecourier/config"
)

var ErrAuth = errors.New("smtp authentication rejected")

// Message is a single HTML notification mail. Recipients keep the order
// they were configured in.
type Message struct {
	To       []string
	Subject  string
	HTMLBody string
}

// Bytes encodes the message as an RFC 5322 mail with an HTML body.
func (m Message) Bytes(from string) []byte {
	buf := &bytes.Buffer{}
	fmt.Fprintf(buf, "From: %s\r\n", from)
	fmt.Fprintf(buf, "To: %s\r\n", strings.Join(m.To, ", "))
	fmt.Fprintf(buf, "Subject: %s\r\n", m.Subject)
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(m.HTMLBody)
	buf.WriteString("\r\n")
	return buf.Bytes()
}

// SMTPMailer delivers messages over a STARTTLS-secured SMTP session, one
// connection per message. Gmail's submission port setup is the default.
type SMTPMailer struct {
	cfg config.MailConfig
}

func NewSMTP(cfg config.MailConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	addr := net.JoinHostPort(m.cfg.Host, fmt.Sprintf("%d", m.cfg.Port))

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("unable to connect to SMTP server %s. %w", addr, err)
	}

	c, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("unable to open SMTP session with %s. %w", addr, err)
	}
	defer c.Close()

	if err := c.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
		return fmt.Errorf("unable to start TLS with %s. %w", addr, err)
	}

	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	if err := c.Auth(auth); err != nil {
		return fmt.Errorf("%w. %s", ErrAuth, err)
	}

	if err := c.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("server rejected sender %s. %w", m.cfg.From, err)
	}
	for _, rcpt := range msg.To {
		if err := c.Rcpt(rcpt); err != nil {
			return fmt.Errorf("server rejected recipient %s. %w", rcpt, err)
		}
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("unable to open message body. %w", err)
	}
	if _, err := w.Write(msg.Bytes(m.cfg.From)); err != nil {
		return fmt.Errorf("unable to write message body. %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("server rejected message. %w", err)
	}

	return c.Quit()
}
