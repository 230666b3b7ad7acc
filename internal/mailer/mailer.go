package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jugnunagar/folio/internal/config"
)

var ErrNotConfigured = errors.New("mailer not configured")

type Message struct {
	From    string
	To      string
	ReplyTo string
	Subject string
	Text    string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type sendFunc func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer sends through one SMTP relay. Port 465 uses implicit TLS,
// anything else goes through smtp.SendMail (STARTTLS when offered).
type SMTPMailer struct {
	host string
	port int
	from string
	auth smtp.Auth
	send sendFunc
}

func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	m := &SMTPMailer{
		host: cfg.SMTPHost,
		port: cfg.SMTPPort,
		from: cfg.FromEmail,
	}
	if cfg.SMTPUser != "" {
		m.auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
	}
	if m.port == 465 {
		m.send = m.sendImplicitTLS
	} else {
		m.send = smtp.SendMail
	}
	return m
}

func (m *SMTPMailer) From() string { return m.from }

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if m.host == "" || m.from == "" {
		return ErrNotConfigured
	}
	if msg.From == "" {
		msg.From = m.from
	}
	raw, err := Build(msg, time.Now())
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	addr := net.JoinHostPort(m.host, strconv.Itoa(m.port))
	if err := m.send(addr, m.auth, m.from, []string{msg.To}, raw); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

func (m *SMTPMailer) sendImplicitTLS(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: m.host, MinVersion: tls.VersionTLS12})
	if err != nil {
		return fmt.Errorf("dial tls: %w", err)
	}
	c, err := smtp.NewClient(conn, m.host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp client: %w", err)
	}
	defer c.Close()

	if auth != nil {
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

// Build renders msg as a multipart/alternative RFC 5322 message.
func Build(msg Message, now time.Time) ([]byte, error) {
	if msg.To == "" {
		return nil, errors.New("mail recipient is empty")
	}

	var buf bytes.Buffer
	header := func(k, v string) {
		fmt.Fprintf(&buf, "%s: %s\r\n", k, headerValue(v))
	}
	header("From", msg.From)
	header("To", msg.To)
	if msg.ReplyTo != "" {
		header("Reply-To", msg.ReplyTo)
	}
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", headerValue(msg.Subject)))
	header("Date", now.Format(time.RFC1123Z))
	header("Message-ID", "<"+uuid.NewString()+"@"+domainOf(msg.From)+">")
	header("MIME-Version", "1.0")

	body := multipart.NewWriter(&buf)
	header("Content-Type", "multipart/alternative; boundary="+body.Boundary())
	buf.WriteString("\r\n")

	parts := []struct{ kind, content string }{
		{"text/plain", msg.Text},
		{"text/html", msg.HTML},
	}
	for _, p := range parts {
		if p.content == "" {
			continue
		}
		w, err := body.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {p.kind + "; charset=utf-8"},
			"Content-Transfer-Encoding": {"quoted-printable"},
		})
		if err != nil {
			return nil, err
		}
		// Quoted-printable keeps every line under the 998-octet limit.
		qp := quotedprintable.NewWriter(w)
		if _, err := qp.Write([]byte(crlf(p.content))); err != nil {
			return nil, err
		}
		if err := qp.Close(); err != nil {
			return nil, err
		}
	}
	if err := body.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func headerValue(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(strings.TrimSpace(v))
}

func domainOf(addr string) string {
	if i := strings.LastIndex(addr, "@"); i >= 0 && i < len(addr)-1 {
		return strings.Trim(addr[i+1:], "> ")
	}
	return "localhost"
}

func crlf(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r\n", "\n"), "\n", "\r\n")
}
