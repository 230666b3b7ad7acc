package mailer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/jugnunagar/folio/internal/config"
)

func TestBuild(t *testing.T) {
	raw, err := Build(Message{
		From:    "site@example.com",
		To:      "owner@example.com",
		ReplyTo: "visitor@example.com\r\nBcc: evil@example.com",
		Subject: "New inquiry from Zoë",
		Text:    "line one\nline two",
		HTML:    "<p>hi</p>",
	}, time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	s := string(raw)

	for _, want := range []string{
		"From: site@example.com\r\n",
		"To: owner@example.com\r\n",
		"Reply-To: visitor@example.com  Bcc: evil@example.com\r\n",
		"Subject: =?utf-8?q?New_inquiry_from_Zo=C3=AB?=\r\n",
		"Date: Tue, 04 Mar 2025 05:06:07 +0000\r\n",
		"MIME-Version: 1.0\r\n",
		"Content-Type: multipart/alternative; boundary=",
		"line one\r\nline two",
		"<p>hi</p>",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("message missing %q\n%s", want, s)
		}
	}
	if strings.Contains(s, "\r\nBcc:") {
		t.Error("header injection not neutralized")
	}
}

func TestBuild_LongLinesAreWrapped(t *testing.T) {
	paragraph := strings.Repeat("All work and no play makes a very long inquiry. ", 60)
	raw, err := Build(Message{
		From:    "site@example.com",
		To:      "owner@example.com",
		Subject: "Long",
		Text:    paragraph,
		HTML:    "<div>" + paragraph + "</div>",
	}, time.Now())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	for i, line := range strings.Split(string(raw), "\r\n") {
		if len(line) > 998 {
			t.Fatalf("line %d is %d bytes, limit 998", i, len(line))
		}
	}
	if !strings.Contains(string(raw), "Content-Transfer-Encoding: quoted-printable") {
		t.Error("parts not declared quoted-printable")
	}

	// The text part must decode back to the original paragraph.
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	_, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	if err != nil {
		t.Fatalf("content type: %v", err)
	}
	part, err := multipart.NewReader(msg.Body, params["boundary"]).NextPart()
	if err != nil {
		t.Fatalf("NextPart: %v", err)
	}
	decoded, err := io.ReadAll(part)
	if err != nil {
		t.Fatalf("read part: %v", err)
	}
	if string(decoded) != paragraph {
		t.Errorf("decoded text differs from original (len %d vs %d)", len(decoded), len(paragraph))
	}
}

func TestBuild_NoRecipient(t *testing.T) {
	if _, err := Build(Message{From: "a@b.c"}, time.Now()); err == nil {
		t.Error("expected error")
	}
}

func TestSMTPMailer_Send(t *testing.T) {
	cfg := &config.Config{SMTPHost: "smtp.example.com", SMTPPort: 587, SMTPUser: "u", SMTPPassword: "p", FromEmail: "site@example.com"}
	m := NewSMTPMailer(cfg)

	var gotAddr, gotFrom string
	var gotTo []string
	m.send = func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo = addr, from, to
		if auth == nil {
			t.Error("auth should be set when SMTP_USER is configured")
		}
		return nil
	}

	if err := m.Send(context.Background(), Message{To: "x@example.com", Subject: "s", Text: "t"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotAddr != "smtp.example.com:587" || gotFrom != "site@example.com" || len(gotTo) != 1 || gotTo[0] != "x@example.com" {
		t.Errorf("addr=%q from=%q to=%v", gotAddr, gotFrom, gotTo)
	}
}

func TestSMTPMailer_NotConfigured(t *testing.T) {
	m := NewSMTPMailer(&config.Config{SMTPPort: 587})
	err := m.Send(context.Background(), Message{To: "x@example.com"})
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v", err)
	}
}

func TestSMTPMailer_TransportError(t *testing.T) {
	m := NewSMTPMailer(&config.Config{SMTPHost: "h", SMTPPort: 25, FromEmail: "f@h"})
	m.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("connection refused") }
	if err := m.Send(context.Background(), Message{To: "x@example.com"}); err == nil {
		t.Error("expected error")
	}
}
