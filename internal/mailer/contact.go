package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"
)

var ErrMissingFields = errors.New("missing fields")

// Inquiry is a contact-form submission.
type Inquiry struct {
	FullName string `json:"fullName"`
	ReplyTo  string `json:"reply_to"`
	Message  string `json:"message"`
}

func (in Inquiry) Validate() error {
	if strings.TrimSpace(in.FullName) == "" || strings.TrimSpace(in.ReplyTo) == "" || strings.TrimSpace(in.Message) == "" {
		return ErrMissingFields
	}
	return nil
}

const frame = `<div style="font-family:Inter,Segoe UI,Arial,sans-serif;background:#f6f7fb;padding:24px">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width:640px;margin:auto;background:#ffffff;border-radius:12px;border:1px solid #eef0f4;overflow:hidden">
    {{template "rows" .}}
    <tr><td style="padding:16px 24px;border-top:1px solid #eef0f4;color:#94a3b8;font-size:12px">&copy; {{.Year}} {{.Owner}}</td></tr>
  </table>
</div>`

var (
	ownerTmpl = layout("owner", `<tr><td style="padding:20px 24px;border-bottom:1px solid #eef0f4"><h1 style="margin:0;font-size:18px;color:#0f172a">New inquiry</h1><p style="margin:4px 0 0;font-size:12px;color:#64748b">From your website contact form</p></td></tr>
    <tr><td style="padding:20px 24px"><p style="margin:0 0 12px"><strong style="color:#0f172a">Name:</strong> {{.Name}}</p><p style="margin:0 0 12px"><strong style="color:#0f172a">Email:</strong> <a href="mailto:{{.Email}}" style="color:#2563eb;text-decoration:none">{{.Email}}</a></p><div style="margin-top:12px;padding:14px 16px;background:#f8fafc;border:1px solid #eef0f4;border-radius:10px;color:#0f172a;line-height:1.6">{{range $i, $line := .Lines}}{{if $i}}<br/>{{end}}{{$line}}{{end}}</div></td></tr>`)

	visitorTmpl = layout("visitor", `<tr><td style="padding:24px;text-align:center"><h1 style="margin:0 0 6px;font-size:18px;color:#0f172a">Thanks, {{.Name}}.</h1><p style="margin:0;color:#64748b;font-size:14px">I received your message and will reply shortly.</p></td></tr>
    <tr><td style="padding:0 24px 20px"><div style="margin-top:10px;padding:14px 16px;background:#f8fafc;border:1px solid #eef0f4;border-radius:10px;color:#0f172a;font-size:14px">In the meantime, feel free to reply to this email with any extra details.</div></td></tr>`)

	noticeTmpl = layout("notice", `<tr><td style="padding:20px 24px"><h1 style="margin:0 0 6px;font-size:18px;color:#0f172a">{{.Name}} is live</h1><p style="margin:0 0 12px;color:#64748b;font-size:14px">{{.Summary}}</p><p style="margin:0"><a href="{{.Link}}" style="color:#2563eb;text-decoration:none">{{.Link}}</a></p></td></tr>`)
)

func layout(name, rows string) *template.Template {
	t := template.Must(template.New(name).Parse(frame))
	template.Must(t.New("rows").Parse(rows))
	return t
}

type view struct {
	Name    string
	Email   string
	Link    string
	Summary string
	Lines   []string
	Owner   string
	Year    int
}

func render(t *template.Template, v view) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, v); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}

// Relay forwards contact-form inquiries to the site owner and acknowledges
// them to the visitor.
type Relay struct {
	sender Sender
	to     string
	owner  string
	now    func() time.Time
}

func NewRelay(sender Sender, ownerEmail, ownerName string) *Relay {
	return &Relay{sender: sender, to: ownerEmail, owner: ownerName, now: time.Now}
}

// Send delivers the owner notification first, then the acknowledgement.
// Nothing is retried.
func (r *Relay) Send(ctx context.Context, in Inquiry) error {
	if err := in.Validate(); err != nil {
		return err
	}
	name := strings.TrimSpace(in.FullName)
	replyTo := strings.TrimSpace(in.ReplyTo)
	v := view{
		Name:  name,
		Email: replyTo,
		Lines: strings.Split(strings.ReplaceAll(in.Message, "\r\n", "\n"), "\n"),
		Owner: r.owner,
		Year:  r.now().Year(),
	}

	ownerHTML, err := render(ownerTmpl, v)
	if err != nil {
		return err
	}
	if err := r.sender.Send(ctx, Message{
		To:      r.to,
		ReplyTo: replyTo,
		Subject: "New inquiry from " + name,
		Text:    in.Message,
		HTML:    ownerHTML,
	}); err != nil {
		return fmt.Errorf("owner notification: %w", err)
	}

	visitorHTML, err := render(visitorTmpl, v)
	if err != nil {
		return err
	}
	if err := r.sender.Send(ctx, Message{
		To:      replyTo,
		Subject: "Thanks for reaching out - " + r.owner,
		Text:    fmt.Sprintf("Hi %s,\n\nThanks for reaching out. I received your message and will reply shortly.\n\n- %s", name, r.owner),
		HTML:    visitorHTML,
	}); err != nil {
		return fmt.Errorf("visitor acknowledgement: %w", err)
	}
	return nil
}

// NotifyPublished tells the owner a post went live at link.
func (r *Relay) NotifyPublished(ctx context.Context, title, summary, link string) error {
	html, err := render(noticeTmpl, view{
		Name:    title,
		Link:    link,
		Summary: summary,
		Owner:   r.owner,
		Year:    r.now().Year(),
	})
	if err != nil {
		return err
	}
	return r.sender.Send(ctx, Message{
		To:      r.to,
		Subject: "Published: " + title,
		Text:    fmt.Sprintf("%s is live.\n\n%s\n\n%s", title, summary, link),
		HTML:    html,
	})
}
