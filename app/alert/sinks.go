package alert

import (
	"cmp"
	"fmt"
	"html"
	"io"
	"strings"

	mail "github.com/wneessen/go-mail"
)

// Subject builds the email/console subject line for a severity and product.
func Subject(severity, product, version string) string {
	return strings.TrimSpace(fmt.Sprintf("[VULN ALERT][%s] %s %s", severity, product, version))
}

// ConsoleSink prints alerts in a human-readable block, the dry-run default.
type ConsoleSink struct {
	Out io.Writer
}

func (s *ConsoleSink) Deliver(ev Event) error {
	snippet := strings.ReplaceAll(ev.Snippet, "\n", " ")
	if len(snippet) > 800 {
		snippet = snippet[:800]
	}

	_, err := fmt.Fprintf(s.Out, `
[ALERT DETECTED - DRY RUN]
Product:  %s
Editor:   %s
Version:  %s
Source:   %s (%s)
URL:      %s
CVE:      %s
Severity: %s
CVSS:     %s
Snippet:  %s...

`,
		ev.Product,
		cmp.Or(ev.Editor, "-"),
		cmp.Or(ev.Version, "unspecified"),
		ev.SourceName, ev.SourceType,
		ev.URL,
		cmp.Or(ev.CVE, "-"),
		cmp.Or(ev.Severity, "-"),
		cmp.Or(ev.CVSS, "-"),
		snippet)
	return err
}

// SMTPConfig carries the delivery settings for the email sink. The values
// come from the optional YAML config file, never from flags.
type SMTPConfig struct {
	Host     string   `yaml:"host"`
	Port     int      `yaml:"port"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	From     string   `yaml:"from"`
	To       []string `yaml:"to"`
	UseTLS   bool     `yaml:"use_tls"`
}

// EmailSink delivers alerts over SMTP with a plain-text body and an HTML
// alternative.
type EmailSink struct {
	cfg SMTPConfig
}

func NewEmailSink(cfg SMTPConfig) (*EmailSink, error) {
	if cfg.Host == "" || cfg.From == "" || len(cfg.To) == 0 {
		return nil, fmt.Errorf("smtp config requires host, from and at least one recipient")
	}
	return &EmailSink{cfg: cfg}, nil
}

func (s *EmailSink) Deliver(ev Event) error {
	msg := mail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(s.cfg.To...); err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}
	msg.Subject(ev.Subject)
	msg.SetBodyString(mail.TypeTextPlain, textBody(ev))
	msg.AddAlternativeString(mail.TypeTextHTML, htmlBody(ev))

	opts := []mail.Option{mail.WithPort(s.cfg.Port)}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password))
	}
	if s.cfg.UseTLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}
	if err := client.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send alert email: %w", err)
	}
	return nil
}

func textBody(ev Event) string {
	return fmt.Sprintf("%s (%s) detected in %s\n%s\nCVE: %s\nSeverity: %s\nCVSS: %s\n\n%s\n",
		ev.Product,
		cmp.Or(ev.Version, "no version"),
		ev.SourceName,
		ev.URL,
		ev.CVE, ev.Severity, ev.CVSS,
		ev.Snippet)
}

func htmlBody(ev Event) string {
	return fmt.Sprintf("<p><b>%s</b> (%s) detected in <b>%s</b><br>"+
		"<a href='%s'>%s</a><br>"+
		"<b>CVE:</b> %s<br><b>Severity:</b> %s<br><b>CVSS:</b> %s</p><pre>%s</pre>",
		html.EscapeString(ev.Product),
		html.EscapeString(cmp.Or(ev.Version, "no version")),
		html.EscapeString(ev.SourceName),
		ev.URL, html.EscapeString(ev.URL),
		html.EscapeString(ev.CVE), ev.Severity, ev.CVSS,
		html.EscapeString(ev.Snippet))
}
