package mail

import (
	"crypto/tls"
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
)

// SMTPSender delivers plain emails over SMTP. It is the fallback path
// for accounts where the Gmail send scope is unavailable.
type SMTPSender struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string // display name for the From header

	// dial is a test seam around the STARTTLS connection.
	dial func(addr string, tlsConfig *tls.Config) (smtpClient, error)
}

// smtpClient is the subset of *smtp.Client the sender uses.
type smtpClient interface {
	Auth(a sasl.Client) error
	SendMail(from string, to []string, r io.Reader) error
	Quit() error
}

type realSMTPClient struct {
	c *smtp.Client
}

func (r realSMTPClient) Auth(a sasl.Client) error { return r.c.Auth(a) }
func (r realSMTPClient) SendMail(from string, to []string, rd io.Reader) error {
	return r.c.SendMail(from, to, rd)
}
func (r realSMTPClient) Quit() error { return r.c.Quit() }

// NewSMTPSender builds a sender for the given account.
func NewSMTPSender(host string, port int, username, password string) *SMTPSender {
	return &SMTPSender{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		From:     "Inbox Pilot",
		dial: func(addr string, tlsConfig *tls.Config) (smtpClient, error) {
			c, err := smtp.DialStartTLS(addr, tlsConfig)
			if err != nil {
				return nil, err
			}
			return realSMTPClient{c: c}, nil
		},
	}
}

// Send delivers a plain-text message to a single recipient.
func (s *SMTPSender) Send(to, subject, body string) error {
	if s.Username == "" || s.Password == "" {
		return fmt.Errorf("smtp: credentials not configured")
	}
	if to == "" {
		return fmt.Errorf("smtp: recipient is required")
	}

	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)
	c, err := s.dial(addr, &tls.Config{ServerName: s.Host})
	if err != nil {
		return fmt.Errorf("smtp: dial %s: %w", addr, err)
	}
	defer c.Quit()

	if err := c.Auth(sasl.NewPlainClient("", s.Username, s.Password)); err != nil {
		return fmt.Errorf("smtp: auth: %w", err)
	}

	msg := s.buildMessage(to, subject, body)
	if err := c.SendMail(s.Username, []string{to}, strings.NewReader(msg)); err != nil {
		return fmt.Errorf("smtp: send: %w", err)
	}
	return nil
}

// SendReply is like Send but guarantees the subject carries a Re: prefix.
func (s *SMTPSender) SendReply(to, subject, body string) error {
	return s.Send(to, NormalizeReplySubject(subject), body)
}

func (s *SMTPSender) buildMessage(to, subject, body string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", s.From, s.Username)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return b.String()
}
