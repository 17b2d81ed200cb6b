package services

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/Marling1212/ntu-sports-sub001/config"
)

// EmailService sends transactional mail over SMTP. Port 465 uses a direct
// TLS connection, anything else goes through STARTTLS.
type EmailService struct {
	cfg *config.Config
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{cfg: cfg}
}

var welcomeTemplate = template.Must(template.New("welcome").Parse(`
<p>Hi {{.FirstName}},</p>
<p>Your account is ready. Browse events and follow live brackets at
<a href="{{.Link}}">{{.Link}}</a>.</p>
`))

var roundCompletedTemplate = template.Must(template.New("round_completed").Parse(`
<p>All {{.RoundName}} matches of <strong>{{.EventName}}</strong> have finished.</p>
<p>See the updated draw at <a href="{{.Link}}">{{.Link}}</a>.</p>
`))

func (s *EmailService) SendEmail(to []string, subject string, body string) error {
	auth := smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)

	msg := []byte("To: " + to[0] + "\r\n" +
		"From: " + s.cfg.SMTPFrom + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\r\n" +
		"\r\n" +
		body + "\r\n")

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	tlsconfig := &tls.Config{
		ServerName: s.cfg.SMTPHost,
	}

	var client *smtp.Client
	if s.cfg.SMTPPort == 465 {
		conn, err := tls.Dial("tcp", addr, tlsconfig)
		if err != nil {
			return fmt.Errorf("smtp tls dial failed: %w", err)
		}
		defer conn.Close()
		client, err = smtp.NewClient(conn, s.cfg.SMTPHost)
		if err != nil {
			return fmt.Errorf("smtp client creation failed: %w", err)
		}
	} else {
		c, err := smtp.Dial(addr)
		if err != nil {
			return fmt.Errorf("smtp dial failed: %w", err)
		}
		client = c
		if err = client.StartTLS(tlsconfig); err != nil {
			client.Close()
			return fmt.Errorf("smtp STARTTLS failed: %w", err)
		}
	}
	defer client.Quit()

	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth failed: %w", err)
	}
	if err := client.Mail(s.cfg.SMTPFrom); err != nil {
		return fmt.Errorf("smtp MAIL FROM failed: %w", err)
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp RCPT TO failed: %w", err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA failed: %w", err)
	}
	if _, err = w.Write(msg); err != nil {
		return fmt.Errorf("smtp message write failed: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("smtp DATA close failed: %w", err)
	}
	return nil
}

func renderEmailBody(t *template.Template, data interface{}) (string, error) {
	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		return "", fmt.Errorf("failed to render email template %s: %w", t.Name(), err)
	}
	return body.String(), nil
}

func (s *EmailService) SendWelcomeEmail(to, firstName string) error {
	body, err := renderEmailBody(welcomeTemplate, struct {
		FirstName string
		Link      string
	}{
		FirstName: firstName,
		Link:      s.cfg.PublicURL,
	})
	if err != nil {
		return err
	}
	return s.SendEmail([]string{to}, "Welcome to NTU Sports", body)
}

func (s *EmailService) SendRoundCompletedEmail(to, eventName, roundName string) error {
	body, err := renderEmailBody(roundCompletedTemplate, struct {
		EventName string
		RoundName string
		Link      string
	}{
		EventName: eventName,
		RoundName: roundName,
		Link:      s.cfg.PublicURL,
	})
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("%s: %s complete", eventName, roundName)
	return s.SendEmail([]string{to}, subject, body)
}
