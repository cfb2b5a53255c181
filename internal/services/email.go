package services

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"net/smtp"
	"net/textproto"

	"vaulted/internal/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ses"
	"github.com/rs/zerolog/log"
)

// ErrMailNotConfigured indicates no mail relay credentials are present.
// Export treats this as a failed precondition, never a silent degrade.
var ErrMailNotConfigured = fmt.Errorf("mail relay not configured")

// EmailService handles email delivery via SES, with SMTP as fallback
type EmailService struct {
	smtpHost     string
	smtpPort     string
	smtpUser     string
	smtpPassword string
	fromEmail    string

	sesClient *ses.SES
	useSES    bool
}

// NewEmailService creates a new email service. SES is preferred when its
// credentials are present; otherwise SMTP. Returns ErrMailNotConfigured
// when neither is available.
func NewEmailService(cfg config.MailConfig) (*EmailService, error) {
	if cfg.AWSRegion != "" && cfg.AWSAccessKey != "" && cfg.AWSSecretKey != "" && cfg.SESFromEmail != "" {
		sess, err := session.NewSession(&aws.Config{
			Region:      aws.String(cfg.AWSRegion),
			Credentials: credentials.NewStaticCredentials(cfg.AWSAccessKey, cfg.AWSSecretKey, ""),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create AWS session: %w", err)
		}

		log.Info().Str("region", cfg.AWSRegion).Str("from", cfg.SESFromEmail).Msg("AWS SES configured")
		return &EmailService{
			sesClient: ses.New(sess),
			fromEmail: cfg.SESFromEmail,
			useSES:    true,
		}, nil
	}

	if cfg.SMTPHost == "" || cfg.SMTPUser == "" || cfg.SMTPPassword == "" || cfg.FromEmail == "" {
		return nil, ErrMailNotConfigured
	}

	return &EmailService{
		smtpHost:     cfg.SMTPHost,
		smtpPort:     cfg.SMTPPort,
		smtpUser:     cfg.SMTPUser,
		smtpPassword: cfg.SMTPPassword,
		fromEmail:    cfg.FromEmail,
	}, nil
}

// SendWithAttachment sends an HTML email carrying a single file attachment
func (s *EmailService) SendWithAttachment(to, subject, htmlBody, attachmentName, attachmentType string, attachment []byte) error {
	raw, err := buildRawMessage(s.fromEmail, to, subject, htmlBody, attachmentName, attachmentType, attachment)
	if err != nil {
		return fmt.Errorf("failed to build email: %w", err)
	}

	if s.useSES {
		_, err = s.sesClient.SendRawEmail(&ses.SendRawEmailInput{
			Source:       aws.String(s.fromEmail),
			Destinations: []*string{aws.String(to)},
			RawMessage:   &ses.RawMessage{Data: raw},
		})
		if err != nil {
			return fmt.Errorf("failed to send email via SES: %w", err)
		}
		return nil
	}

	auth := smtp.PlainAuth("", s.smtpUser, s.smtpPassword, s.smtpHost)
	if err := smtp.SendMail(s.smtpHost+":"+s.smtpPort, auth, s.fromEmail, []string{to}, raw); err != nil {
		return fmt.Errorf("failed to send email via SMTP: %w", err)
	}
	return nil
}

// buildRawMessage assembles a multipart/mixed MIME message with an HTML
// body part and one base64-encoded attachment.
func buildRawMessage(from, to, subject, htmlBody, attachmentName, attachmentType string, attachment []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", writer.Boundary())

	bodyHeader := textproto.MIMEHeader{}
	bodyHeader.Set("Content-Type", "text/html; charset=UTF-8")
	bodyPart, err := writer.CreatePart(bodyHeader)
	if err != nil {
		return nil, err
	}
	if _, err := bodyPart.Write([]byte(htmlBody)); err != nil {
		return nil, err
	}

	attachmentHeader := textproto.MIMEHeader{}
	attachmentHeader.Set("Content-Type", attachmentType)
	attachmentHeader.Set("Content-Transfer-Encoding", "base64")
	attachmentHeader.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", attachmentName))
	attachmentPart, err := writer.CreatePart(attachmentHeader)
	if err != nil {
		return nil, err
	}
	if err := writeBase64Wrapped(attachmentPart, attachment); err != nil {
		return nil, err
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeBase64Wrapped writes base64 data in 76-character lines, as SMTP
// relays require.
func writeBase64Wrapped(w io.Writer, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 0 {
		n := 76
		if len(encoded) < n {
			n = len(encoded)
		}
		if _, err := w.Write([]byte(encoded[:n] + "\r\n")); err != nil {
			return err
		}
		encoded = encoded[n:]
	}
	return nil
}
