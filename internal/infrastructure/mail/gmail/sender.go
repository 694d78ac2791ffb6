package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// DigestSender delivers the weekly summary through the Gmail send API.
type DigestSender struct {
	service *gmail.Service
	from    string
}

func NewDigestSender(ctx context.Context, client *http.Client, from string) (*DigestSender, error) {
	service, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	return &DigestSender{service: service, from: from}, nil
}

// SendDigest sends a multipart/alternative message so clients can pick
// the plain-text or HTML rendering.
func (s *DigestSender) SendDigest(ctx context.Context, recipient, subject, htmlBody, textBody string) error {
	raw, err := buildMultipartMessage(s.from, recipient, subject, htmlBody, textBody)
	if err != nil {
		return fmt.Errorf("build digest message: %w", err)
	}

	_, err = s.service.Users.Messages.Send("me", &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(raw)),
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("send digest: %w", err)
	}
	return nil
}

func buildMultipartMessage(from, to, subject, htmlBody, textBody string) (string, error) {
	var b strings.Builder
	writer := multipart.NewWriter(&b)

	headers := []string{
		"From: " + from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: multipart/alternative; boundary="` + writer.Boundary() + `"`,
	}
	head := strings.Join(headers, "\r\n") + "\r\n\r\n"

	// Plain text first: clients prefer the last part they support.
	textPart, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type": {`text/plain; charset="UTF-8"`},
	})
	if err != nil {
		return "", err
	}
	if _, err := textPart.Write([]byte(textBody)); err != nil {
		return "", err
	}

	htmlPart, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type": {`text/html; charset="UTF-8"`},
	})
	if err != nil {
		return "", err
	}
	if _, err := htmlPart.Write([]byte(htmlBody)); err != nil {
		return "", err
	}

	if err := writer.Close(); err != nil {
		return "", err
	}
	return head + b.String(), nil
}
