package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// ResendSender posts to the Resend emails API.
type ResendSender struct {
	URL    string
	APIKey string
	From   string
	Client *http.Client
}

func (s *ResendSender) Name() string { return "resend" }

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	return postJSON(ctx, s.Client, s.URL, s.APIKey, resendRequest{
		From:    s.From,
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
	})
}

// SendGridSender posts to the SendGrid v3 mail/send API.
type SendGridSender struct {
	URL    string
	APIKey string
	From   string
	Client *http.Client
}

func (s *SendGridSender) Name() string { return "sendgrid" }

type sendGridAddress struct {
	Email string `json:"email"`
}

type sendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendGridRequest struct {
	Personalizations []struct {
		To []sendGridAddress `json:"to"`
	} `json:"personalizations"`
	From    sendGridAddress   `json:"from"`
	Subject string            `json:"subject"`
	Content []sendGridContent `json:"content"`
}

func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	req := sendGridRequest{
		From:    sendGridAddress{Email: s.From},
		Subject: msg.Subject,
		Content: []sendGridContent{{Type: "text/plain", Value: msg.Text}},
	}
	if msg.HTML != "" {
		req.Content = append(req.Content, sendGridContent{Type: "text/html", Value: msg.HTML})
	}
	req.Personalizations = make([]struct {
		To []sendGridAddress `json:"to"`
	}, 1)
	for _, to := range msg.To {
		req.Personalizations[0].To = append(req.Personalizations[0].To, sendGridAddress{Email: to})
	}
	return postJSON(ctx, s.Client, s.URL, s.APIKey, req)
}

func postJSON(ctx context.Context, client *http.Client, url, apiKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}
	return nil
}
