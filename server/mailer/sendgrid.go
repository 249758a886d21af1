package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
)

type Message struct {
	To      string
	ReplyTo string
	Subject string
	HTML    string
}

// Sender delivers one message.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// Client talks to the SendGrid v3 mail API.
type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}
}

func (c *Client) Config() Config { return c.cfg }

type address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendRequest struct {
	Personalizations []struct {
		To []address `json:"to"`
	} `json:"personalizations"`
	From    address   `json:"from"`
	ReplyTo *address  `json:"reply_to,omitempty"`
	Subject string    `json:"subject"`
	Content []content `json:"content"`
}

type content struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

func (c *Client) Send(ctx context.Context, m Message) error {
	to := m.To
	if to == "" {
		to = c.cfg.To
	}
	var req sendRequest
	req.Personalizations = make([]struct {
		To []address `json:"to"`
	}, 1)
	req.Personalizations[0].To = []address{{Email: to}}
	req.From = address{Email: c.cfg.From, Name: c.cfg.FromName}
	if m.ReplyTo != "" {
		req.ReplyTo = &address{Email: m.ReplyTo}
	}
	req.Subject = m.Subject
	req.Content = []content{{Type: "text/html", Value: m.HTML}}

	b, err := json.Marshal(req)
	if err != nil {
		return errors.Wrap(err, "encode sendgrid request")
	}
	hr, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v3/mail/send", bytes.NewReader(b))
	if err != nil {
		return errors.Wrap(err, "build sendgrid request")
	}
	hr.Header.Set("Content-Type", "application/json")
	hr.Header.Set("Accept", "application/json")
	hr.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(hr)
	if err != nil {
		return errors.Wrap(err, "sendgrid request")
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("sendgrid http %d: %s", resp.StatusCode, truncate(buf.String(), 800))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
