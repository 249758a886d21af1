package mailer

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const defaultBaseURL = "https://api.sendgrid.com"

var ErrNotConfigured = errors.New("mailer not configured: set SENDGRID_API_KEY, SENDGRID_TO_EMAIL and SENDGRID_FROM_EMAIL")

type Config struct {
	APIKey    string
	BaseURL   string
	To        string
	From      string
	FromName  string
	Autoreply bool
	Timeout   time.Duration
}

// ResolveConfig reads the SendGrid settings from the environment.
func ResolveConfig() (Config, error) {
	cfg := Config{
		APIKey:   strings.TrimSpace(os.Getenv("SENDGRID_API_KEY")),
		To:       strings.TrimSpace(os.Getenv("SENDGRID_TO_EMAIL")),
		From:     strings.TrimSpace(os.Getenv("SENDGRID_FROM_EMAIL")),
		FromName: strings.TrimSpace(os.Getenv("SENDGRID_FROM_NAME")),
		Timeout:  15 * time.Second,
	}
	base := firstNonEmpty(os.Getenv("SENDGRID_API_BASE"), os.Getenv("SENDGRID_BASE_URL"))
	if base == "" {
		base = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(base, "/")
	switch strings.ToLower(strings.TrimSpace(os.Getenv("CONTACT_AUTOREPLY"))) {
	case "1", "true", "yes", "on":
		cfg.Autoreply = true
	}
	if cfg.APIKey == "" || cfg.To == "" || cfg.From == "" {
		return cfg, ErrNotConfigured
	}
	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
