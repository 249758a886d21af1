package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

const (
	maxNameLen    = 200
	maxMessageLen = 5000
)

var (
	ErrInvalidSubmission = errors.New("invalid submission")
	ErrAutoreplyFailed   = errors.New("autoreply failed")
)

// Submission is the contact form body.
type Submission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

func (s *Submission) Normalize() {
	s.Name = strings.TrimSpace(s.Name)
	s.Email = strings.TrimSpace(s.Email)
	s.Message = strings.TrimSpace(s.Message)
}

func (s Submission) Validate() error {
	switch {
	case s.Name == "" || s.Email == "" || s.Message == "":
		return fmt.Errorf("%w: name, email and message are required", ErrInvalidSubmission)
	case utf8.RuneCountInString(s.Name) > maxNameLen:
		return fmt.Errorf("%w: name longer than %d characters", ErrInvalidSubmission, maxNameLen)
	case utf8.RuneCountInString(s.Message) > maxMessageLen:
		return fmt.Errorf("%w: message longer than %d characters", ErrInvalidSubmission, maxMessageLen)
	}
	addr, err := mail.ParseAddress(s.Email)
	if err != nil || addr.Address != s.Email {
		return fmt.Errorf("%w: bad email address", ErrInvalidSubmission)
	}
	return nil
}

var contactTmpl = template.Must(template.New("contact").Parse(`
  <html>
    <body>
      <h1>New Contact Form Submission</h1>
      <p><strong>Name:</strong> {{.Name}}</p>
      <p><strong>Email:</strong> {{.Email}}</p>
      <p><strong>Message:</strong></p>
      <p>{{.Message}}</p>
    </body>
  </html>
`))

var welcomeTmpl = template.Must(template.New("welcome").Parse(`
  <html>
    <body>
      <h1>Welcome to Our Platform, {{.}}!</h1>
      <p>Thanks for reaching out. I'll get back to you shortly.</p>
      <p>Best regards,<br>Tobie</p>
    </body>
  </html>
`))

// ContactEmail builds the notification for the site owner. Replies go to the
// visitor.
func ContactEmail(s Submission) (Message, error) {
	var buf bytes.Buffer
	if err := contactTmpl.Execute(&buf, s); err != nil {
		return Message{}, errors.Wrap(err, "render contact email")
	}
	return Message{
		ReplyTo: s.Email,
		Subject: "New Contact Form Submission from " + s.Name,
		HTML:    buf.String(),
	}, nil
}

func WelcomeEmail(s Submission) (Message, error) {
	var buf bytes.Buffer
	if err := welcomeTmpl.Execute(&buf, s.Name); err != nil {
		return Message{}, errors.Wrap(err, "render welcome email")
	}
	return Message{To: s.Email, Subject: "Thanks for getting in touch", HTML: buf.String()}, nil
}

// Deliver sends the owner notification and, when asked, the visitor's
// autoreply. A failed autoreply is reported as ErrAutoreplyFailed after the
// notification went out.
func Deliver(ctx context.Context, snd Sender, s Submission, autoreply bool) error {
	msg, err := ContactEmail(s)
	if err != nil {
		return err
	}
	if err := snd.Send(ctx, msg); err != nil {
		return errors.Wrap(err, "send contact email")
	}
	if !autoreply {
		return nil
	}
	welcome, err := WelcomeEmail(s)
	if err == nil {
		err = snd.Send(ctx, welcome)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAutoreplyFailed, err)
	}
	return nil
}
