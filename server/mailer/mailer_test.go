package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testConfig(base string) Config {
	return Config{APIKey: "sg-key", BaseURL: base, To: "owner@example.com", From: "site@example.com", Timeout: 5 * time.Second}
}

func TestClientSend(t *testing.T) {
	var got sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v3/mail/send" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if h := r.Header.Get("Authorization"); h != "Bearer sg-key" {
			t.Errorf("unexpected Authorization %q", h)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	err := c.Send(context.Background(), Message{ReplyTo: "ada@example.com", Subject: "hello", HTML: "<p>hi</p>"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(got.Personalizations) != 1 || got.Personalizations[0].To[0].Email != "owner@example.com" {
		t.Fatalf("recipient not defaulted: %+v", got.Personalizations)
	}
	if got.From.Email != "site@example.com" || got.ReplyTo == nil || got.ReplyTo.Email != "ada@example.com" {
		t.Fatalf("from/reply-to wrong: %+v %+v", got.From, got.ReplyTo)
	}
	if got.Subject != "hello" || got.Content[0].Type != "text/html" {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestClientSendErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":[{"message":"bad key"}]}`, http.StatusUnauthorized)
	}))
	defer srv.Close()
	err := NewClient(testConfig(srv.URL)).Send(context.Background(), Message{Subject: "x"})
	if err == nil || !strings.Contains(err.Error(), "401") || !strings.Contains(err.Error(), "bad key") {
		t.Fatalf("expected http 401 error, got %v", err)
	}
}

func TestSubmissionValidate(t *testing.T) {
	cases := []struct {
		name string
		sub  Submission
		ok   bool
	}{
		{"valid", Submission{Name: "Ada", Email: "ada@example.com", Message: "hi"}, true},
		{"missing name", Submission{Email: "ada@example.com", Message: "hi"}, false},
		{"missing message", Submission{Name: "Ada", Email: "ada@example.com"}, false},
		{"bad email", Submission{Name: "Ada", Email: "not-an-email", Message: "hi"}, false},
		{"display name email", Submission{Name: "Ada", Email: "Ada <ada@example.com>", Message: "hi"}, false},
		{"long message", Submission{Name: "Ada", Email: "ada@example.com", Message: strings.Repeat("x", 5001)}, false},
		{"long name", Submission{Name: strings.Repeat("n", 201), Email: "ada@example.com", Message: "hi"}, false},
	}
	for _, tc := range cases {
		err := tc.sub.Validate()
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidSubmission) {
			t.Fatalf("%s: expected ErrInvalidSubmission, got %v", tc.name, err)
		}
	}
}

func TestContactEmailEscapes(t *testing.T) {
	m, err := ContactEmail(Submission{Name: "Eve", Email: "eve@example.com", Message: "<script>alert(1)</script>"})
	if err != nil {
		t.Fatal(err)
	}
	if m.Subject != "New Contact Form Submission from Eve" {
		t.Fatalf("subject %q", m.Subject)
	}
	if strings.Contains(m.HTML, "<script>") || !strings.Contains(m.HTML, "&lt;script&gt;") {
		t.Fatalf("message not escaped: %s", m.HTML)
	}
	if m.ReplyTo != "eve@example.com" {
		t.Fatalf("reply-to %q", m.ReplyTo)
	}
}

type fakeSender struct {
	sent []Message
	fail map[int]error
}

func (f *fakeSender) Send(_ context.Context, m Message) error {
	f.sent = append(f.sent, m)
	return f.fail[len(f.sent)]
}

func TestDeliver(t *testing.T) {
	sub := Submission{Name: "Ada", Email: "ada@example.com", Message: "hi"}

	f := &fakeSender{}
	if err := Deliver(context.Background(), f, sub, false); err != nil || len(f.sent) != 1 {
		t.Fatalf("plain delivery: %v, %d sent", err, len(f.sent))
	}

	f = &fakeSender{}
	if err := Deliver(context.Background(), f, sub, true); err != nil || len(f.sent) != 2 {
		t.Fatalf("autoreply delivery: %v, %d sent", err, len(f.sent))
	}
	if f.sent[1].To != "ada@example.com" || !strings.Contains(f.sent[1].HTML, "Welcome to Our Platform, Ada!") {
		t.Fatalf("autoreply %+v", f.sent[1])
	}

	f = &fakeSender{fail: map[int]error{2: errors.New("boom")}}
	if err := Deliver(context.Background(), f, sub, true); !errors.Is(err, ErrAutoreplyFailed) {
		t.Fatalf("expected ErrAutoreplyFailed, got %v", err)
	}

	f = &fakeSender{fail: map[int]error{1: errors.New("down")}}
	err := Deliver(context.Background(), f, sub, true)
	if err == nil || errors.Is(err, ErrAutoreplyFailed) || len(f.sent) != 1 {
		t.Fatalf("notification failure should stop delivery: %v", err)
	}
}
