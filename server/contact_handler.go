package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"portfolio-arcade/server/mailer"
	"portfolio-arcade/server/store"
)

const (
	contactSent   = "Your message has been sent successfully!"
	contactFailed = "Failed to send message. Please try again later."
	sendTimeout   = 20 * time.Second
)

// contact validates the form, stores it, and relays it through SendGrid.
// The visitor sees either the success message or one generic failure.
func (s *server) contact(w http.ResponseWriter, r *http.Request) {
	var sub mailer.Submission
	if err := decodeBody(w, r, &sub); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sub.Normalize()
	if err := sub.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	log := s.log.WithField("email", sub.Email)

	ctx, cancel := context.WithTimeout(r.Context(), sendTimeout)
	defer cancel()
	id, err := s.store.InsertContact(ctx, store.Contact{Name: sub.Name, Email: sub.Email, Message: sub.Message, CreatedAt: time.Now()})
	if err != nil {
		log.WithError(err).Warn("persist contact")
	}

	if s.mail == nil {
		log.Error("contact form used but SendGrid is not configured")
		s.markContact(ctx, log, id, false, mailer.ErrNotConfigured.Error())
		writeError(w, http.StatusInternalServerError, contactFailed)
		return
	}
	err = mailer.Deliver(ctx, s.mail, sub, s.autoreply)
	switch {
	case err == nil:
	case errors.Is(err, mailer.ErrAutoreplyFailed):
		log.WithError(err).Warn("autoreply not sent")
	default:
		log.WithError(err).Error("contact email failed")
		s.markContact(ctx, log, id, false, err.Error())
		writeError(w, http.StatusInternalServerError, contactFailed)
		return
	}
	s.markContact(ctx, log, id, true, "")
	writeJSON(w, http.StatusOK, map[string]string{"message": contactSent})
}

func (s *server) markContact(ctx context.Context, log *logrus.Entry, id int64, delivered bool, failure string) {
	if id == 0 {
		return
	}
	if err := s.store.MarkContactDelivered(ctx, id, delivered, failure); err != nil {
		log.WithError(err).Warn("persist contact status")
	}
}
