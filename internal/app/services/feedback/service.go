// Package feedback accepts contact messages from visitors.
package feedback

import (
	"context"
	stderrors "errors"

	"github.com/openshelf/catalog/internal/app/auth"
	"github.com/openshelf/catalog/internal/app/domain/feedback"
	"github.com/openshelf/catalog/internal/app/storage"
	"github.com/openshelf/catalog/internal/app/validate"
	"github.com/openshelf/catalog/internal/errors"
	"github.com/openshelf/catalog/internal/logging"
)

// Service stores and lists contact messages.
type Service struct {
	store storage.MessageStore
	log   *logging.Logger
}

// New constructs a feedback service.
func New(store storage.MessageStore, log *logging.Logger) *Service {
	if log == nil {
		log = logging.New("feedback")
	}
	return &Service{store: store, log: log}
}

// SubmitInput carries a contact form submission.
type SubmitInput struct {
	Name    string
	Email   string
	Message string
}

// Submit validates and records a contact message. Submission is open to
// anonymous callers.
func (s *Service) Submit(ctx context.Context, input SubmitInput) (feedback.Message, error) {
	if err := auth.Authorize(auth.PrincipalFrom(ctx), auth.CapMessageCreate); err != nil {
		return feedback.Message{}, err
	}

	var verrs validate.Errors
	name, reason := validate.Name(input.Name)
	if reason != "" {
		verrs.Add("name", reason)
	}
	email, reason := validate.Email(input.Email)
	if reason != "" {
		verrs.Add("email", reason)
	}
	message, reason := validate.Message(input.Message)
	if reason != "" {
		verrs.Add("message", reason)
	}
	if err := verrs.Err(); err != nil {
		return feedback.Message{}, err
	}

	created, err := s.store.CreateMessage(ctx, feedback.Message{
		Name:    name,
		Email:   email,
		Message: message,
	})
	if err != nil {
		return feedback.Message{}, s.storeError(ctx, err)
	}

	s.log.WithContext(ctx).WithField("message_id", created.ID).Info("contact message received")
	return created, nil
}

// List returns all stored messages, newest last.
func (s *Service) List(ctx context.Context) ([]feedback.Message, error) {
	if err := auth.Authorize(auth.PrincipalFrom(ctx), auth.CapMessageView); err != nil {
		return nil, err
	}
	messages, err := s.store.ListMessages(ctx)
	if err != nil {
		return nil, s.storeError(ctx, err)
	}
	return messages, nil
}

func (s *Service) storeError(ctx context.Context, err error) error {
	if stderrors.Is(err, storage.ErrNotFound) {
		return errors.NotFound("message")
	}
	s.log.WithContext(ctx).WithError(err).Error("store failure")
	return errors.Internal("", err)
}
