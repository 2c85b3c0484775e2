package stage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bibbank/origination/internal/domain/model"
	"github.com/bibbank/origination/internal/domain/port"
)

// Identification handles CUSTOMER_IDENTIFICATION: it extracts a phone number
// from the message and resolves the customer against the registry. Three
// failed attempts escalate to a human agent.
type Identification struct {
	Registry port.CustomerRegistry
	Logger   *slog.Logger
}

func (h Identification) Handle(ctx context.Context, s *model.Session, msg Message) (Reply, error) {
	phone, ok := ExtractPhone(msg.Text)
	if !ok {
		return h.retryOrEscalate(s, "I didn't catch a phone number there. "+
			"Please share your 10-digit registered mobile number, for example 9876543210.")
	}

	profile, err := h.Registry.LookupByPhone(ctx, phone)
	switch {
	case errors.Is(err, port.ErrCustomerNotFound):
		return h.retryOrEscalate(s, "I couldn't find an account registered under "+phone+". "+
			"Please double-check the number, or visit your nearest branch to register.")
	case err != nil:
		h.Logger.ErrorContext(ctx, "customer registry lookup failed",
			slog.String("session_id", s.ID), slog.Any("error", err))
		return Reply{
			Text: "I'm having trouble reaching our customer records right now. " +
				"Please try sharing your number again in a moment.",
		}, nil
	}

	if err := s.Identify(profile, msg.Received); err != nil {
		return Reply{}, err
	}

	return Reply{
		Text: fmt.Sprintf("Welcome back, %s! Good to see you again. "+
			"You're eligible to apply for a personal loan with us. "+
			"How much were you looking to borrow?", profile.Name),
	}, nil
}

func (h Identification) retryOrEscalate(s *model.Session, prompt string) (Reply, error) {
	s.Context.IdentificationAttempts++
	if s.Context.IdentificationAttempts >= maxIdentificationAttempts {
		s.Context.EscalatedToAgent = true
		return Reply{
			Text: "I'm unable to verify your identity over chat. " +
				"I'm connecting you with one of our agents who can help you further.",
			Escalated: true,
		}, nil
	}
	return Reply{Text: prompt}, nil
}
