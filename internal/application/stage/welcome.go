package stage

import (
	"context"

	"github.com/bibbank/origination/internal/domain/model"
	"github.com/bibbank/origination/internal/domain/service"
	"github.com/bibbank/origination/internal/domain/valueobject"
)

// Welcome handles the INITIAL stage: it greets the customer and moves the
// conversation into identification once loan interest is expressed.
type Welcome struct{}

var welcomeRules = []service.IntentRule{
	{
		Tag:   valueobject.IntentLoanInquiry,
		Match: service.ContainsAny("loan", "borrow", "credit", "finance", "money", "emi", "apply", "personal loan"),
	},
}

func (h Welcome) Handle(_ context.Context, s *model.Session, msg Message) (Reply, error) {
	intent := service.ClassifyIntent(msg.Text, welcomeRules, valueobject.IntentGreeting)

	if intent == valueobject.IntentLoanInquiry {
		if err := s.TransitionTo(valueobject.StateCustomerIdentification, msg.Received); err != nil {
			return Reply{}, err
		}
		return Reply{
			Text: "Great! I can help you with a personal loan. " +
				"To get started, could you share your registered mobile number so I can look up your account?",
		}, nil
	}

	return Reply{
		Text: "Hello! Welcome to our loan services. I can help you explore personal loans, " +
			"check your eligibility, and complete an application right here in chat. " +
			"What brings you in today?",
	}, nil
}
