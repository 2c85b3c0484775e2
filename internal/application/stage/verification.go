package stage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bibbank/origination/internal/domain/model"
	"github.com/bibbank/origination/internal/domain/service"
	"github.com/bibbank/origination/internal/domain/valueobject"
)

// Verification handles the VERIFICATION stage: identity confirmation, address
// confirmation or correction, income capture against the policy minimum, and
// document upload acknowledgements. Once all three checks pass, the
// conversation advances to underwriting.
type Verification struct {
	MinMonthlyIncome decimal.Decimal
	Logger           *slog.Logger
}

var verificationRules = []service.IntentRule{
	{
		Tag:   valueobject.IntentVerificationPurpose,
		Match: service.ContainsAny("why", "what for", "purpose", "need this"),
	},
	{
		Tag:   valueobject.IntentDataSafetyConcern,
		Match: service.ContainsAny("safe", "secure", "privacy", "share my data", "misuse"),
	},
	{
		Tag:   valueobject.IntentIncomeShared,
		Match: service.ContainsAny("income", "salary", "earn", "per month", "monthly"),
	},
	{
		Tag:   valueobject.IntentAddressConfirmation,
		Match: service.ContainsAny("address", "moved", "shifted", "relocated"),
	},
	{
		Tag:   valueobject.IntentDocumentUpload,
		Match: service.ContainsAny("upload", "attached", "document", "pan card", "aadhaar", "payslip"),
	},
	{
		Tag:   valueobject.IntentIdentityConfirmation,
		Match: service.ContainsAny("yes", "correct", "confirm", "that's right", "up to date", "same"),
	},
}

func (h Verification) Handle(ctx context.Context, s *model.Session, msg Message) (Reply, error) {
	if msg.Upload != nil {
		s.Context.Uploads = append(s.Context.Uploads, *msg.Upload)
		reply := fmt.Sprintf("Received %s, thank you.", msg.Upload.FileName)
		return h.afterCheck(s, msg, reply)
	}

	intent := service.ClassifyIntent(msg.Text, verificationRules, valueobject.IntentGeneralVerification)

	switch intent {
	case valueobject.IntentVerificationPurpose:
		return Reply{
			Text: "These checks are required by lending regulations before we can run a credit " +
				"assessment. Confirming your identity, address, and income lets us finalise " +
				"your rate and disburse the loan without branch paperwork.",
		}, nil

	case valueobject.IntentDataSafetyConcern:
		return Reply{
			Text: "Your information is encrypted and used only for this loan application. " +
				"We never share it with third parties outside the credit bureau check " +
				"you've consented to.",
		}, nil

	case valueobject.IntentIncomeShared:
		return h.captureIncome(s, msg)

	case valueobject.IntentAddressConfirmation:
		// A long message containing an address keyword is treated as a
		// correction; a short one as a confirmation.
		if len(strings.TrimSpace(msg.Text)) > 20 {
			s.Context.UpdatedAddress = strings.TrimSpace(msg.Text)
			s.Context.AddressVerified = true
			return h.afterCheck(s, msg, "Thanks, I've updated your address on the application.")
		}
		s.Context.AddressVerified = true
		return h.afterCheck(s, msg, "Address confirmed.")

	case valueobject.IntentDocumentUpload:
		return Reply{
			Text: "You can attach your PAN card, Aadhaar, or latest payslip directly in this chat " +
				"and I'll add it to your application.",
		}, nil

	case valueobject.IntentIdentityConfirmation:
		s.Context.IdentityVerified = true
		if !s.Context.AddressVerified {
			// Treat a blanket confirmation as covering the registered address too.
			s.Context.AddressVerified = true
		}
		return h.afterCheck(s, msg, "Great, identity confirmed.")

	default:
		return Reply{Text: h.checklist(s)}, nil
	}
}

func (h Verification) captureIncome(s *model.Session, msg Message) (Reply, error) {
	income, ok := ExtractIncome(msg.Text)
	if !ok {
		s.Context.IncomeAttempts++
		if s.Context.IncomeAttempts >= maxIncomeAttempts {
			s.Context.EscalatedToAgent = true
			return Reply{
				Text: "I'm having trouble reading your income details. " +
					"Let me connect you with an agent who can complete the verification with you.",
				Escalated: true,
			}, nil
		}
		return Reply{
			Text: "Could you share your monthly income as a figure, for example \"my income is 85,000\"?",
		}, nil
	}

	if income.LessThan(h.MinMonthlyIncome) {
		return Reply{
			Text: fmt.Sprintf("I'm sorry, but our personal loans require a minimum monthly income "+
				"of ₹%s. Based on the figure you've shared we can't proceed with this application.",
				formatAmount(h.MinMonthlyIncome)),
		}, nil
	}

	s.Context.VerifiedIncome = income
	s.Context.IncomeVerified = true
	return h.afterCheck(s, msg, fmt.Sprintf("Income of ₹%s per month noted.", formatAmount(income)))
}

// afterCheck appends the remaining checklist, or advances to underwriting
// when every check has passed.
func (h Verification) afterCheck(s *model.Session, msg Message, ack string) (Reply, error) {
	if !s.Context.AllVerified() {
		return Reply{Text: ack + " " + h.checklist(s)}, nil
	}

	if err := s.TransitionTo(valueobject.StateUnderwriting, msg.Received); err != nil {
		return Reply{}, err
	}
	return Reply{
		Text: ack + " That completes verification! I'm now running your credit assessment. " +
			"This usually takes just a moment.",
		Processing: true,
	}, nil
}

func (h Verification) checklist(s *model.Session) string {
	var pending []string
	if !s.Context.IdentityVerified {
		pending = append(pending, "confirm your name is up to date")
	}
	if !s.Context.AddressVerified {
		pending = append(pending, "confirm your registered address")
	}
	if !s.Context.IncomeVerified {
		pending = append(pending, "share your monthly income")
	}
	if len(pending) == 0 {
		return "All checks are complete."
	}
	return "To finish verification I still need you to " + strings.Join(pending, ", and ") + "."
}
