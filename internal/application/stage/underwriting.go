package stage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/bibbank/origination/internal/domain/event"
	"github.com/bibbank/origination/internal/domain/model"
	"github.com/bibbank/origination/internal/domain/service"
	"github.com/bibbank/origination/internal/domain/valueobject"
)

// Underwriting handles the UNDERWRITING stage. The credit assessment itself
// runs out of band; this handler answers status questions while it is
// pending, presents the final offer once it lands, and processes acceptance
// or modification requests.
type Underwriting struct {
	Logger *slog.Logger
}

var underwritingRules = []service.IntentRule{
	{
		Tag: valueobject.IntentOfferModification,
		Match: service.AnyOf(
			service.ContainsAny("change", "modify", "instead", "reduce", "increase", "different amount"),
		),
	},
	{
		Tag:   valueobject.IntentOfferAcceptance,
		Match: service.ContainsAny("accept", "yes", "agree", "confirm", "go ahead", "take it"),
	},
	{
		Tag:   valueobject.IntentCreditScoreInquiry,
		Match: service.ContainsAny("credit score", "cibil", "my score", "bureau"),
	},
	{
		Tag:   valueobject.IntentStatusCheck,
		Match: service.ContainsAny("status", "how long", "update", "done yet", "ready"),
	},
}

func (h Underwriting) Handle(_ context.Context, s *model.Session, msg Message) (Reply, error) {
	if s.Context.Assessment == nil {
		return Reply{
			Text: "Your credit assessment is still being processed. " +
				"It usually completes within a few seconds; ask me for the status any time.",
			Processing: true,
		}, nil
	}

	assessment := *s.Context.Assessment
	if s.Context.FinalOffer == nil {
		return h.handleDeclined(assessment), nil
	}

	intent := service.ClassifyIntent(msg.Text, underwritingRules, valueobject.IntentGeneralUnderwriting)

	switch intent {
	case valueobject.IntentOfferAcceptance:
		return h.acceptOffer(s, msg)

	case valueobject.IntentOfferModification:
		return h.modifyOffer(s, msg)

	case valueobject.IntentCreditScoreInquiry:
		return Reply{
			Text: fmt.Sprintf("Your credit score came back at %d, which rates as %s. "+
				"That's what earned you the %s%% rate on your final offer.",
				assessment.Score, assessment.Grade, formatRateBps(s.Context.FinalOffer.InterestRateBps)),
		}, nil

	case valueobject.IntentStatusCheck:
		fallthrough

	default:
		return Reply{
			Text: "Good news, your assessment is complete! " + describeFinalOffer(*s.Context.FinalOffer) +
				" Would you like to accept this offer?",
		}, nil
	}
}

func (h Underwriting) acceptOffer(s *model.Session, msg Message) (Reply, error) {
	offer := s.Context.FinalOffer
	s.Context.OfferAccepted = true
	s.Context.OfferAcceptedAt = msg.Received
	s.Record(event.NewOfferAccepted(s.ID, offer.OfferID, offer.Amount, offer.InterestRateBps, msg.Received))

	if err := s.TransitionTo(valueobject.StateDocumentGeneration, msg.Received); err != nil {
		return Reply{}, err
	}
	return Reply{
		Text: "Congratulations! Your loan is approved and accepted. " +
			"I'm preparing your sanction letter and repayment schedule now. " +
			"Say \"show my documents\" when you're ready.",
	}, nil
}

// modifyOffer re-prices the final offer when the customer asks for a
// different amount or tenure. Without a concrete figure the terms stand.
func (h Underwriting) modifyOffer(s *model.Session, msg Message) (Reply, error) {
	offer := *s.Context.FinalOffer

	amount := offer.Amount
	tenure := offer.TenureMonths
	changed := false

	if a, ok := ExtractAmount(msg.Text); ok {
		amount = a
		changed = true
	}
	if t, ok := ExtractTenureMonths(msg.Text); ok {
		tenure = t
		changed = true
	}
	if !changed {
		return Reply{
			Text: "Tell me the amount or tenure you'd prefer, for example " +
				"\"make it 3 lakh over 24 months\", and I'll re-price the offer.",
		}, nil
	}

	assessment := s.Context.Assessment
	if assessment.MaxEligibleAmount.GreaterThan(decimal.Zero) &&
		amount.GreaterThan(assessment.MaxEligibleAmount) {
		return Reply{
			Text: fmt.Sprintf("Based on your assessment the maximum I can offer is ₹%s. "+
				"Would you like the offer re-priced at that amount?",
				formatAmount(assessment.MaxEligibleAmount)),
		}, nil
	}

	quote, err := service.ComputeQuote(amount, offer.InterestRateBps, tenure)
	if err != nil {
		return Reply{
			Text: "I couldn't price those terms. Could you give me the amount and tenure again?",
		}, nil
	}

	offer.Amount = amount
	offer.TenureMonths = tenure
	offer.EMI = quote.EMI
	offer.TotalPayable = quote.TotalPayable
	offer.TotalInterest = quote.TotalInterest
	s.Context.FinalOffer = &offer
	s.Context.RequestedAmount = amount
	s.Context.TenureMonths = tenure

	return Reply{
		Text: "Done. " + describeFinalOffer(offer) + " Shall I lock this in?",
	}, nil
}

func (h Underwriting) handleDeclined(a model.CreditAssessment) Reply {
	return Reply{
		Text: fmt.Sprintf("I'm sorry, but based on your credit assessment (score %d) "+
			"we can't extend an offer right now. You can re-apply after six months, "+
			"or I can connect you with an agent to discuss secured loan options.",
			a.Score),
	}
}

func describeFinalOffer(o model.LoanOffer) string {
	return fmt.Sprintf("Your final offer: ₹%s over %d months at %s%% per annum, "+
		"with an EMI of ₹%s.",
		formatAmount(o.Amount), o.TenureMonths, formatRateBps(o.InterestRateBps), formatAmount(o.EMI))
}
