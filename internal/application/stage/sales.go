package stage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/bibbank/origination/internal/domain/event"
	"github.com/bibbank/origination/internal/domain/model"
	"github.com/bibbank/origination/internal/domain/port"
	"github.com/bibbank/origination/internal/domain/service"
	"github.com/bibbank/origination/internal/domain/valueobject"
)

// DefaultTenureMonths is assumed when the customer names an amount without a
// tenure.
const DefaultTenureMonths = 36

// Sales handles the PRODUCT_INQUIRY and LOAN_APPLICATION stages: product
// questions, offer pricing against the pre-approved catalog, and the consent
// that hands the conversation over to verification.
type Sales struct {
	Catalog port.OfferCatalog
	Logger  *slog.Logger
}

var salesRules = []service.IntentRule{
	{
		Tag: valueobject.IntentAmountInquiry,
		Match: func(text string) bool {
			_, ok := ExtractAmount(text)
			return ok
		},
	},
	{
		Tag:   valueobject.IntentApplicationDecline,
		Match: service.ContainsAny("not now", "not interested", "later", "no thanks", "maybe another"),
	},
	{
		Tag:   valueobject.IntentApplicationConsent,
		Match: service.ContainsAny("apply", "proceed", "go ahead", "yes", "interested", "let's do", "sounds good", "start"),
	},
	{
		Tag:   valueobject.IntentRateInquiry,
		Match: service.ContainsAny("interest", "rate", "emi", "installment", "charges", "fee"),
	},
	{
		Tag:   valueobject.IntentProductComparison,
		Match: service.ContainsAny("compare", "difference", "business loan", "which loan", "options"),
	},
	{
		Tag:   valueobject.IntentEligibilityInquiry,
		Match: service.ContainsAny("eligible", "eligibility", "qualify", "criteria"),
	},
}

// HandleInquiry processes messages in the PRODUCT_INQUIRY stage.
func (h Sales) HandleInquiry(ctx context.Context, s *model.Session, msg Message) (Reply, error) {
	intent := service.ClassifyIntent(msg.Text, salesRules, valueobject.IntentGeneralSales)

	switch intent {
	case valueobject.IntentAmountInquiry:
		return h.priceOffer(ctx, s, msg)

	case valueobject.IntentApplicationConsent:
		if s.Context.SelectedOffer == nil {
			return Reply{
				Text: "Happy to get you started. How much would you like to borrow? " +
					"You can say something like \"5 lakh for 36 months\".",
			}, nil
		}
		return h.consentToVerification(s, msg)

	case valueobject.IntentApplicationDecline:
		return Reply{
			Text: "No problem at all. Your pre-approved offer stays valid for 30 days, " +
				"so feel free to come back whenever you're ready.",
		}, nil

	case valueobject.IntentRateInquiry:
		return Reply{
			Text: "Our personal loan rates start at 10.50% per annum for pre-approved customers, " +
				"with a one-time processing fee of 1% and no prepayment charges. " +
				"Tell me an amount and tenure and I'll work out the exact EMI for you.",
		}, nil

	case valueobject.IntentProductComparison:
		return Reply{
			Text: "Personal loans are unsecured, disbursed within 48 hours, and suit amounts up to ₹8,00,000. " +
				"Business loans need financial statements and take longer to process but go higher. " +
				"For most individual needs the personal loan is the quicker route. " +
				"Would you like to see what you're pre-approved for?",
		}, nil

	case valueobject.IntentEligibilityInquiry:
		return Reply{
			Text: "Eligibility depends on your credit score and monthly income. " +
				"You need a minimum income of ₹15,000 per month, and your final rate is set " +
				"after a quick credit check. Since you're an existing customer, " +
				"just tell me how much you need and I'll check your pre-approved limit.",
		}, nil

	default:
		return Reply{
			Text: "I can help you with a personal loan today. " +
				"How much are you looking to borrow, and over how many months?",
		}, nil
	}
}

// HandleApplication processes messages in the LOAN_APPLICATION stage, where a
// priced offer is on the table awaiting consent.
func (h Sales) HandleApplication(ctx context.Context, s *model.Session, msg Message) (Reply, error) {
	intent := service.ClassifyIntent(msg.Text, salesRules, valueobject.IntentGeneralSales)

	switch intent {
	case valueobject.IntentAmountInquiry:
		// Customer changed the amount; re-price in place.
		return h.priceOffer(ctx, s, msg)

	case valueobject.IntentApplicationConsent:
		return h.consentToVerification(s, msg)

	case valueobject.IntentApplicationDecline:
		return Reply{
			Text: "Understood. The offer remains open for 30 days if you change your mind. " +
				"Is there anything else I can help you with?",
		}, nil

	case valueobject.IntentRateInquiry:
		if offer := s.Context.SelectedOffer; offer != nil {
			return Reply{Text: describeOffer(*offer) + " Shall we proceed with the application?"}, nil
		}
		fallthrough

	default:
		if offer := s.Context.SelectedOffer; offer != nil {
			return Reply{Text: describeOffer(*offer) + " Would you like to go ahead?"}, nil
		}
		return Reply{
			Text: "Let's lock in the details first. How much would you like to borrow?",
		}, nil
	}
}

func (h Sales) priceOffer(ctx context.Context, s *model.Session, msg Message) (Reply, error) {
	amount, _ := ExtractAmount(msg.Text)
	tenure := s.Context.TenureMonths
	if months, ok := ExtractTenureMonths(msg.Text); ok {
		tenure = months
	}
	if tenure == 0 {
		tenure = DefaultTenureMonths
	}

	s.Context.RequestedAmount = amount
	s.Context.TenureMonths = tenure

	if s.Profile == nil {
		return Reply{}, errors.New("pricing requires an identified customer")
	}

	offers, err := h.Catalog.PreApprovedOffers(ctx, s.Profile.ID)
	if err != nil && !errors.Is(err, port.ErrNoOffers) {
		h.Logger.ErrorContext(ctx, "offer catalog lookup failed",
			slog.String("session_id", s.ID), slog.Any("error", err))
		return Reply{
			Text: "I couldn't pull up your offers just now. Give me a moment and try again.",
		}, nil
	}

	catalog, selErr := service.SelectCatalogOffer(offers)
	if errors.Is(err, port.ErrNoOffers) || errors.Is(selErr, service.ErrNoEligibleOffer) {
		// No pre-approved ceiling on file; move straight to the full
		// application with verification and a credit check.
		if terr := s.TransitionTo(valueobject.StateLoanApplication, msg.Received); terr != nil {
			return Reply{}, terr
		}
		return Reply{
			Text: fmt.Sprintf("I don't see a pre-approved offer on your account for ₹%s, "+
				"but we can still process a full application with a credit check. "+
				"Shall we start the verification?", formatAmount(amount)),
		}, nil
	}

	offer, err := service.BuildProvisionalOffer(catalog, amount, tenure, msg.Received)
	if err != nil {
		return Reply{}, fmt.Errorf("price provisional offer: %w", err)
	}

	s.Context.SelectedOffer = &offer
	s.Record(event.NewOfferSelected(s.ID, offer.OfferID, offer.Amount, offer.InterestRateBps, offer.TenureMonths, msg.Received))

	if s.State.Equal(valueobject.StateProductInquiry) {
		if err := s.TransitionTo(valueobject.StateLoanApplication, msg.Received); err != nil {
			return Reply{}, err
		}
	}

	text := describeOffer(offer)
	if amount.GreaterThan(catalog.MaxAmount) {
		text = fmt.Sprintf("Your pre-approved limit is ₹%s, so I've priced the offer at that amount. ",
			formatAmount(catalog.MaxAmount)) + text
	}
	return Reply{Text: text + " Would you like to proceed with the application?"}, nil
}

func (h Sales) consentToVerification(s *model.Session, msg Message) (Reply, error) {
	if err := s.TransitionTo(valueobject.StateVerification, msg.Received); err != nil {
		return Reply{}, err
	}
	return Reply{
		Text: "Excellent! Before we run the credit assessment I need to verify a few details. " +
			"First, can you confirm your name and registered address are up to date?",
	}, nil
}

func describeOffer(o model.LoanOffer) string {
	return fmt.Sprintf("Here's your offer: ₹%s over %d months at %s%% per annum. "+
		"Your EMI works out to ₹%s, with a total repayment of ₹%s.",
		formatAmount(o.Amount), o.TenureMonths, formatRateBps(o.InterestRateBps),
		formatAmount(o.EMI), formatAmount(o.TotalPayable))
}

func formatRateBps(bps int) string {
	return decimal.NewFromInt(int64(bps)).Div(decimal.NewFromInt(100)).StringFixed(2)
}

func formatAmount(d decimal.Decimal) string {
	return d.Round(2).String()
}
