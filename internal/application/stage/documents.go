package stage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/origination/internal/domain/event"
	"github.com/bibbank/origination/internal/domain/model"
	"github.com/bibbank/origination/internal/domain/port"
	"github.com/bibbank/origination/internal/domain/valueobject"
)

// Document kinds written to the document sink.
const (
	DocumentKindSanctionLetter    = "SANCTION_LETTER"
	DocumentKindRepaymentSchedule = "REPAYMENT_SCHEDULE"
)

// Disbursement happens two business days after sanction; the first EMI falls
// due one month after disbursement.
const disbursementLeadTime = 48 * time.Hour

// SanctionLetter is the persisted sanction letter payload.
type SanctionLetter struct {
	LoanID           string          `json:"loan_id"`
	CustomerID       string          `json:"customer_id"`
	CustomerName     string          `json:"customer_name"`
	ProductType      string          `json:"product_type"`
	Amount           decimal.Decimal `json:"amount"`
	InterestRateBps  int             `json:"interest_rate_bps"`
	TenureMonths     int             `json:"tenure_months"`
	EMI              decimal.Decimal `json:"emi"`
	TotalPayable     decimal.Decimal `json:"total_payable"`
	ProcessingFeeBps int             `json:"processing_fee_bps"`
	DisbursementDate time.Time       `json:"disbursement_date"`
	FirstEMIDue      time.Time       `json:"first_emi_due"`
	SanctionedAt     time.Time       `json:"sanctioned_at"`
}

// RepaymentSchedule is the persisted amortization schedule payload.
type RepaymentSchedule struct {
	LoanID  string                    `json:"loan_id"`
	Entries []model.AmortizationEntry `json:"entries"`
}

// Documents handles the DOCUMENT_GENERATION stage: it builds the sanction
// letter and repayment schedule, persists them, and completes the
// conversation.
type Documents struct {
	Sink   port.DocumentSink
	Logger *slog.Logger
}

func (h Documents) Handle(ctx context.Context, s *model.Session, msg Message) (Reply, error) {
	if s.Context.Documents != nil {
		// Already issued; nothing left to do in this stage.
		return Reply{Text: "Your documents are ready and attached above."}, nil
	}

	offer := s.Context.FinalOffer
	if !s.Context.OfferAccepted || offer == nil || s.Profile == nil {
		return Reply{
			Text: "I can't generate your loan documents without an accepted offer. " +
				"Let me take you back to review your application.",
		}, nil
	}

	now := msg.Received
	loanID := "PL" + now.Format("20060102150405")
	disbursement := now.Add(disbursementLeadTime)
	firstEMIDue := disbursement.AddDate(0, 1, 0)

	letter := SanctionLetter{
		LoanID:           loanID,
		CustomerID:       s.Profile.ID,
		CustomerName:     s.Profile.Name,
		ProductType:      offer.ProductType,
		Amount:           offer.Amount,
		InterestRateBps:  offer.InterestRateBps,
		TenureMonths:     offer.TenureMonths,
		EMI:              offer.EMI,
		TotalPayable:     offer.TotalPayable,
		ProcessingFeeBps: offer.Terms.ProcessingFeeBps,
		DisbursementDate: disbursement,
		FirstEMIDue:      firstEMIDue,
		SanctionedAt:     now,
	}
	letterRef, err := h.Sink.Store(ctx, DocumentKindSanctionLetter, letter)
	if err != nil {
		h.Logger.ErrorContext(ctx, "sanction letter persistence failed",
			slog.String("session_id", s.ID), slog.Any("error", err))
		return Reply{}, errors.New("document generation failed")
	}

	schedule := RepaymentSchedule{
		LoanID:  loanID,
		Entries: model.GenerateAmortizationSchedule(offer.Amount, offer.InterestRateBps, offer.TenureMonths, disbursement),
	}
	scheduleRef, err := h.Sink.Store(ctx, DocumentKindRepaymentSchedule, schedule)
	if err != nil {
		h.Logger.ErrorContext(ctx, "repayment schedule persistence failed",
			slog.String("session_id", s.ID), slog.Any("error", err))
		return Reply{}, errors.New("document generation failed")
	}

	s.Context.Documents = &model.IssuedDocuments{
		LoanID:            loanID,
		SanctionLetter:    letterRef,
		RepaymentSchedule: scheduleRef,
		DisbursementDate:  disbursement,
		FirstEMIDue:       firstEMIDue,
		GeneratedAt:       now,
	}
	s.Record(event.NewDocumentsIssued(s.ID, loanID, disbursement, now))

	if err := s.TransitionTo(valueobject.StateCompleted, now); err != nil {
		return Reply{}, err
	}

	return Reply{
		Text: fmt.Sprintf("All done! Your loan %s is sanctioned. "+
			"I've attached your sanction letter and repayment schedule. "+
			"The amount of ₹%s will be disbursed to your account by %s, "+
			"and your first EMI of ₹%s falls due on %s.",
			loanID, formatAmount(offer.Amount), disbursement.Format("2 January 2006"),
			formatAmount(offer.EMI), firstEMIDue.Format("2 January 2006")),
	}, nil
}
