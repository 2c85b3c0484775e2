package event

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/origination/pkg/events"
)

// DomainEvent is an alias for the shared pkg/events.DomainEvent interface.
type DomainEvent = events.DomainEvent

const aggregateSession = "Session"

// ---------------------------------------------------------------------------
// Conversation lifecycle events
// ---------------------------------------------------------------------------

// SessionStarted is raised when a new conversation session is created.
type SessionStarted struct {
	events.BaseEvent
}

func NewSessionStarted(sessionID string, _ time.Time) SessionStarted {
	return SessionStarted{
		BaseEvent: events.NewBaseEvent("origination.session.started", sessionID, aggregateSession),
	}
}

// StageAdvanced is raised on every conversation state transition.
type StageAdvanced struct {
	events.BaseEvent
	From string `json:"from"`
	To   string `json:"to"`
}

func NewStageAdvanced(sessionID, from, to string, _ time.Time) StageAdvanced {
	return StageAdvanced{
		BaseEvent: events.NewBaseEvent("origination.session.stage_advanced", sessionID, aggregateSession),
		From:      from,
		To:        to,
	}
}

// SessionReset is raised when a conversation is wiped back to INITIAL.
type SessionReset struct {
	events.BaseEvent
}

func NewSessionReset(sessionID string, _ time.Time) SessionReset {
	return SessionReset{
		BaseEvent: events.NewBaseEvent("origination.session.reset", sessionID, aggregateSession),
	}
}

// ---------------------------------------------------------------------------
// Origination milestone events
// ---------------------------------------------------------------------------

// CustomerIdentified is raised when the registry confirms a customer.
type CustomerIdentified struct {
	events.BaseEvent
	CustomerID string `json:"customer_id"`
	Phone      string `json:"phone"`
}

func NewCustomerIdentified(sessionID, customerID, phone string, _ time.Time) CustomerIdentified {
	return CustomerIdentified{
		BaseEvent:  events.NewBaseEvent("origination.customer.identified", sessionID, aggregateSession),
		CustomerID: customerID,
		Phone:      phone,
	}
}

// OfferSelected is raised when a provisional offer is priced for the customer.
type OfferSelected struct {
	events.BaseEvent
	OfferID         string          `json:"offer_id"`
	Amount          decimal.Decimal `json:"amount"`
	InterestRateBps int             `json:"interest_rate_bps"`
	TenureMonths    int             `json:"tenure_months"`
}

func NewOfferSelected(sessionID, offerID string, amount decimal.Decimal, rateBps, tenureMonths int, _ time.Time) OfferSelected {
	return OfferSelected{
		BaseEvent:       events.NewBaseEvent("origination.offer.selected", sessionID, aggregateSession),
		OfferID:         offerID,
		Amount:          amount,
		InterestRateBps: rateBps,
		TenureMonths:    tenureMonths,
	}
}

// AssessmentCompleted is raised when the background credit assessment lands.
type AssessmentCompleted struct {
	events.BaseEvent
	CustomerID  string `json:"customer_id"`
	Score       int    `json:"score"`
	Eligibility string `json:"eligibility"`
	RiskTier    string `json:"risk_tier"`
}

func NewAssessmentCompleted(sessionID, customerID string, score int, eligibility, riskTier string, _ time.Time) AssessmentCompleted {
	return AssessmentCompleted{
		BaseEvent:   events.NewBaseEvent("origination.assessment.completed", sessionID, aggregateSession),
		CustomerID:  customerID,
		Score:       score,
		Eligibility: eligibility,
		RiskTier:    riskTier,
	}
}

// OfferAccepted is raised when the customer accepts the final offer.
type OfferAccepted struct {
	events.BaseEvent
	OfferID         string          `json:"offer_id"`
	Amount          decimal.Decimal `json:"amount"`
	InterestRateBps int             `json:"interest_rate_bps"`
}

func NewOfferAccepted(sessionID, offerID string, amount decimal.Decimal, rateBps int, _ time.Time) OfferAccepted {
	return OfferAccepted{
		BaseEvent:       events.NewBaseEvent("origination.offer.accepted", sessionID, aggregateSession),
		OfferID:         offerID,
		Amount:          amount,
		InterestRateBps: rateBps,
	}
}

// DocumentsIssued is raised when the sanction package is generated.
type DocumentsIssued struct {
	events.BaseEvent
	LoanID           string    `json:"loan_id"`
	DisbursementDate time.Time `json:"disbursement_date"`
}

func NewDocumentsIssued(sessionID, loanID string, disbursementDate, _ time.Time) DocumentsIssued {
	return DocumentsIssued{
		BaseEvent:        events.NewBaseEvent("origination.documents.issued", sessionID, aggregateSession),
		LoanID:           loanID,
		DisbursementDate: disbursementDate,
	}
}
