package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bibbank/origination/internal/domain/event"
	"github.com/bibbank/origination/internal/domain/valueobject"
	"github.com/bibbank/origination/pkg/events"
)

// ---------------------------------------------------------------------------
// Session aggregate root (Conversation Engine)
// ---------------------------------------------------------------------------

// Sender identifies who produced a conversation turn.
type Sender string

const (
	SenderCustomer  Sender = "customer"
	SenderAssistant Sender = "assistant"
)

// Turn is one utterance in the conversation transcript.
type Turn struct {
	ID        string
	Sender    Sender
	Text      string
	Stage     valueobject.ConversationState
	Timestamp time.Time
}

// DocumentUpload records a file the customer attached during verification.
type DocumentUpload struct {
	FileName   string
	FileType   string
	UploadedAt time.Time
}

// DocumentReference points at a persisted loan document.
type DocumentReference struct {
	ID       string
	Kind     string
	Location string
	IssuedAt time.Time
}

// IssuedDocuments is the sanction package generated after offer acceptance.
type IssuedDocuments struct {
	LoanID            string
	SanctionLetter    DocumentReference
	RepaymentSchedule DocumentReference
	DisbursementDate  time.Time
	FirstEMIDue       time.Time
	GeneratedAt       time.Time
}

// StageContext carries the working data accumulated as the conversation
// advances. Each stage reads what earlier stages wrote.
type StageContext struct {
	RequestedAmount decimal.Decimal
	TenureMonths    int
	SelectedOffer   *LoanOffer
	FinalOffer      *LoanOffer
	Assessment      *CreditAssessment

	IdentityVerified bool
	AddressVerified  bool
	IncomeVerified   bool
	VerifiedIncome   decimal.Decimal
	UpdatedAddress   string
	Uploads          []DocumentUpload

	AssessmentStarted   bool
	AssessmentStartedAt time.Time
	OfferAccepted       bool
	OfferAcceptedAt     time.Time

	IdentificationAttempts int
	IncomeAttempts         int
	EscalatedToAgent       bool

	Documents *IssuedDocuments
}

// AllVerified reports whether every verification check has passed.
func (c StageContext) AllVerified() bool {
	return c.IdentityVerified && c.AddressVerified && c.IncomeVerified
}

func (c StageContext) clone() StageContext {
	out := c
	if c.SelectedOffer != nil {
		o := c.SelectedOffer.Clone()
		out.SelectedOffer = &o
	}
	if c.FinalOffer != nil {
		o := c.FinalOffer.Clone()
		out.FinalOffer = &o
	}
	if c.Assessment != nil {
		a := c.Assessment.Clone()
		out.Assessment = &a
	}
	if c.Documents != nil {
		d := *c.Documents
		out.Documents = &d
	}
	if c.Uploads != nil {
		out.Uploads = make([]DocumentUpload, len(c.Uploads))
		copy(out.Uploads, c.Uploads)
	}
	return out
}

// Session is the conversation aggregate. It is mutated only inside the
// session store's commit callback, so methods mutate in place; Clone supports
// the store's copy-on-write discipline.
type Session struct {
	ID        string
	State     valueobject.ConversationState
	Profile   *CustomerProfile
	Context   StageContext
	History   []Turn
	CreatedAt time.Time
	UpdatedAt time.Time

	collector events.Collector
}

// NewSession creates a session in the INITIAL state.
func NewSession(id string, now time.Time) *Session {
	s := &Session{
		ID:        id,
		State:     valueobject.StateInitial,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.Record(event.NewSessionStarted(id, now))
	return s
}

// AppendCustomerTurn adds an inbound customer message to the transcript.
func (s *Session) AppendCustomerTurn(text string, now time.Time) Turn {
	return s.appendTurn(SenderCustomer, text, now)
}

// AppendAssistantTurn adds an outbound reply to the transcript.
func (s *Session) AppendAssistantTurn(text string, now time.Time) Turn {
	return s.appendTurn(SenderAssistant, text, now)
}

func (s *Session) appendTurn(sender Sender, text string, now time.Time) Turn {
	turn := Turn{
		ID:        uuid.New().String(),
		Sender:    sender,
		Text:      text,
		Stage:     s.State,
		Timestamp: now,
	}
	s.History = append(s.History, turn)
	s.UpdatedAt = now
	return turn
}

// TransitionTo advances the conversation to the target stage, enforcing the
// pipeline's legal edges.
func (s *Session) TransitionTo(target valueobject.ConversationState, now time.Time) error {
	if !s.State.CanTransitionTo(target) {
		return fmt.Errorf("%w: %s -> %s", valueobject.ErrInvalidStateTransition, s.State, target)
	}
	from := s.State
	s.State = target
	s.UpdatedAt = now
	s.Record(event.NewStageAdvanced(s.ID, from.String(), target.String(), now))
	return nil
}

// Identify attaches the registry profile and moves the conversation into the
// product inquiry stage.
func (s *Session) Identify(profile CustomerProfile, now time.Time) error {
	if err := s.TransitionTo(valueobject.StateProductInquiry, now); err != nil {
		return err
	}
	p := profile.Clone()
	s.Profile = &p
	s.Record(event.NewCustomerIdentified(s.ID, profile.ID, profile.Phone, now))
	return nil
}

// StartNewLoan rewinds a completed conversation to the product inquiry stage
// for a follow-up application. Identity and verification results carry over;
// offer, assessment, and document state are cleared.
func (s *Session) StartNewLoan(now time.Time) error {
	if err := s.TransitionTo(valueobject.StateProductInquiry, now); err != nil {
		return err
	}
	s.Context.RequestedAmount = decimal.Zero
	s.Context.TenureMonths = 0
	s.Context.SelectedOffer = nil
	s.Context.FinalOffer = nil
	s.Context.Assessment = nil
	s.Context.AssessmentStarted = false
	s.Context.AssessmentStartedAt = time.Time{}
	s.Context.OfferAccepted = false
	s.Context.OfferAcceptedAt = time.Time{}
	s.Context.Documents = nil
	return nil
}

// ResetToStart wipes the session back to a blank INITIAL state. Used when the
// conversation lands in an unrecognised stage.
func (s *Session) ResetToStart(now time.Time) {
	s.State = valueobject.StateInitial
	s.Profile = nil
	s.Context = StageContext{}
	s.UpdatedAt = now
	s.Record(event.NewSessionReset(s.ID, now))
}

// Record appends a domain event for publication after commit.
func (s *Session) Record(e event.DomainEvent) {
	s.collector.Record(e)
}

// DrainEvents returns the pending domain events and clears the buffer.
func (s *Session) DrainEvents() []event.DomainEvent {
	return s.collector.Drain()
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	out := &Session{
		ID:        s.ID,
		State:     s.State,
		Context:   s.Context.clone(),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
	if s.Profile != nil {
		p := s.Profile.Clone()
		out.Profile = &p
	}
	if s.History != nil {
		out.History = make([]Turn, len(s.History))
		copy(out.History, s.History)
	}
	for _, e := range s.collector.Events() {
		out.collector.Record(e)
	}
	return out
}
