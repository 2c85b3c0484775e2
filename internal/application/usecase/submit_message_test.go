package usecase

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/origination/internal/application/dto"
	"github.com/bibbank/origination/internal/application/stage"
	"github.com/bibbank/origination/internal/domain/event"
	"github.com/bibbank/origination/internal/domain/model"
	"github.com/bibbank/origination/internal/infrastructure/adapter"
	"github.com/bibbank/origination/internal/infrastructure/memory"
)

var testNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

type fakeQueue struct {
	enqueued []string
	err      error
}

func (q *fakeQueue) Enqueue(sessionID string) error {
	if q.err != nil {
		return q.err
	}
	q.enqueued = append(q.enqueued, sessionID)
	return nil
}

type capturingPublisher struct {
	events []event.DomainEvent
}

func (p *capturingPublisher) Publish(_ context.Context, events ...event.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

type failingSink struct{}

func (failingSink) Store(_ context.Context, _ string, _ any) (model.DocumentReference, error) {
	return model.DocumentReference{}, errors.New("sink unavailable")
}

type engine struct {
	uc        *SubmitMessageUseCase
	store     *memory.SessionStore
	queue     *fakeQueue
	publisher *capturingPublisher
}

func newEngine(t *testing.T) *engine {
	t.Helper()
	logger := testLogger()
	store := memory.NewSessionStore(0, logger)
	queue := &fakeQueue{}
	publisher := &capturingPublisher{}

	handlers := StageHandlers{
		Welcome:        stage.Welcome{},
		Identification: stage.Identification{Registry: adapter.NewStubCustomerRegistry(), Logger: logger},
		Sales:          stage.Sales{Catalog: adapter.NewStubOfferCatalog(), Logger: logger},
		Verification: stage.Verification{
			MinMonthlyIncome: decimal.NewFromInt(15000),
			Logger:           logger,
		},
		Underwriting: stage.Underwriting{Logger: logger},
		Documents:    stage.Documents{Sink: memory.NewDocumentSink(), Logger: logger},
		Completed:    stage.Completed{},
	}

	uc := NewSubmitMessageUseCase(store, publisher, queue, handlers, logger).
		WithClock(func() time.Time { return testNow })

	return &engine{uc: uc, store: store, queue: queue, publisher: publisher}
}

func (e *engine) say(t *testing.T, sessionID, text string) dto.MessageReply {
	t.Helper()
	reply, err := e.uc.Execute(context.Background(), dto.SubmitMessageRequest{
		SessionID: sessionID,
		Text:      text,
	})
	require.NoError(t, err)
	return reply
}

func TestSubmitMessageRejectsEmptyInput(t *testing.T) {
	e := newEngine(t)

	_, err := e.uc.Execute(context.Background(), dto.SubmitMessageRequest{Text: "   "})
	require.ErrorIs(t, err, ErrEmptyMessage)
}

func TestSubmitMessageAssignsSessionID(t *testing.T) {
	e := newEngine(t)

	reply := e.say(t, "", "hello")
	assert.NotEmpty(t, reply.SessionID)
	assert.Equal(t, "INITIAL", reply.Stage)
	assert.NotEmpty(t, reply.Suggestions)
}

func TestConversationFlowEndToEnd(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	const sid = "sess-flow"

	reply := e.say(t, sid, "Hi, I need a personal loan")
	assert.Equal(t, "CUSTOMER_IDENTIFICATION", reply.Stage)

	reply = e.say(t, sid, "My number is 9876543210")
	assert.Equal(t, "PRODUCT_INQUIRY", reply.Stage)
	assert.Contains(t, reply.Text, "Raj Sharma")

	reply = e.say(t, sid, "I need 5 lakh for 36 months")
	assert.Equal(t, "LOAN_APPLICATION", reply.Stage)

	s, err := e.store.Get(ctx, sid)
	require.NoError(t, err)
	require.NotNil(t, s.Context.SelectedOffer)
	assert.True(t, decimal.NewFromInt(500000).Equal(s.Context.SelectedOffer.Amount))
	assert.Equal(t, 1050, s.Context.SelectedOffer.InterestRateBps)
	assert.True(t, decimal.NewFromInt(16251).Equal(s.Context.SelectedOffer.EMI),
		"EMI was %s", s.Context.SelectedOffer.EMI)

	reply = e.say(t, sid, "Yes, let's proceed")
	assert.Equal(t, "VERIFICATION", reply.Stage)

	reply = e.say(t, sid, "Yes, that's correct")
	assert.Equal(t, "VERIFICATION", reply.Stage)

	reply = e.say(t, sid, "My salary is 85000 per month")
	assert.Equal(t, "UNDERWRITING", reply.Stage)
	assert.True(t, reply.Processing)
	assert.Equal(t, []string{sid}, e.queue.enqueued)

	s, err = e.store.Get(ctx, sid)
	require.NoError(t, err)
	assert.True(t, s.Context.AllVerified())
	assert.True(t, s.Context.AssessmentStarted)

	// Merge the assessment result the way the background worker would.
	mergeAssessment(t, e.store, sid)

	reply = e.say(t, sid, "I accept the offer")
	assert.Equal(t, "DOCUMENT_GENERATION", reply.Stage)

	reply = e.say(t, sid, "Show my documents")
	assert.Equal(t, "COMPLETED", reply.Stage)
	require.NotNil(t, reply.Documents)
	assert.NotEmpty(t, reply.Documents.LoanID)
	assert.NotEmpty(t, reply.Documents.SanctionLetter.Location)
	assert.NotEmpty(t, reply.Documents.RepaymentSchedule.Location)
	assert.Equal(t, testNow.Add(48*time.Hour), reply.Documents.DisbursementDate)

	reply = e.say(t, sid, "I'd like another loan")
	assert.Equal(t, "PRODUCT_INQUIRY", reply.Stage)

	// The whole journey should have produced a full event trail.
	types := make([]string, 0, len(e.publisher.events))
	for _, ev := range e.publisher.events {
		types = append(types, ev.EventType())
	}
	assert.Contains(t, types, "origination.session.started")
	assert.Contains(t, types, "origination.customer.identified")
	assert.Contains(t, types, "origination.offer.selected")
	assert.Contains(t, types, "origination.offer.accepted")
	assert.Contains(t, types, "origination.documents.issued")
}

func TestSubmitMessageHandlerFailureDegrades(t *testing.T) {
	e := newEngine(t)
	e.uc.handlers.Documents = stage.Documents{Sink: failingSink{}, Logger: testLogger()}
	ctx := context.Background()
	const sid = "sess-degrade"

	driveToDocumentGeneration(t, e, sid)

	reply := e.say(t, sid, "Show my documents")
	assert.Equal(t, fallbackReplyText, reply.Text)
	assert.Equal(t, "DOCUMENT_GENERATION", reply.Stage)

	// The failed turn must not have issued documents, and the transcript
	// keeps both the customer message and the fallback reply.
	s, err := e.store.Get(ctx, sid)
	require.NoError(t, err)
	assert.Nil(t, s.Context.Documents)
	require.NotEmpty(t, s.History)
	last := s.History[len(s.History)-1]
	assert.Equal(t, fallbackReplyText, last.Text)
}

func TestSubmitMessageRetriesAssessmentWhenQueueFull(t *testing.T) {
	e := newEngine(t)
	e.queue.err = errors.New("assessment queue full")
	ctx := context.Background()
	const sid = "sess-queue"

	driveToUnderwriting(t, e, sid)

	s, err := e.store.Get(ctx, sid)
	require.NoError(t, err)
	assert.False(t, s.Context.AssessmentStarted)

	// Queue recovers; the next message re-enqueues.
	e.queue.err = nil
	e.say(t, sid, "Any update on my application?")

	s, err = e.store.Get(ctx, sid)
	require.NoError(t, err)
	assert.True(t, s.Context.AssessmentStarted)
	assert.Equal(t, []string{sid}, e.queue.enqueued)
}

func TestSuggestionsTrackStage(t *testing.T) {
	e := newEngine(t)
	const sid = "sess-chips"

	reply := e.say(t, sid, "hello there")
	assert.Equal(t, "INITIAL", reply.Stage)
	assert.Contains(t, reply.Suggestions, "I need a loan")

	reply = e.say(t, sid, "I want to borrow some money")
	assert.Equal(t, "CUSTOMER_IDENTIFICATION", reply.Stage)
	assert.NotEmpty(t, reply.Suggestions)
}

func driveToUnderwriting(t *testing.T, e *engine, sid string) {
	t.Helper()
	e.say(t, sid, "Hi, I need a personal loan")
	e.say(t, sid, "My number is 9876543210")
	e.say(t, sid, "I need 5 lakh for 36 months")
	e.say(t, sid, "Yes, let's proceed")
	e.say(t, sid, "Yes, that's correct")
	reply := e.say(t, sid, "My salary is 85000 per month")
	require.Equal(t, "UNDERWRITING", reply.Stage)
}

func driveToDocumentGeneration(t *testing.T, e *engine, sid string) {
	t.Helper()
	driveToUnderwriting(t, e, sid)
	mergeAssessment(t, e.store, sid)
	reply := e.say(t, sid, "I accept the offer")
	require.Equal(t, "DOCUMENT_GENERATION", reply.Stage)
}

// mergeAssessment writes an approved assessment and final offer into the
// session, standing in for the background worker.
func mergeAssessment(t *testing.T, store *memory.SessionStore, sid string) {
	t.Helper()
	_, err := store.MutateExisting(context.Background(), sid, func(s *model.Session) error {
		s.Context.Assessment = &model.CreditAssessment{
			CustomerID:        "CUST001",
			Score:             820,
			Grade:             model.CreditGradeExcellent,
			RiskTier:          model.RiskTierLow,
			Eligibility:       model.EligibilityApproved,
			MaxEligibleAmount: decimal.NewFromInt(1000000),
			BaseRateBps:       1050,
			CheckedAt:         testNow,
		}
		s.Context.FinalOffer = &model.LoanOffer{
			OfferID:         "final-offer-1",
			ProductType:     model.ProductPersonalLoan,
			Amount:          decimal.NewFromInt(500000),
			InterestRateBps: 1000,
			TenureMonths:    36,
			EMI:             decimal.NewFromInt(16134),
			TotalPayable:    decimal.NewFromInt(580824),
			TotalInterest:   decimal.NewFromInt(80824),
			ValidUntil:      testNow.Add(7 * 24 * time.Hour),
			CreatedAt:       testNow,
		}
		s.DrainEvents()
		return nil
	})
	require.NoError(t, err)
}
