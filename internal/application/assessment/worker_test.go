package assessment

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/origination/internal/domain/event"
	"github.com/bibbank/origination/internal/domain/model"
	"github.com/bibbank/origination/internal/domain/port"
	"github.com/bibbank/origination/internal/domain/valueobject"
	"github.com/bibbank/origination/internal/infrastructure/memory"
)

var testNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

type scriptedBureau struct {
	assessment model.CreditAssessment
	err        error
	calls      int
}

func (b *scriptedBureau) CheckCredit(_ context.Context, customerID, _ string) (model.CreditAssessment, error) {
	b.calls++
	if b.err != nil {
		return model.CreditAssessment{}, b.err
	}
	a := b.assessment
	a.CustomerID = customerID
	return a, nil
}

type emptyCatalog struct{}

func (emptyCatalog) PreApprovedOffers(_ context.Context, _ string) ([]model.CatalogOffer, error) {
	return nil, port.ErrNoOffers
}

type capturingPublisher struct {
	events []event.DomainEvent
}

func (p *capturingPublisher) Publish(_ context.Context, events ...event.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func approvedAssessment() model.CreditAssessment {
	return model.CreditAssessment{
		Score:             820,
		Grade:             model.CreditGradeExcellent,
		RiskTier:          model.RiskTierLow,
		Eligibility:       model.EligibilityApproved,
		MaxEligibleAmount: decimal.NewFromInt(1000000),
		BaseRateBps:       1050,
		PaymentHistory:    "EXCELLENT",
		CheckedAt:         testNow,
	}
}

func rejectedAssessment() model.CreditAssessment {
	return model.CreditAssessment{
		Score:          480,
		Grade:          model.CreditGradePoor,
		RiskTier:       model.RiskTierHigh,
		Eligibility:    model.EligibilityRejected,
		PaymentHistory: "POOR",
		CheckedAt:      testNow,
	}
}

// seedUnderwritingSession creates a session parked in underwriting with a
// selected provisional offer, the way the sales stage leaves it.
func seedUnderwritingSession(t *testing.T, store *memory.SessionStore, sid string) {
	t.Helper()
	_, err := store.Mutate(context.Background(), sid, func(s *model.Session) error {
		s.Profile = &model.CustomerProfile{
			ID:            "CUST001",
			Name:          "Raj Sharma",
			Phone:         "9876543210",
			PAN:           "ABCDE1234F",
			MonthlyIncome: decimal.NewFromInt(85000),
		}
		s.State = valueobject.StateUnderwriting
		s.Context.RequestedAmount = decimal.NewFromInt(500000)
		s.Context.TenureMonths = 36
		s.Context.SelectedOffer = &model.LoanOffer{
			OfferID:         "OFFER001",
			ProductType:     model.ProductPersonalLoan,
			Amount:          decimal.NewFromInt(500000),
			InterestRateBps: 1050,
			TenureMonths:    36,
			EMI:             decimal.NewFromInt(16251),
		}
		s.Context.AssessmentStarted = true
		s.DrainEvents()
		return nil
	})
	require.NoError(t, err)
}

func newTestWorker(store *memory.SessionStore, bureau port.CreditBureau, publisher port.EventPublisher) *Worker {
	return NewWorker(store, bureau, emptyCatalog{}, publisher, Config{Workers: 1, QueueSize: 4}, testLogger()).
		WithClock(func() time.Time { return testNow })
}

func TestAssessApprovedMergesFinalOffer(t *testing.T) {
	store := memory.NewSessionStore(0, testLogger())
	publisher := &capturingPublisher{}
	bureau := &scriptedBureau{assessment: approvedAssessment()}
	w := newTestWorker(store, bureau, publisher)
	seedUnderwritingSession(t, store, "sess-approve")

	result, err := w.assess(context.Background(), "sess-approve")
	require.NoError(t, err)
	assert.True(t, result.approved)

	s, err := store.Get(context.Background(), "sess-approve")
	require.NoError(t, err)
	require.NotNil(t, s.Context.Assessment)
	assert.Equal(t, 820, s.Context.Assessment.Score)

	// Score 820 earns the excellent-tier discount on the catalog rate.
	offer := s.Context.FinalOffer
	require.NotNil(t, offer)
	assert.Equal(t, 1000, offer.InterestRateBps)
	assert.True(t, decimal.NewFromInt(500000).Equal(offer.Amount))
	assert.True(t, decimal.NewFromInt(16134).Equal(offer.EMI), "EMI was %s", offer.EMI)
	assert.Equal(t, testNow.Add(7*24*time.Hour), offer.ValidUntil)

	// The result lands in the transcript and on the event stream.
	require.NotEmpty(t, s.History)
	assert.Contains(t, s.History[len(s.History)-1].Text, "820")
	require.Len(t, publisher.events, 1)
	assert.Equal(t, "origination.assessment.completed", publisher.events[0].EventType())
}

func TestAssessRejectedLeavesNoOffer(t *testing.T) {
	store := memory.NewSessionStore(0, testLogger())
	bureau := &scriptedBureau{assessment: rejectedAssessment()}
	w := newTestWorker(store, bureau, &capturingPublisher{})
	seedUnderwritingSession(t, store, "sess-reject")

	result, err := w.assess(context.Background(), "sess-reject")
	require.NoError(t, err)
	assert.False(t, result.approved)

	s, err := store.Get(context.Background(), "sess-reject")
	require.NoError(t, err)
	require.NotNil(t, s.Context.Assessment)
	assert.Nil(t, s.Context.FinalOffer)
	assert.Contains(t, s.History[len(s.History)-1].Text, "can't extend a loan offer")
}

func TestAssessStaleResultIsDropped(t *testing.T) {
	store := memory.NewSessionStore(0, testLogger())
	bureau := &scriptedBureau{assessment: approvedAssessment()}
	w := newTestWorker(store, bureau, &capturingPublisher{})
	seedUnderwritingSession(t, store, "sess-stale")

	// The conversation moved past underwriting while the check was in flight.
	_, err := store.MutateExisting(context.Background(), "sess-stale", func(s *model.Session) error {
		if terr := s.TransitionTo(valueobject.StateDocumentGeneration, testNow); terr != nil {
			return terr
		}
		s.DrainEvents()
		return nil
	})
	require.NoError(t, err)

	_, err = w.assess(context.Background(), "sess-stale")
	require.ErrorIs(t, err, errStaleResult)

	s, err := store.Get(context.Background(), "sess-stale")
	require.NoError(t, err)
	assert.Nil(t, s.Context.Assessment)
	assert.Empty(t, s.History)
}

func TestAssessMissingSession(t *testing.T) {
	store := memory.NewSessionStore(0, testLogger())
	w := newTestWorker(store, &scriptedBureau{assessment: approvedAssessment()}, &capturingPublisher{})

	_, err := w.assess(context.Background(), "gone")
	require.ErrorIs(t, err, port.ErrSessionNotFound)
}

func TestProcessBureauFailureEscalates(t *testing.T) {
	store := memory.NewSessionStore(0, testLogger())
	bureau := &scriptedBureau{err: errors.New("bureau timeout")}
	w := newTestWorker(store, bureau, &capturingPublisher{})
	seedUnderwritingSession(t, store, "sess-fail")

	w.process(context.Background(), job{sessionID: "sess-fail", enqueuedAt: testNow})

	s, err := store.Get(context.Background(), "sess-fail")
	require.NoError(t, err)
	assert.True(t, s.Context.EscalatedToAgent)
	require.NotEmpty(t, s.History)
	assert.Contains(t, s.History[len(s.History)-1].Text, "manual review")
}

func TestEnqueueReportsFullQueue(t *testing.T) {
	store := memory.NewSessionStore(0, testLogger())
	w := NewWorker(store, &scriptedBureau{}, emptyCatalog{}, nil, Config{Workers: 1, QueueSize: 1}, testLogger())

	require.NoError(t, w.Enqueue("first"))
	require.ErrorIs(t, w.Enqueue("second"), ErrQueueFull)
}

func TestWorkerProcessesEnqueuedJobs(t *testing.T) {
	store := memory.NewSessionStore(0, testLogger())
	bureau := &scriptedBureau{assessment: approvedAssessment()}
	w := newTestWorker(store, bureau, &capturingPublisher{})
	seedUnderwritingSession(t, store, "sess-async")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	require.NoError(t, w.Enqueue("sess-async"))

	require.Eventually(t, func() bool {
		s, err := store.Get(context.Background(), "sess-async")
		return err == nil && s.Context.Assessment != nil
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	w.Wait()
	assert.Equal(t, 1, bureau.calls)
}
