// Package assessment runs credit assessments out of band. The conversation
// turn that enters underwriting enqueues a job; a worker fetches the bureau
// report, prices the risk-adjusted final offer, and merges the result back
// into the session through the same store that serialises foreground turns.
package assessment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bibbank/origination/internal/domain/event"
	"github.com/bibbank/origination/internal/domain/model"
	"github.com/bibbank/origination/internal/domain/port"
	"github.com/bibbank/origination/internal/domain/service"
	"github.com/bibbank/origination/internal/domain/valueobject"
	"github.com/bibbank/origination/pkg/observability"
)

// ErrQueueFull is returned by Enqueue when the job buffer is saturated.
var ErrQueueFull = errors.New("assessment queue full")

// errStaleResult marks a completed assessment whose session has since moved
// on; the result is dropped without touching the session.
var errStaleResult = errors.New("assessment result is stale")

type job struct {
	sessionID  string
	enqueuedAt time.Time
}

// Config tunes the worker pool.
type Config struct {
	// Workers is the number of concurrent assessment goroutines.
	Workers int

	// QueueSize bounds the pending job buffer.
	QueueSize int

	// Delay simulates bureau turnaround before the check runs. Zero runs
	// the check immediately.
	Delay time.Duration
}

// Worker consumes assessment jobs and writes results back into sessions.
type Worker struct {
	store     port.SessionStore
	bureau    port.CreditBureau
	catalog   port.OfferCatalog
	publisher port.EventPublisher
	logger    *slog.Logger
	cfg       Config

	jobs chan job
	wg   sync.WaitGroup
	now  func() time.Time
}

// NewWorker creates an assessment worker pool. Start must be called before
// jobs are processed.
func NewWorker(
	store port.SessionStore,
	bureau port.CreditBureau,
	catalog port.OfferCatalog,
	publisher port.EventPublisher,
	cfg Config,
	logger *slog.Logger,
) *Worker {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	return &Worker{
		store:     store,
		bureau:    bureau,
		catalog:   catalog,
		publisher: publisher,
		logger:    logger,
		cfg:       cfg,
		jobs:      make(chan job, cfg.QueueSize),
		now:       time.Now,
	}
}

// WithClock overrides the worker's clock. Intended for tests.
func (w *Worker) WithClock(now func() time.Time) *Worker {
	w.now = now
	return w
}

// Enqueue schedules an assessment for the session without blocking.
func (w *Worker) Enqueue(sessionID string) error {
	select {
	case w.jobs <- job{sessionID: sessionID, enqueuedAt: w.now()}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Start launches the worker goroutines. They drain until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	for i := 0; i < w.cfg.Workers; i++ {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case j := <-w.jobs:
					w.process(ctx, j)
				}
			}
		}()
	}
}

// Wait blocks until every worker goroutine has stopped.
func (w *Worker) Wait() {
	w.wg.Wait()
}

func (w *Worker) process(ctx context.Context, j job) {
	if w.cfg.Delay > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(w.cfg.Delay):
		}
	}

	started := w.now()
	result, err := w.assess(ctx, j.sessionID)
	observability.AssessmentDuration.Observe(w.now().Sub(started).Seconds())

	switch {
	case errors.Is(err, port.ErrSessionNotFound), errors.Is(err, errStaleResult):
		observability.AssessmentsCompleted.WithLabelValues("stale").Inc()
		w.logger.InfoContext(ctx, "assessment result discarded",
			slog.String("session_id", j.sessionID), slog.Any("reason", err))
	case err != nil:
		observability.AssessmentsCompleted.WithLabelValues("failed").Inc()
		w.logger.ErrorContext(ctx, "assessment failed",
			slog.String("session_id", j.sessionID), slog.Any("error", err))
		w.recordFailure(ctx, j.sessionID)
	case result.approved:
		observability.AssessmentsCompleted.WithLabelValues("approved").Inc()
	default:
		observability.AssessmentsCompleted.WithLabelValues("rejected").Inc()
	}
}

type outcome struct {
	approved bool
}

// assess runs the bureau check and merges the result into the session. The
// merge re-validates that the session still exists and is still in
// underwriting, so results landing after a reset or restart are dropped.
func (w *Worker) assess(ctx context.Context, sessionID string) (outcome, error) {
	snapshot, err := w.store.Get(ctx, sessionID)
	if err != nil {
		return outcome{}, err
	}
	if snapshot.Profile == nil {
		return outcome{}, fmt.Errorf("session %s has no identified customer", sessionID)
	}
	profile := *snapshot.Profile

	assessment, err := w.bureau.CheckCredit(ctx, profile.ID, profile.PAN)
	if err != nil {
		return outcome{}, fmt.Errorf("credit check: %w", err)
	}

	var finalOffer *model.LoanOffer
	var offerErr error
	if assessment.Approved() {
		finalOffer, offerErr = w.priceFinalOffer(ctx, snapshot, assessment)
		if offerErr != nil {
			return outcome{}, offerErr
		}
	}

	now := w.now()
	var events []event.DomainEvent
	_, err = w.store.MutateExisting(ctx, sessionID, func(s *model.Session) error {
		if !s.State.Equal(valueobject.StateUnderwriting) {
			return errStaleResult
		}

		a := assessment
		s.Context.Assessment = &a
		s.Context.FinalOffer = finalOffer
		s.Record(event.NewAssessmentCompleted(s.ID, a.CustomerID, a.Score, a.Eligibility, a.RiskTier, now))
		s.AppendAssistantTurn(w.resultText(assessment, finalOffer), now)
		events = s.DrainEvents()
		return nil
	})
	if err != nil {
		return outcome{}, err
	}

	if w.publisher != nil && len(events) > 0 {
		if perr := w.publisher.Publish(ctx, events...); perr != nil {
			w.logger.WarnContext(ctx, "assessment event publish failed", slog.Any("error", perr))
		}
	}

	return outcome{approved: finalOffer != nil}, nil
}

func (w *Worker) priceFinalOffer(
	ctx context.Context,
	snapshot *model.Session,
	assessment model.CreditAssessment,
) (*model.LoanOffer, error) {
	requested := snapshot.Context.RequestedAmount
	tenure := snapshot.Context.TenureMonths
	if tenure == 0 {
		tenure = 36
	}

	catalog, err := w.catalogOffer(ctx, snapshot, assessment)
	if err != nil {
		return nil, err
	}

	offer, err := service.BuildFinalOffer(catalog, assessment, requested, tenure, w.now())
	if err != nil {
		return nil, fmt.Errorf("price final offer: %w", err)
	}
	return &offer, nil
}

// catalogOffer reuses the ceiling selected during sales; sessions that went
// through the no-catalog path get a synthetic ceiling from the assessment.
func (w *Worker) catalogOffer(
	ctx context.Context,
	snapshot *model.Session,
	assessment model.CreditAssessment,
) (model.CatalogOffer, error) {
	if selected := snapshot.Context.SelectedOffer; selected != nil {
		return model.CatalogOffer{
			OfferID:          selected.OfferID,
			ProductType:      selected.ProductType,
			MaxAmount:        selected.Amount,
			InterestRateBps:  selected.InterestRateBps,
			ProcessingFeeBps: selected.Terms.ProcessingFeeBps,
			Status:           model.OfferStatusActive,
		}, nil
	}

	offers, err := w.catalog.PreApprovedOffers(ctx, snapshot.Profile.ID)
	if err == nil {
		if best, selErr := service.SelectCatalogOffer(offers); selErr == nil {
			return best, nil
		}
	} else if !errors.Is(err, port.ErrNoOffers) {
		return model.CatalogOffer{}, fmt.Errorf("offer catalog: %w", err)
	}

	return model.CatalogOffer{
		OfferID:         "ASSESSED-" + snapshot.Profile.ID,
		ProductType:     model.ProductPersonalLoan,
		MaxAmount:       assessment.MaxEligibleAmount,
		InterestRateBps: assessment.BaseRateBps,
		Status:          model.OfferStatusActive,
	}, nil
}

func (w *Worker) resultText(a model.CreditAssessment, offer *model.LoanOffer) string {
	if offer == nil {
		return fmt.Sprintf("I've completed your credit assessment. "+
			"Unfortunately, with a score of %d we can't extend a loan offer at this time. "+
			"You're welcome to re-apply after six months, or I can connect you with an agent "+
			"to explore secured options.", a.Score)
	}
	return fmt.Sprintf("Great news! Your credit assessment is complete. "+
		"Your score of %d qualifies you for ₹%s over %d months at %.2f%% per annum, "+
		"with an EMI of ₹%s. Would you like to accept this offer?",
		a.Score, offer.Amount.Round(2), offer.TenureMonths,
		float64(offer.InterestRateBps)/100.0, offer.EMI.Round(2))
}

// recordFailure leaves a manual-review note on the session so the customer
// is not left waiting on an assessment that will never land.
func (w *Worker) recordFailure(ctx context.Context, sessionID string) {
	now := w.now()
	_, err := w.store.MutateExisting(ctx, sessionID, func(s *model.Session) error {
		if !s.State.Equal(valueobject.StateUnderwriting) {
			return errStaleResult
		}
		s.Context.EscalatedToAgent = true
		s.AppendAssistantTurn("I wasn't able to complete your credit assessment automatically. "+
			"I've flagged your application for manual review; one of our agents will reach out shortly.", now)
		s.DrainEvents()
		return nil
	})
	if err != nil && !errors.Is(err, errStaleResult) && !errors.Is(err, port.ErrSessionNotFound) {
		w.logger.ErrorContext(ctx, "failed to record assessment failure",
			slog.String("session_id", sessionID), slog.Any("error", err))
	}
}
