package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bibbank/origination/internal/application/dto"
	"github.com/bibbank/origination/internal/application/stage"
	"github.com/bibbank/origination/internal/domain/event"
	"github.com/bibbank/origination/internal/domain/model"
	"github.com/bibbank/origination/internal/domain/port"
	"github.com/bibbank/origination/internal/domain/valueobject"
	"github.com/bibbank/origination/pkg/observability"
)

// ErrEmptyMessage is returned when a submitted message has neither text nor
// an attachment.
var ErrEmptyMessage = errors.New("message is empty")

const fallbackReplyText = "I ran into a problem processing that. " +
	"Nothing has been lost; please send your message again in a moment."

// StageHandlers bundles the per-stage conversation handlers the orchestrator
// dispatches to.
type StageHandlers struct {
	Welcome        stage.Welcome
	Identification stage.Identification
	Sales          stage.Sales
	Verification   stage.Verification
	Underwriting   stage.Underwriting
	Documents      stage.Documents
	Completed      stage.Completed
}

// SubmitMessageUseCase orchestrates one conversation turn: it routes the
// message to the active stage's handler inside the session store's commit
// callback, triggers the background credit assessment on entry to
// underwriting, and publishes the domain events the turn produced.
type SubmitMessageUseCase struct {
	store     port.SessionStore
	publisher port.EventPublisher
	queue     port.AssessmentQueue
	handlers  StageHandlers
	logger    *slog.Logger
	now       func() time.Time
}

// NewSubmitMessageUseCase creates the orchestrator.
func NewSubmitMessageUseCase(
	store port.SessionStore,
	publisher port.EventPublisher,
	queue port.AssessmentQueue,
	handlers StageHandlers,
	logger *slog.Logger,
) *SubmitMessageUseCase {
	return &SubmitMessageUseCase{
		store:     store,
		publisher: publisher,
		queue:     queue,
		handlers:  handlers,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock overrides the use case's clock. Intended for tests.
func (uc *SubmitMessageUseCase) WithClock(now func() time.Time) *SubmitMessageUseCase {
	uc.now = now
	return uc
}

// Execute processes one inbound message and returns the engine's reply.
func (uc *SubmitMessageUseCase) Execute(ctx context.Context, req dto.SubmitMessageRequest) (dto.MessageReply, error) {
	if strings.TrimSpace(req.Text) == "" && req.UploadedFileName == "" {
		return dto.MessageReply{}, ErrEmptyMessage
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	now := uc.now()
	m := stage.Message{Text: req.Text, Received: now}
	if req.UploadedFileName != "" {
		m.Upload = &model.DocumentUpload{
			FileName:   req.UploadedFileName,
			FileType:   req.UploadedFileType,
			UploadedAt: now,
		}
	}

	var (
		reply     stage.Reply
		events    []event.DomainEvent
		fromState string
	)

	committed, err := uc.store.Mutate(ctx, sessionID, func(s *model.Session) error {
		fromState = s.State.String()
		s.AppendCustomerTurn(req.Text, now)

		r, herr := uc.dispatch(ctx, s, m)
		if herr != nil {
			return herr
		}

		uc.maybeStartAssessment(ctx, s, now)

		s.AppendAssistantTurn(r.Text, now)
		reply = r
		events = s.DrainEvents()
		return nil
	})
	if err != nil {
		return uc.degrade(ctx, sessionID, req.Text, fromState, now, err)
	}

	observability.MessagesHandled.WithLabelValues(fromState, "ok").Inc()
	if to := committed.State.String(); to != fromState {
		observability.StageTransitions.WithLabelValues(fromState, to).Inc()
	}

	uc.publish(ctx, events)

	return uc.buildReply(committed, reply), nil
}

// dispatch routes the message to the handler owning the session's current
// stage. A panicking handler is converted into an error so the store discards
// the turn's mutations.
func (uc *SubmitMessageUseCase) dispatch(ctx context.Context, s *model.Session, m stage.Message) (reply stage.Reply, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("stage handler panic: %v", rec)
		}
	}()

	switch {
	case s.State.Equal(valueobject.StateInitial):
		return uc.handlers.Welcome.Handle(ctx, s, m)
	case s.State.Equal(valueobject.StateCustomerIdentification):
		return uc.handlers.Identification.Handle(ctx, s, m)
	case s.State.Equal(valueobject.StateProductInquiry):
		return uc.handlers.Sales.HandleInquiry(ctx, s, m)
	case s.State.Equal(valueobject.StateLoanApplication):
		return uc.handlers.Sales.HandleApplication(ctx, s, m)
	case s.State.Equal(valueobject.StateVerification):
		return uc.handlers.Verification.Handle(ctx, s, m)
	case s.State.Equal(valueobject.StateUnderwriting):
		return uc.handlers.Underwriting.Handle(ctx, s, m)
	case s.State.Equal(valueobject.StateDocumentGeneration):
		return uc.handlers.Documents.Handle(ctx, s, m)
	case s.State.Equal(valueobject.StateCompleted):
		return uc.handlers.Completed.Handle(ctx, s, m)
	default:
		// Unrecognised stage, wipe the conversation rather than wedge it.
		s.ResetToStart(m.Received)
		return stage.Reply{
			Text: "Something went wrong with our conversation, so I've started us over. " +
				"How can I help you today?",
		}, nil
	}
}

// maybeStartAssessment kicks off the background credit assessment the first
// time the session enters underwriting. A full queue leaves the flag unset so
// the next message retries.
func (uc *SubmitMessageUseCase) maybeStartAssessment(ctx context.Context, s *model.Session, now time.Time) {
	if !s.State.Equal(valueobject.StateUnderwriting) || s.Context.AssessmentStarted {
		return
	}
	if err := uc.queue.Enqueue(s.ID); err != nil {
		uc.logger.WarnContext(ctx, "assessment enqueue failed",
			slog.String("session_id", s.ID), slog.Any("error", err))
		return
	}
	s.Context.AssessmentStarted = true
	s.Context.AssessmentStartedAt = now
}

// degrade persists the customer turn and a retry reply after a handler
// failure, leaving the stage state untouched.
func (uc *SubmitMessageUseCase) degrade(
	ctx context.Context,
	sessionID, text, fromState string,
	now time.Time,
	cause error,
) (dto.MessageReply, error) {
	uc.logger.ErrorContext(ctx, "conversation turn failed",
		slog.String("session_id", sessionID),
		slog.String("stage", fromState),
		slog.Any("error", cause))
	observability.MessagesHandled.WithLabelValues(fromState, "error").Inc()

	committed, err := uc.store.Mutate(ctx, sessionID, func(s *model.Session) error {
		s.AppendCustomerTurn(text, now)
		s.AppendAssistantTurn(fallbackReplyText, now)
		s.DrainEvents()
		return nil
	})
	if err != nil {
		return dto.MessageReply{}, fmt.Errorf("persist fallback turn: %w", err)
	}

	return dto.MessageReply{
		SessionID:   committed.ID,
		Text:        fallbackReplyText,
		Stage:       committed.State.String(),
		Suggestions: suggestionsFor(committed.State),
	}, nil
}

func (uc *SubmitMessageUseCase) publish(ctx context.Context, events []event.DomainEvent) {
	if uc.publisher == nil || len(events) == 0 {
		return
	}
	if err := uc.publisher.Publish(ctx, events...); err != nil {
		uc.logger.WarnContext(ctx, "event publish failed", slog.Any("error", err))
	}
}

func (uc *SubmitMessageUseCase) buildReply(s *model.Session, r stage.Reply) dto.MessageReply {
	reply := dto.MessageReply{
		SessionID:   s.ID,
		Text:        r.Text,
		Stage:       s.State.String(),
		Suggestions: suggestionsFor(s.State),
		Processing:  r.Processing,
		Escalated:   r.Escalated,
	}

	if docs := s.Context.Documents; docs != nil && s.State.Equal(valueobject.StateCompleted) {
		reply.Documents = &dto.DocumentPackage{
			LoanID: docs.LoanID,
			SanctionLetter: dto.DocumentLink{
				ID: docs.SanctionLetter.ID, Kind: docs.SanctionLetter.Kind, Location: docs.SanctionLetter.Location,
			},
			RepaymentSchedule: dto.DocumentLink{
				ID: docs.RepaymentSchedule.ID, Kind: docs.RepaymentSchedule.Kind, Location: docs.RepaymentSchedule.Location,
			},
			DisbursementDate: docs.DisbursementDate,
			FirstEMIDue:      docs.FirstEMIDue,
		}
	}

	return reply
}

// suggestionsFor returns the quick-reply chips for the session's stage.
func suggestionsFor(state valueobject.ConversationState) []string {
	switch {
	case state.Equal(valueobject.StateInitial):
		return []string{"I need a loan", "Tell me about personal loans"}
	case state.Equal(valueobject.StateCustomerIdentification):
		return []string{"Share my phone number"}
	case state.Equal(valueobject.StateProductInquiry):
		return []string{"I need 5 lakh", "What's the interest rate?", "Am I eligible?"}
	case state.Equal(valueobject.StateLoanApplication):
		return []string{"Yes, proceed", "Change the amount", "Not now"}
	case state.Equal(valueobject.StateVerification):
		return []string{"My details are correct", "Share my income"}
	case state.Equal(valueobject.StateUnderwriting):
		return []string{"Check status", "I accept the offer", "Change the terms"}
	case state.Equal(valueobject.StateDocumentGeneration):
		return []string{"Show my documents"}
	case state.Equal(valueobject.StateCompleted):
		return []string{"Download documents", "When is disbursement?", "New loan"}
	default:
		return nil
	}
}
