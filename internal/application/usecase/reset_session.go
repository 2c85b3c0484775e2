package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/bibbank/origination/internal/application/dto"
	"github.com/bibbank/origination/internal/domain/event"
	"github.com/bibbank/origination/internal/domain/port"
)

// ResetSessionUseCase discards a conversation session entirely.
type ResetSessionUseCase struct {
	store     port.SessionStore
	publisher port.EventPublisher
	logger    *slog.Logger
}

// NewResetSessionUseCase creates the use case.
func NewResetSessionUseCase(store port.SessionStore, publisher port.EventPublisher, logger *slog.Logger) *ResetSessionUseCase {
	return &ResetSessionUseCase{store: store, publisher: publisher, logger: logger}
}

// Execute deletes the session. Resetting an unknown session succeeds, so the
// operation is idempotent.
func (uc *ResetSessionUseCase) Execute(ctx context.Context, sessionID string) (dto.ResetResponse, error) {
	if err := uc.store.Delete(ctx, sessionID); err != nil {
		return dto.ResetResponse{}, err
	}

	if uc.publisher != nil {
		e := event.NewSessionReset(sessionID, time.Now())
		if err := uc.publisher.Publish(ctx, e); err != nil {
			uc.logger.WarnContext(ctx, "session reset event publish failed",
				slog.String("session_id", sessionID), slog.Any("error", err))
		}
	}

	return dto.ResetResponse{SessionID: sessionID, Reset: true}, nil
}
