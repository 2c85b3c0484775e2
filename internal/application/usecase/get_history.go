package usecase

import (
	"context"

	"github.com/bibbank/origination/internal/application/dto"
	"github.com/bibbank/origination/internal/domain/port"
)

// GetHistoryUseCase returns the transcript of a session.
type GetHistoryUseCase struct {
	store port.SessionStore
}

// NewGetHistoryUseCase creates the use case.
func NewGetHistoryUseCase(store port.SessionStore) *GetHistoryUseCase {
	return &GetHistoryUseCase{store: store}
}

// Execute fetches the session transcript. Unknown sessions return
// port.ErrSessionNotFound.
func (uc *GetHistoryUseCase) Execute(ctx context.Context, sessionID string) (dto.HistoryResponse, error) {
	s, err := uc.store.Get(ctx, sessionID)
	if err != nil {
		return dto.HistoryResponse{}, err
	}

	turns := make([]dto.TurnRecord, 0, len(s.History))
	for _, t := range s.History {
		turns = append(turns, dto.TurnRecord{
			ID:        t.ID,
			Sender:    string(t.Sender),
			Text:      t.Text,
			Stage:     t.Stage.String(),
			Timestamp: t.Timestamp,
		})
	}

	return dto.HistoryResponse{
		SessionID: s.ID,
		Stage:     s.State.String(),
		Turns:     turns,
	}, nil
}
