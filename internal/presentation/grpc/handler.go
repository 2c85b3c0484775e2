package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bibbank/origination/internal/application/dto"
	"github.com/bibbank/origination/internal/application/usecase"
	"github.com/bibbank/origination/internal/domain/port"
)

// ConversationHandler exposes the conversation engine over gRPC.
type ConversationHandler struct {
	UnimplementedConversationServiceServer

	submit  *usecase.SubmitMessageUseCase
	history *usecase.GetHistoryUseCase
	reset   *usecase.ResetSessionUseCase
}

// NewConversationHandler creates a new handler with all use-case dependencies.
func NewConversationHandler(
	submit *usecase.SubmitMessageUseCase,
	history *usecase.GetHistoryUseCase,
	reset *usecase.ResetSessionUseCase,
) *ConversationHandler {
	return &ConversationHandler{
		submit:  submit,
		history: history,
		reset:   reset,
	}
}

// SubmitMessage processes one customer message.
func (h *ConversationHandler) SubmitMessage(ctx context.Context, req *SubmitMessageRequest) (*SubmitMessageResponse, error) {
	reply, err := h.submit.Execute(ctx, dto.SubmitMessageRequest{
		SessionID:        req.SessionID,
		Text:             req.Text,
		UploadedFileName: req.UploadedFileName,
		UploadedFileType: req.UploadedFileType,
	})
	if err != nil {
		return nil, mapError(err)
	}

	resp := &SubmitMessageResponse{
		SessionID:   reply.SessionID,
		Text:        reply.Text,
		Stage:       reply.Stage,
		Suggestions: reply.Suggestions,
		Processing:  reply.Processing,
		Escalated:   reply.Escalated,
	}
	if reply.Documents != nil {
		resp.Documents = &DocumentPackage{
			LoanID: reply.Documents.LoanID,
			SanctionLetter: DocumentLink{
				ID:       reply.Documents.SanctionLetter.ID,
				Kind:     reply.Documents.SanctionLetter.Kind,
				Location: reply.Documents.SanctionLetter.Location,
			},
			RepaymentSchedule: DocumentLink{
				ID:       reply.Documents.RepaymentSchedule.ID,
				Kind:     reply.Documents.RepaymentSchedule.Kind,
				Location: reply.Documents.RepaymentSchedule.Location,
			},
			DisbursementDate: reply.Documents.DisbursementDate,
			FirstEMIDue:      reply.Documents.FirstEMIDue,
		}
	}
	return resp, nil
}

// GetHistory returns a session transcript.
func (h *ConversationHandler) GetHistory(ctx context.Context, req *GetHistoryRequest) (*GetHistoryResponse, error) {
	if req.SessionID == "" {
		return nil, status.Error(codes.InvalidArgument, "session_id is required")
	}

	history, err := h.history.Execute(ctx, req.SessionID)
	if err != nil {
		return nil, mapError(err)
	}

	turns := make([]Turn, 0, len(history.Turns))
	for _, t := range history.Turns {
		turns = append(turns, Turn{
			ID:        t.ID,
			Sender:    t.Sender,
			Text:      t.Text,
			Stage:     t.Stage,
			Timestamp: t.Timestamp,
		})
	}

	return &GetHistoryResponse{
		SessionID: history.SessionID,
		Stage:     history.Stage,
		Turns:     turns,
	}, nil
}

// ResetSession discards a session.
func (h *ConversationHandler) ResetSession(ctx context.Context, req *ResetSessionRequest) (*ResetSessionResponse, error) {
	if req.SessionID == "" {
		return nil, status.Error(codes.InvalidArgument, "session_id is required")
	}

	result, err := h.reset.Execute(ctx, req.SessionID)
	if err != nil {
		return nil, mapError(err)
	}

	return &ResetSessionResponse{SessionID: result.SessionID, Reset: result.Reset}, nil
}

func mapError(err error) error {
	switch {
	case errors.Is(err, port.ErrSessionNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, usecase.ErrEmptyMessage):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
