package grpc

// proto.go defines the gRPC server interface derived from
// origination/v1/conversation.proto. This file serves as a stand-in for
// buf-generated code. Once `buf generate` is run, replace this file with the
// import from github.com/bibbank/origination/api/gen/go/origination/v1.

import (
	"context"
	"time"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// SubmitMessageRequest carries one customer message into the engine.
type SubmitMessageRequest struct {
	SessionID        string `json:"session_id,omitempty"`
	Text             string `json:"text"`
	UploadedFileName string `json:"uploaded_file_name,omitempty"`
	UploadedFileType string `json:"uploaded_file_type,omitempty"`
}

// DocumentLink references a generated loan document.
type DocumentLink struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	Location string `json:"location"`
}

// DocumentPackage summarises the sanction package attached to a reply.
type DocumentPackage struct {
	LoanID            string       `json:"loan_id"`
	SanctionLetter    DocumentLink `json:"sanction_letter"`
	RepaymentSchedule DocumentLink `json:"repayment_schedule"`
	DisbursementDate  time.Time    `json:"disbursement_date"`
	FirstEMIDue       time.Time    `json:"first_emi_due"`
}

// SubmitMessageResponse is the engine's reply for one turn.
type SubmitMessageResponse struct {
	SessionID   string           `json:"session_id"`
	Text        string           `json:"text"`
	Stage       string           `json:"stage"`
	Suggestions []string         `json:"suggestions,omitempty"`
	Processing  bool             `json:"processing,omitempty"`
	Escalated   bool             `json:"escalated,omitempty"`
	Documents   *DocumentPackage `json:"documents,omitempty"`
}

// GetHistoryRequest asks for a session transcript.
type GetHistoryRequest struct {
	SessionID string `json:"session_id"`
}

// Turn is one transcript entry.
type Turn struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Stage     string    `json:"stage"`
	Timestamp time.Time `json:"timestamp"`
}

// GetHistoryResponse is the full transcript of a session.
type GetHistoryResponse struct {
	SessionID string `json:"session_id"`
	Stage     string `json:"stage"`
	Turns     []Turn `json:"turns"`
}

// ResetSessionRequest asks for a session to be discarded.
type ResetSessionRequest struct {
	SessionID string `json:"session_id"`
}

// ResetSessionResponse acknowledges the reset.
type ResetSessionResponse struct {
	SessionID string `json:"session_id"`
	Reset     bool   `json:"reset"`
}

// ConversationServiceServer is the server API for ConversationService.
// It mirrors the proto-generated interface from
// origination.v1.ConversationService.
type ConversationServiceServer interface {
	SubmitMessage(context.Context, *SubmitMessageRequest) (*SubmitMessageResponse, error)
	GetHistory(context.Context, *GetHistoryRequest) (*GetHistoryResponse, error)
	ResetSession(context.Context, *ResetSessionRequest) (*ResetSessionResponse, error)
	mustEmbedUnimplementedConversationServiceServer()
}

// UnimplementedConversationServiceServer provides forward-compatible default implementations.
type UnimplementedConversationServiceServer struct{}

func (UnimplementedConversationServiceServer) SubmitMessage(context.Context, *SubmitMessageRequest) (*SubmitMessageResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SubmitMessage not implemented")
}
func (UnimplementedConversationServiceServer) GetHistory(context.Context, *GetHistoryRequest) (*GetHistoryResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetHistory not implemented")
}
func (UnimplementedConversationServiceServer) ResetSession(context.Context, *ResetSessionRequest) (*ResetSessionResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ResetSession not implemented")
}
func (UnimplementedConversationServiceServer) mustEmbedUnimplementedConversationServiceServer() {}

// RegisterConversationServiceServer registers the ConversationServiceServer with the gRPC server.
func RegisterConversationServiceServer(s *grpclib.Server, srv ConversationServiceServer) {
	s.RegisterService(&_ConversationService_serviceDesc, srv) //nolint:revive // gRPC handler registration
}

//nolint:revive // gRPC handler registration
var _ConversationService_serviceDesc = grpclib.ServiceDesc{
	ServiceName: "origination.v1.ConversationService",
	HandlerType: (*ConversationServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "SubmitMessage", Handler: _ConversationService_SubmitMessage_Handler}, //nolint:revive // gRPC handler registration
		{MethodName: "GetHistory", Handler: _ConversationService_GetHistory_Handler},       //nolint:revive // gRPC handler registration
		{MethodName: "ResetSession", Handler: _ConversationService_ResetSession_Handler},   //nolint:revive // gRPC handler registration
	},
	Streams: []grpclib.StreamDesc{},
}

//nolint:revive,errcheck // gRPC handler registration
func _ConversationService_SubmitMessage_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(SubmitMessageRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ConversationServiceServer).SubmitMessage(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/origination.v1.ConversationService/SubmitMessage",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ConversationServiceServer).SubmitMessage(ctx, req.(*SubmitMessageRequest))
	}
	return interceptor(ctx, in, info, handler)
}

//nolint:revive,errcheck // gRPC handler registration
func _ConversationService_GetHistory_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetHistoryRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ConversationServiceServer).GetHistory(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/origination.v1.ConversationService/GetHistory",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ConversationServiceServer).GetHistory(ctx, req.(*GetHistoryRequest))
	}
	return interceptor(ctx, in, info, handler)
}

//nolint:revive,errcheck // gRPC handler registration
func _ConversationService_ResetSession_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(ResetSessionRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ConversationServiceServer).ResetSession(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/origination.v1.ConversationService/ResetSession",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ConversationServiceServer).ResetSession(ctx, req.(*ResetSessionRequest))
	}
	return interceptor(ctx, in, info, handler)
}
