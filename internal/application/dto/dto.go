package dto

import "time"

// SubmitMessageRequest carries one inbound customer message. SessionID may be
// empty, in which case a new session is started. UploadedFileName is set when
// the channel attached a document to the message.
type SubmitMessageRequest struct {
	SessionID        string `json:"session_id"`
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

// MessageReply is the engine's response to a submitted message.
type MessageReply struct {
	SessionID   string           `json:"session_id"`
	Text        string           `json:"text"`
	Stage       string           `json:"stage"`
	Suggestions []string         `json:"suggestions,omitempty"`
	Processing  bool             `json:"processing,omitempty"`
	Escalated   bool             `json:"escalated,omitempty"`
	Documents   *DocumentPackage `json:"documents,omitempty"`
}

// TurnRecord is one transcript entry.
type TurnRecord struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Stage     string    `json:"stage"`
	Timestamp time.Time `json:"timestamp"`
}

// HistoryResponse is the full transcript of a session.
type HistoryResponse struct {
	SessionID string       `json:"session_id"`
	Stage     string       `json:"stage"`
	Turns     []TurnRecord `json:"turns"`
}

// ResetResponse acknowledges a session reset.
type ResetResponse struct {
	SessionID string `json:"session_id"`
	Reset     bool   `json:"reset"`
}
