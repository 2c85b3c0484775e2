package valueobject

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// ConversationState – immutable value object
// ---------------------------------------------------------------------------

// ConversationState represents the stage a loan origination conversation is in.
type ConversationState struct {
	value string
}

const (
	stateInitial                = "INITIAL"
	stateCustomerIdentification = "CUSTOMER_IDENTIFICATION"
	stateProductInquiry         = "PRODUCT_INQUIRY"
	stateLoanApplication        = "LOAN_APPLICATION"
	stateVerification           = "VERIFICATION"
	stateUnderwriting           = "UNDERWRITING"
	stateDocumentGeneration     = "DOCUMENT_GENERATION"
	stateCompleted              = "COMPLETED"
)

var (
	StateInitial                = ConversationState{value: stateInitial}
	StateCustomerIdentification = ConversationState{value: stateCustomerIdentification}
	StateProductInquiry         = ConversationState{value: stateProductInquiry}
	StateLoanApplication        = ConversationState{value: stateLoanApplication}
	StateVerification           = ConversationState{value: stateVerification}
	StateUnderwriting           = ConversationState{value: stateUnderwriting}
	StateDocumentGeneration     = ConversationState{value: stateDocumentGeneration}
	StateCompleted              = ConversationState{value: stateCompleted}
)

var validConversationStates = map[string]ConversationState{
	stateInitial:                StateInitial,
	stateCustomerIdentification: StateCustomerIdentification,
	stateProductInquiry:         StateProductInquiry,
	stateLoanApplication:        StateLoanApplication,
	stateVerification:           StateVerification,
	stateUnderwriting:           StateUnderwriting,
	stateDocumentGeneration:     StateDocumentGeneration,
	stateCompleted:              StateCompleted,
}

// allowedTransitions encodes the forward edges of the origination pipeline
// plus the single backward edge used to start a follow-up loan after
// completion. A reset to INITIAL is always permitted (see CanTransitionTo).
var allowedTransitions = map[string][]string{
	stateInitial:                {stateCustomerIdentification},
	stateCustomerIdentification: {stateProductInquiry},
	stateProductInquiry:         {stateLoanApplication},
	stateLoanApplication:        {stateVerification},
	stateVerification:           {stateUnderwriting},
	stateUnderwriting:           {stateDocumentGeneration},
	stateDocumentGeneration:     {stateCompleted},
	stateCompleted:              {stateProductInquiry},
}

// NewConversationState creates a ConversationState from a raw string.
func NewConversationState(s string) (ConversationState, error) {
	v, ok := validConversationStates[s]
	if !ok {
		return ConversationState{}, fmt.Errorf("invalid conversation state: %q", s)
	}
	return v, nil
}

// String returns the string representation of the state.
func (s ConversationState) String() string { return s.value }

// IsZero returns true if the state has not been initialised.
func (s ConversationState) IsZero() bool { return s.value == "" }

// Equal returns true when both states carry the same value.
func (s ConversationState) Equal(other ConversationState) bool { return s.value == other.value }

// CanTransitionTo reports whether moving from s to target is a legal stage
// transition. Any state may reset to INITIAL.
func (s ConversationState) CanTransitionTo(target ConversationState) bool {
	if target.Equal(StateInitial) {
		return true
	}
	for _, next := range allowedTransitions[s.value] {
		if next == target.value {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the conversation has reached its final stage.
func (s ConversationState) IsTerminal() bool { return s.value == stateCompleted }

// ---------------------------------------------------------------------------
// Sentinel errors
// ---------------------------------------------------------------------------

var (
	ErrInvalidStateTransition = errors.New("invalid conversation state transition")
)
