// Package stage contains the per-stage conversation handlers. Each handler
// owns one conversation state: it classifies the inbound message against its
// stage's intent set, mutates the session, and produces the reply. Handlers
// run inside the session store's commit callback, so partial mutations are
// discarded whenever a handler returns an error.
package stage

import (
	"time"

	"github.com/bibbank/origination/internal/domain/model"
)

// Message is the normalised inbound unit a handler processes.
type Message struct {
	Text     string
	Upload   *model.DocumentUpload
	Received time.Time
}

// Reply is a handler's response for the current turn.
type Reply struct {
	Text string

	// Processing indicates a background task is running and the customer
	// should check back shortly.
	Processing bool

	// Escalated indicates the conversation was handed to a human agent.
	Escalated bool
}

// Attempt caps before a stalled stage escalates to a human agent.
const (
	maxIdentificationAttempts = 3
	maxIncomeAttempts         = 3
)
