package port

import (
	"context"
	"errors"

	"github.com/bibbank/origination/internal/domain/event"
	"github.com/bibbank/origination/internal/domain/model"
)

// ---------------------------------------------------------------------------
// Sentinel errors
// ---------------------------------------------------------------------------

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrCustomerNotFound  = errors.New("customer not found")
	ErrNoOffers          = errors.New("no offers available for customer")
	ErrCreditUnavailable = errors.New("credit data unavailable")
)

// ---------------------------------------------------------------------------
// Driven ports
// ---------------------------------------------------------------------------

// SessionStore owns conversation sessions. Mutations run inside a callback
// under a per-session lock: the callback receives a private copy of the
// session, and the copy replaces the stored session only when the callback
// returns nil. An error discards every change the callback made.
type SessionStore interface {
	// Mutate applies fn to the session with the given ID, creating it in the
	// INITIAL state when absent. Returns the committed session.
	Mutate(ctx context.Context, id string, fn func(*model.Session) error) (*model.Session, error)

	// MutateExisting is Mutate without the create-if-absent behaviour. It
	// returns ErrSessionNotFound for unknown or expired sessions.
	MutateExisting(ctx context.Context, id string, fn func(*model.Session) error) (*model.Session, error)

	// Get returns a read-only snapshot of the session.
	Get(ctx context.Context, id string) (*model.Session, error)

	// Delete removes the session. Deleting an absent session is not an error.
	Delete(ctx context.Context, id string) error
}

// CustomerRegistry resolves customers from the bank's systems of record.
type CustomerRegistry interface {
	// LookupByPhone returns the profile registered under the given phone
	// number, or ErrCustomerNotFound.
	LookupByPhone(ctx context.Context, phone string) (model.CustomerProfile, error)
}

// CreditBureau performs external credit checks.
type CreditBureau interface {
	// CheckCredit fetches the bureau report for the customer and maps it to
	// an assessment with eligibility tiering applied.
	CheckCredit(ctx context.Context, customerID, taxID string) (model.CreditAssessment, error)
}

// OfferCatalog serves the pre-approved offers held against a customer.
type OfferCatalog interface {
	// PreApprovedOffers returns active catalog offers for the customer, or
	// ErrNoOffers when none exist.
	PreApprovedOffers(ctx context.Context, customerID string) ([]model.CatalogOffer, error)
}

// DocumentSink persists generated loan documents.
type DocumentSink interface {
	// Store writes a document payload and returns a reference to it.
	Store(ctx context.Context, kind string, payload any) (model.DocumentReference, error)
}

// EventPublisher pushes domain events to downstream consumers. Publishing is
// best-effort; failures must not fail the conversation turn that produced
// the events.
type EventPublisher interface {
	Publish(ctx context.Context, events ...event.DomainEvent) error
}

// AssessmentQueue accepts credit assessment jobs for background processing.
type AssessmentQueue interface {
	// Enqueue schedules an assessment for the session. It must not block;
	// a full queue returns an error.
	Enqueue(sessionID string) error
}
