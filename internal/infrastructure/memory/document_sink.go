package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bibbank/origination/internal/domain/model"
)

// DocumentSink stores generated documents in memory as JSON payloads.
type DocumentSink struct {
	mu        sync.RWMutex
	documents map[string][]byte
	now       func() time.Time
}

// NewDocumentSink creates an empty sink.
func NewDocumentSink() *DocumentSink {
	return &DocumentSink{
		documents: make(map[string][]byte),
		now:       time.Now,
	}
}

// Store serialises the payload and keeps it under a fresh document ID.
func (ds *DocumentSink) Store(_ context.Context, kind string, payload any) (model.DocumentReference, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return model.DocumentReference{}, fmt.Errorf("marshal %s document: %w", kind, err)
	}

	id := uuid.New().String()
	ds.mu.Lock()
	ds.documents[id] = data
	ds.mu.Unlock()

	return model.DocumentReference{
		ID:       id,
		Kind:     kind,
		Location: "memory://documents/" + id,
		IssuedAt: ds.now(),
	}, nil
}

// Fetch returns the raw payload of a stored document.
func (ds *DocumentSink) Fetch(_ context.Context, id string) ([]byte, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	data, ok := ds.documents[id]
	return data, ok
}
