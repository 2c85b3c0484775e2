// Package postgres persists generated loan documents durably.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bibbank/origination/internal/domain/model"
)

// ErrDocumentNotFound is returned when no document exists under the ID.
var ErrDocumentNotFound = errors.New("document not found")

// DocumentStore writes loan documents to the documents table.
type DocumentStore struct {
	pool *pgxpool.Pool
}

// NewDocumentStore creates a store over the given pool.
func NewDocumentStore(pool *pgxpool.Pool) *DocumentStore {
	return &DocumentStore{pool: pool}
}

// Store serialises the payload and inserts it.
func (st *DocumentStore) Store(ctx context.Context, kind string, payload any) (model.DocumentReference, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return model.DocumentReference{}, fmt.Errorf("marshal %s document: %w", kind, err)
	}

	id := uuid.New().String()
	now := time.Now().UTC()

	_, err = st.pool.Exec(ctx,
		`INSERT INTO documents (id, kind, payload, created_at) VALUES ($1, $2, $3, $4)`,
		id, kind, data, now,
	)
	if err != nil {
		return model.DocumentReference{}, fmt.Errorf("insert %s document: %w", kind, err)
	}

	return model.DocumentReference{
		ID:       id,
		Kind:     kind,
		Location: "postgres://documents/" + id,
		IssuedAt: now,
	}, nil
}

// Fetch returns the raw payload of a stored document.
func (st *DocumentStore) Fetch(ctx context.Context, id string) ([]byte, error) {
	var payload []byte
	err := st.pool.QueryRow(ctx,
		`SELECT payload FROM documents WHERE id = $1`, id,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch document %s: %w", id, err)
	}
	return payload, nil
}
