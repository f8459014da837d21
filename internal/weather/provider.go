package weather

import (
	"context"
	"time"
)

// Source abstracts the upstream that serves raw DataPoint documents.
type Source interface {
	Name() string
	Fetch(ctx context.Context, kind Kind) ([]byte, error)
}

// CachedDocument is a raw upstream document and the time it was fetched.
type CachedDocument struct {
	Kind      Kind      `json:"kind"`
	FetchedAt time.Time `json:"fetchedAt"`
	Body      []byte    `json:"-"`
}

// Store is the contract the in-memory document cache must satisfy.
type Store interface {
	SaveDocument(doc CachedDocument)
	GetLatest(kind Kind) (CachedDocument, error)
}
