package weather

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// ParseKind maps the backend's `t` parameter to a Kind. Empty means forecast.
func ParseKind(t string) (Kind, error) {
	switch Kind(t) {
	case "":
		return KindForecast, nil
	case KindForecast, KindObservation, KindNarrative:
		return Kind(t), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, t)
	}
}

// Service fetches documents through the cache and turns them into datasets.
type Service struct {
	store  Store
	source Source

	mu     sync.RWMutex
	fields FieldTable

	maxAge time.Duration
	now    func() time.Time
}

// NewService creates a new Service. A cached document older than maxAge is
// refetched on demand; maxAge <= 0 disables caching on read.
func NewService(store Store, source Source, fields FieldTable, maxAge time.Duration) *Service {
	return &Service{
		store:  store,
		source: source,
		fields: fields,
		maxAge: maxAge,
		now:    time.Now,
	}
}

// Fields returns the tracked field table.
func (s *Service) Fields() FieldTable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fields
}

// SetFields swaps the tracked field table used by later extractions.
func (s *Service) SetFields(fields FieldTable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fields = fields
}

// FetchAndStore fetches one document from the source and caches it. A failed
// fetch never overwrites the last good document.
func (s *Service) FetchAndStore(ctx context.Context, kind Kind) ([]byte, error) {
	if s.source == nil {
		log.Printf("ERROR: no source configured to fetch %s", kind)
		return nil, errors.New("no weather source configured")
	}

	body, err := s.source.Fetch(ctx, kind)
	if err != nil {
		log.Printf("source %s fetch failed for %s: %v", s.source.Name(), kind, err)
		return nil, err
	}

	s.store.SaveDocument(CachedDocument{
		Kind:      kind,
		FetchedAt: s.now().UTC(),
		Body:      body,
	})
	return body, nil
}

// Document returns the cached document for kind, refetching it when it is
// missing or stale. If the refetch fails a stale copy is still served.
func (s *Service) Document(ctx context.Context, kind Kind) ([]byte, error) {
	cached, err := s.store.GetLatest(kind)
	if err == nil && s.maxAge > 0 && s.now().Sub(cached.FetchedAt) < s.maxAge {
		return cached.Body, nil
	}

	body, fetchErr := s.FetchAndStore(ctx, kind)
	if fetchErr == nil {
		return body, nil
	}
	if err == nil {
		log.Printf("INFO: serving stale %s fetched at %s", kind, cached.FetchedAt.Format(time.RFC3339))
		return cached.Body, nil
	}
	return nil, fetchErr
}

// Backend wraps the document for kind in a response envelope, the way the
// page's data endpoint reports it.
func (s *Service) Backend(ctx context.Context, kind Kind) Envelope {
	switch kind {
	case KindForecast, KindObservation, KindNarrative:
	default:
		return Failed("Unknown type")
	}

	body, err := s.Document(ctx, kind)
	if err != nil {
		return Failed(err.Error())
	}
	return Succeeded(body)
}

// Dataset runs the extraction pipeline on the document for kind. The
// envelope is unwrapped first, so an upstream failure stops the pipeline
// before any parsing happens.
func (s *Service) Dataset(ctx context.Context, kind Kind) (*Dataset, error) {
	if kind == KindNarrative {
		return nil, fmt.Errorf("%w: %s has no series", ErrUnknownKind, kind)
	}

	payload, err := s.Backend(ctx, kind).Payload()
	if err != nil {
		return nil, err
	}

	doc, err := DecodeDocument(payload)
	if err != nil {
		return nil, err
	}
	return Extract(doc, s.Fields())
}

// Narrative returns the regional text forecast paragraphs.
func (s *Service) Narrative(ctx context.Context) ([]Paragraph, error) {
	payload, err := s.Backend(ctx, KindNarrative).Payload()
	if err != nil {
		return nil, err
	}
	return Narrative(payload)
}
