package weather

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu    sync.Mutex
	docs  map[Kind][]byte
	err   error
	calls int
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Fetch(_ context.Context, kind Kind) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	doc, ok := f.docs[kind]
	if !ok {
		return nil, errors.New("not found")
	}
	return doc, nil
}

type mapStore struct {
	mu   sync.Mutex
	docs map[Kind]CachedDocument
}

func newMapStore() *mapStore {
	return &mapStore{docs: make(map[Kind]CachedDocument)}
}

func (m *mapStore) SaveDocument(doc CachedDocument) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.Kind] = doc
}

func (m *mapStore) GetLatest(kind Kind) (CachedDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[kind]
	if !ok {
		return CachedDocument{}, errors.New("not cached")
	}
	return doc, nil
}

func newTestService(t *testing.T, src *fakeSource) (*Service, *mapStore) {
	t.Helper()
	st := newMapStore()
	svc := NewService(st, src, DefaultFields(), time.Hour)
	svc.now = func() time.Time { return time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC) }
	return svc, st
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("")
	require.NoError(t, err)
	assert.Equal(t, KindForecast, k)

	k, err = ParseKind("observation")
	require.NoError(t, err)
	assert.Equal(t, KindObservation, k)

	_, err = ParseKind("bogus")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestEnvelopePayload(t *testing.T) {
	body, err := Succeeded([]byte(`{"a":1}`)).Payload()
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(body))

	_, err = Failed("quota exceeded").Payload()
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Contains(t, err.Error(), "quota exceeded")

	env, err := DecodeEnvelope([]byte(`{"error":"Unknown type"}`))
	require.NoError(t, err)
	_, err = env.Payload()
	assert.ErrorIs(t, err, ErrUpstream)

	_, err = DecodeEnvelope([]byte(`<html>`))
	assert.Error(t, err)
}

func TestServiceDataset(t *testing.T) {
	fixture, err := os.ReadFile("testdata/forecast.json")
	require.NoError(t, err)

	src := &fakeSource{docs: map[Kind][]byte{KindForecast: fixture}}
	svc, _ := newTestService(t, src)

	ds, err := svc.Dataset(context.Background(), KindForecast)
	require.NoError(t, err)
	assert.Equal(t, 5, ds.Len())

	// The second call is served from the cache.
	_, err = svc.Dataset(context.Background(), KindForecast)
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls)
}

func TestServiceDatasetUpstreamFailure(t *testing.T) {
	src := &fakeSource{err: errors.New("connection refused")}
	svc, _ := newTestService(t, src)

	ds, err := svc.Dataset(context.Background(), KindForecast)
	assert.Nil(t, ds)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestServiceDatasetMalformed(t *testing.T) {
	src := &fakeSource{docs: map[Kind][]byte{KindForecast: []byte(`{"SiteRep":{"Wx":{"Param":[{"name":"T","units":"C"}]},
		"DV":{"Location":{"Period":[{"value":"2024-01-15Z","Rep":[{"$":"x","T":"1"}]}]}}}}`)}}
	svc, _ := newTestService(t, src)

	_, err := svc.Dataset(context.Background(), KindForecast)
	assert.ErrorIs(t, err, ErrMalformedDocument)
}

func TestServiceServesStaleOnFailedRefetch(t *testing.T) {
	src := &fakeSource{err: errors.New("timeout")}
	svc, st := newTestService(t, src)

	st.SaveDocument(CachedDocument{
		Kind:      KindForecast,
		FetchedAt: svc.now().Add(-2 * time.Hour),
		Body:      []byte(`{"old":true}`),
	})

	body, err := svc.Document(context.Background(), KindForecast)
	require.NoError(t, err)
	assert.Equal(t, `{"old":true}`, string(body))
	assert.Equal(t, 1, src.calls)

	// A failed refetch never replaces the cached copy.
	cached, err := st.GetLatest(KindForecast)
	require.NoError(t, err)
	assert.Equal(t, `{"old":true}`, string(cached.Body))
}

func TestServiceBackend(t *testing.T) {
	src := &fakeSource{docs: map[Kind][]byte{KindNarrative: []byte(`{"RegionalFcst":{}}`)}}
	svc, _ := newTestService(t, src)

	env := svc.Backend(context.Background(), Kind("sideways"))
	assert.Equal(t, "Unknown type", env.Error)
	assert.Empty(t, env.Success)

	env = svc.Backend(context.Background(), KindNarrative)
	assert.Empty(t, env.Error)
	assert.JSONEq(t, `{"RegionalFcst":{}}`, string(env.Success))

	env = svc.Backend(context.Background(), KindObservation)
	assert.NotEmpty(t, env.Error)
}

func TestServiceDatasetRejectsNarrative(t *testing.T) {
	svc, _ := newTestService(t, &fakeSource{})
	_, err := svc.Dataset(context.Background(), KindNarrative)
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestServiceWithoutSource(t *testing.T) {
	svc := NewService(newMapStore(), nil, DefaultFields(), time.Hour)
	_, err := svc.FetchAndStore(context.Background(), KindForecast)
	assert.Error(t, err)
}

func TestServiceSetFields(t *testing.T) {
	fixture, err := os.ReadFile("testdata/forecast.json")
	require.NoError(t, err)

	svc, _ := newTestService(t, &fakeSource{docs: map[Kind][]byte{KindForecast: fixture}})
	svc.SetFields(FieldTable{{Code: "H", Name: "Humidity", Color: "#0000ff", Scale: 1, Parse: true}})

	ds, err := svc.Dataset(context.Background(), KindForecast)
	require.NoError(t, err)
	require.Len(t, ds.Series, 1)
	assert.Equal(t, "H", ds.Series[0].Code())
	assert.Len(t, svc.Fields(), 1)
}
