package services

import (
	"context"

	"github.com/kendall-kelly/agenda-api/models"
	"github.com/kendall-kelly/agenda-api/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// ModeNone is reported when no backend answered
const ModeNone = "none"

// ReadResult is a whole-collection read and the backend that served it
type ReadResult struct {
	Items []models.Appointment
	Mode  string
}

// WriteResult describes a whole-collection write
type WriteResult struct {
	Mode string
	// Confirmed is true when the read-back after the write came from the same backend
	Confirmed bool
}

// Documents is the whole-document persistence the agenda service works on
type Documents interface {
	Read(ctx context.Context) ReadResult
	ReadRaw(ctx context.Context) string
	Write(ctx context.Context, items []models.Appointment) (WriteResult, error)
	Backends() []string
}

// DocumentStore reads and writes the agenda collection as one JSON document
// through an ordered chain of backends. Reads fall through the chain, writes
// always target the first backend.
type DocumentStore struct {
	backends []BlobStore
	key      string
}

// NewDocumentStore builds the chain in the given order, skipping nil backends
func NewDocumentStore(backends ...BlobStore) *DocumentStore {
	chain := make([]BlobStore, 0, len(backends))
	for _, b := range backends {
		if b != nil {
			chain = append(chain, b)
		}
	}
	return &DocumentStore{backends: chain, key: DocumentKey}
}

// Backends returns the backend names in selection order
func (s *DocumentStore) Backends() []string {
	names := make([]string, len(s.backends))
	for i, b := range s.backends {
		names[i] = b.Name()
	}
	return names
}

// Read returns the collection from the first backend that answers. Backend
// failures are logged and degrade to an empty collection.
func (s *DocumentStore) Read(ctx context.Context) ReadResult {
	raw, mode := s.readFirst(ctx)
	return ReadResult{Items: Coerce(raw), Mode: mode}
}

// ReadRaw returns the stored text as-is, for diagnostics
func (s *DocumentStore) ReadRaw(ctx context.Context) string {
	raw, _ := s.readFirst(ctx)
	return string(raw)
}

func (s *DocumentStore) readFirst(ctx context.Context) ([]byte, string) {
	mode := ModeNone
	for _, backend := range s.backends {
		raw, err := backend.Get(ctx, s.key)
		if err != nil {
			logging.From(ctx).Warn("agenda read failed, trying next backend",
				"backend", backend.Name(), "error", err)
			mode = backend.Name() + "-error"
			continue
		}
		return raw, backend.Name()
	}
	return nil, mode
}

// Write replaces the whole collection on the first backend. The read-back that
// follows is informational only and never turns a write into a failure.
func (s *DocumentStore) Write(ctx context.Context, items []models.Appointment) (WriteResult, error) {
	if len(s.backends) == 0 {
		return WriteResult{Mode: ModeNone}, models.ErrNoStorageAvailable
	}

	body, err := Encode(items)
	if err != nil {
		return WriteResult{Mode: ModeNone}, goerr.Wrap(err, "failed to encode agenda")
	}

	primary := s.backends[0]
	if err := primary.Set(ctx, s.key, body, DocumentContentType); err != nil {
		return WriteResult{Mode: primary.Name() + "-error"}, goerr.Wrap(err, "failed to write agenda",
			goerr.Value("backend", primary.Name()), goerr.Value("count", len(items)))
	}

	after := s.Read(ctx)
	result := WriteResult{Mode: primary.Name(), Confirmed: after.Mode == primary.Name()}
	logging.From(ctx).Debug("agenda written",
		"backend", primary.Name(), "count", len(items), "confirmed", result.Confirmed)
	return result, nil
}
