package services

import (
	"context"
	"strings"
	"time"

	"github.com/kendall-kelly/agenda-api/models"
	"github.com/kendall-kelly/agenda-api/utils"
	"github.com/kendall-kelly/agenda-api/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// patchableFields can be changed by the assigned agent or an elevated caller
var patchableFields = []string{"stato", "feedback", "start_at"}

// elevatedPatchableFields can only be changed by elevated callers
var elevatedPatchableFields = []string{"note"}

// ListResult is the outcome of a list call
type ListResult struct {
	Items    []models.Appointment
	Total    int
	ReadMode string
}

// AgendaService applies the agenda operations on the whole-document store.
// Every operation reads the full collection, decides, and writes it back.
// Concurrent writers are not coordinated: the last write wins.
type AgendaService struct {
	docs     Documents
	notifier Notifier
	now      func() time.Time
}

// NewAgendaService creates the service. A nil notifier disables notifications.
func NewAgendaService(docs Documents, notifier Notifier) *AgendaService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &AgendaService{
		docs:     docs,
		notifier: notifier,
		now:      time.Now,
	}
}

// SetClock replaces the time source (primarily for testing)
func (s *AgendaService) SetClock(now func() time.Time) {
	s.now = now
}

// Backends returns the configured storage backends in selection order
func (s *AgendaService) Backends() []string {
	return s.docs.Backends()
}

// List returns the appointments visible to identity. With all set the
// visibility filter is skipped for every caller.
func (s *AgendaService) List(ctx context.Context, identity models.Identity, all bool) ListResult {
	read := s.docs.Read(ctx)
	items := read.Items
	if !all {
		items = FilterForIdentity(items, identity)
	}
	return ListResult{Items: items, Total: len(read.Items), ReadMode: read.Mode}
}

// Preview returns up to limit bytes of the raw stored document
func (s *AgendaService) Preview(ctx context.Context, limit int) string {
	raw := s.docs.ReadRaw(ctx)
	if len(raw) > limit {
		raw = raw[:limit]
	}
	return raw
}

// Seed resets the collection to empty
func (s *AgendaService) Seed(ctx context.Context) (WriteResult, error) {
	result, err := s.docs.Write(ctx, []models.Appointment{})
	if err != nil {
		return result, goerr.Wrap(err, "failed to seed agenda")
	}
	logging.From(ctx).Info("agenda seeded", "backend", result.Mode)
	return result, nil
}

// Create adds a new appointment. Only elevated callers may create.
func (s *AgendaService) Create(ctx context.Context, identity models.Identity, input map[string]any) (models.Appointment, error) {
	if !identity.Elevated {
		return models.Appointment{}, models.ErrPermissionDenied
	}

	now := s.now()
	ts := utils.Timestamp(now)
	stato := field(input, "stato")
	if stato == "" {
		stato = models.DefaultStato
	}
	rec := models.Appointment{
		ID:         utils.NewAppointmentID(now),
		Cliente:    field(input, "cliente"),
		StartAt:    field(input, "start_at"),
		AgenteID:   strings.ToLower(field(input, "agente_id")),
		AgenteName: field(input, "agente_name"),
		Luogo:      field(input, "luogo"),
		Stato:      stato,
		Feedback:   field(input, "feedback"),
		Note:       field(input, "note"),
		CreatoDa:   identity.Creator(),
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
	if rec.Cliente == "" || rec.StartAt == "" || rec.AgenteID == "" {
		return models.Appointment{}, models.ErrValidation
	}

	items := s.docs.Read(ctx).Items
	for ids := idSet(items); ids[rec.ID]; {
		rec.ID = utils.NewAppointmentID(now)
	}
	items = append(items, rec)

	if _, err := s.docs.Write(ctx, items); err != nil {
		return models.Appointment{}, goerr.Wrap(err, "failed to create appointment")
	}
	logging.From(ctx).Info("appointment created", "id", rec.ID, "agente_id", rec.AgenteID, "creato_da", rec.CreatoDa)

	s.notify(ctx, Event{Kind: EventCreated, Record: rec})
	return rec, nil
}

// Patch updates the allowed fields of an appointment. Agents may patch their
// own appointments, elevated callers any appointment. Fields outside the
// allow-list are ignored.
func (s *AgendaService) Patch(ctx context.Context, identity models.Identity, id string, input map[string]any) (models.Appointment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.Appointment{}, models.ErrMissingID
	}

	items := s.docs.Read(ctx).Items
	idx := indexOf(items, id)
	if idx < 0 {
		return models.Appointment{}, goerr.Wrap(models.ErrNotFound, "appointment not found", goerr.Value("id", id))
	}

	rec := items[idx]
	prev := rec
	if !identity.Elevated && !identity.Owns(rec) {
		return models.Appointment{}, models.ErrPermissionDenied
	}

	allowed := patchableFields
	if identity.Elevated {
		allowed = append(append([]string{}, patchableFields...), elevatedPatchableFields...)
	}
	for _, name := range allowed {
		if _, ok := input[name]; !ok {
			continue
		}
		value := field(input, name)
		switch name {
		case "stato":
			rec.Stato = value
		case "feedback":
			rec.Feedback = value
		case "start_at":
			rec.StartAt = value
		case "note":
			rec.Note = value
		}
	}
	rec.UpdatedAt = utils.Timestamp(s.now())
	items[idx] = rec

	if _, err := s.docs.Write(ctx, items); err != nil {
		return models.Appointment{}, goerr.Wrap(err, "failed to update appointment", goerr.Value("id", id))
	}
	logging.From(ctx).Info("appointment updated", "id", id, "by", identity.Email, "elevated", identity.Elevated)

	s.notify(ctx, Event{Kind: EventUpdated, Record: rec, Previous: &prev})
	return rec, nil
}

// Delete removes an appointment. Only elevated callers may delete; deleting
// an unknown id still rewrites the collection and succeeds.
func (s *AgendaService) Delete(ctx context.Context, identity models.Identity, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.ErrMissingID
	}
	if !identity.Elevated {
		return models.ErrPermissionDenied
	}

	items := s.docs.Read(ctx).Items
	kept := make([]models.Appointment, 0, len(items))
	for _, item := range items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}

	if _, err := s.docs.Write(ctx, kept); err != nil {
		return goerr.Wrap(err, "failed to delete appointment", goerr.Value("id", id))
	}
	logging.From(ctx).Info("appointment deleted", "id", id, "removed", len(items)-len(kept))
	return nil
}

func (s *AgendaService) notify(ctx context.Context, event Event) {
	if err := s.notifier.Notify(ctx, event); err != nil {
		logging.From(ctx).Warn("notification failed", "kind", event.Kind, "id", event.Record.ID, "error", err)
	}
}

// field returns input[name] as a trimmed string
func field(input map[string]any, name string) string {
	return strings.TrimSpace(models.Stringify(input[name]))
}

func indexOf(items []models.Appointment, id string) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func idSet(items []models.Appointment) map[string]bool {
	ids := make(map[string]bool, len(items))
	for _, item := range items {
		ids[item.ID] = true
	}
	return ids
}
