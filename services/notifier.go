package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/kendall-kelly/agenda-api/models"
	"github.com/kendall-kelly/agenda-api/utils/logging"
)

// SiteLabel identifies this CRM in notification messages
const SiteLabel = "mcquadro"

// EventKind is the kind of change a notification reports
type EventKind string

const (
	EventCreated EventKind = "created"
	EventUpdated EventKind = "updated"
)

// Event is a change to one appointment. Previous is only set for updates.
type Event struct {
	Kind     EventKind
	Record   models.Appointment
	Previous *models.Appointment
}

// Notifier delivers change notifications on a best-effort basis
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// NopNotifier drops every event
type NopNotifier struct{}

func (NopNotifier) Notify(ctx context.Context, event Event) error {
	return nil
}

// MessageSender sends a formatted message to a chat
type MessageSender interface {
	SendMessage(ctx context.Context, chatID, text string) error
}

// ChatResolver maps an agent e-mail to a chat id
type ChatResolver interface {
	Lookup(ctx context.Context, email string) string
}

// TelegramNotifier tells agents about their new appointments and the admin
// chat about every change
type TelegramNotifier struct {
	sender      MessageSender
	chats       ChatResolver
	adminChatID string
}

// NewTelegramNotifier creates a notifier. adminChatID may be empty.
func NewTelegramNotifier(sender MessageSender, chats ChatResolver, adminChatID string) *TelegramNotifier {
	return &TelegramNotifier{
		sender:      sender,
		chats:       chats,
		adminChatID: strings.TrimSpace(adminChatID),
	}
}

func (n *TelegramNotifier) Notify(ctx context.Context, event Event) error {
	switch event.Kind {
	case EventCreated:
		return n.notifyCreated(ctx, event.Record)
	case EventUpdated:
		return n.notifyUpdated(ctx, event.Record, event.Previous)
	default:
		return fmt.Errorf("unknown event kind %q", event.Kind)
	}
}

func (n *TelegramNotifier) notifyCreated(ctx context.Context, rec models.Appointment) error {
	msg := fmt.Sprintf("📅 <b>Nuovo appuntamento</b>\n<b>CRM:</b> %s\n%s", SiteLabel, FormatAppointment(rec))

	if chatID := n.chats.Lookup(ctx, rec.AgenteID); chatID != "" {
		return n.sender.SendMessage(ctx, chatID, msg)
	}
	if n.adminChatID != "" {
		logging.From(ctx).Info("no chat id for agent, notifying admin", "agente_id", rec.AgenteID)
		return n.sender.SendMessage(ctx, n.adminChatID, fmt.Sprintf("⚠️ Nessun chat_id per %s\n%s", rec.AgenteID, msg))
	}
	return nil
}

func (n *TelegramNotifier) notifyUpdated(ctx context.Context, rec models.Appointment, prev *models.Appointment) error {
	if n.adminChatID == "" {
		return nil
	}
	if prev == nil {
		prev = &models.Appointment{}
	}

	agent := rec.AgenteName
	if agent == "" {
		agent = rec.AgenteID
	}
	lines := []string{
		fmt.Sprintf("✏️ <b>Appuntamento aggiornato</b> (ID %s)", rec.ID),
		fmt.Sprintf("<b>Agente:</b> %s", agent),
		fmt.Sprintf("<b>Cliente:</b> %s", rec.Cliente),
	}
	lines = append(lines, describeChanges(*prev, rec)...)

	return n.sender.SendMessage(ctx, n.adminChatID, strings.Join(lines, "\n"))
}

// describeChanges lists the patchable fields whose value differs
func describeChanges(prev, rec models.Appointment) []string {
	fields := []struct {
		name     string
		old, new string
	}{
		{"stato", prev.Stato, rec.Stato},
		{"feedback", prev.Feedback, rec.Feedback},
		{"start_at", prev.StartAt, rec.StartAt},
		{"note", prev.Note, rec.Note},
	}

	var changes []string
	for _, f := range fields {
		if f.old != f.new {
			changes = append(changes, fmt.Sprintf("<b>%s</b>: %s → %s", f.name, f.old, f.new))
		}
	}
	return changes
}

// FormatAppointment renders the appointment summary used in notifications
func FormatAppointment(rec models.Appointment) string {
	lines := []string{
		fmt.Sprintf("<b>Cliente:</b> %s", rec.Cliente),
		fmt.Sprintf("<b>Data/Ora:</b> %s", rec.StartAt),
	}
	if rec.Luogo != "" {
		lines = append(lines, fmt.Sprintf("<b>Luogo:</b> %s", rec.Luogo))
	}
	if rec.Note != "" {
		lines = append(lines, fmt.Sprintf("<b>Note:</b> %s", rec.Note))
	}
	return strings.Join(lines, "\n")
}
