package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// DefaultStato is the status assigned to appointments created without one
const DefaultStato = "Nuovo"

// Appointment represents a single entry of the agenda collection.
// Every field is kept as a string because the stored document is shared with
// clients that never agreed on a typed schema.
type Appointment struct {
	ID         string `json:"id"`
	Cliente    string `json:"cliente"`
	StartAt    string `json:"start_at"`
	AgenteID   string `json:"agente_id"` // lower-cased, used for ownership checks
	AgenteName string `json:"agente_name"`
	Luogo      string `json:"luogo"`
	Stato      string `json:"stato"`
	Feedback   string `json:"feedback"`
	Note       string `json:"note"`
	CreatoDa   string `json:"creato_da"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`

	// Extra keeps keys written by older clients so a rewrite does not drop them
	Extra map[string]any `json:"-"`
}

// appointmentFields has the same layout as Appointment without its JSON methods
type appointmentFields Appointment

var knownFields = map[string]func(a *Appointment) *string{
	"id":          func(a *Appointment) *string { return &a.ID },
	"cliente":     func(a *Appointment) *string { return &a.Cliente },
	"start_at":    func(a *Appointment) *string { return &a.StartAt },
	"agente_id":   func(a *Appointment) *string { return &a.AgenteID },
	"agente_name": func(a *Appointment) *string { return &a.AgenteName },
	"luogo":       func(a *Appointment) *string { return &a.Luogo },
	"stato":       func(a *Appointment) *string { return &a.Stato },
	"feedback":    func(a *Appointment) *string { return &a.Feedback },
	"note":        func(a *Appointment) *string { return &a.Note },
	"creato_da":   func(a *Appointment) *string { return &a.CreatoDa },
	"created_at":  func(a *Appointment) *string { return &a.CreatedAt },
	"updated_at":  func(a *Appointment) *string { return &a.UpdatedAt },
}

// UnmarshalJSON decodes a stored record leniently: non-string values of known
// fields are stringified and unknown keys are collected into Extra.
func (a *Appointment) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	*a = Appointment{}
	for key, value := range raw {
		if field, ok := knownFields[key]; ok {
			*field(a) = Stringify(value)
			continue
		}
		if a.Extra == nil {
			a.Extra = make(map[string]any)
		}
		a.Extra[key] = value
	}
	return nil
}

// MarshalJSON writes the known fields in declaration order followed by Extra
func (a Appointment) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(appointmentFields(a))
	if err != nil {
		return nil, err
	}

	extra := make(map[string]any, len(a.Extra))
	for key, value := range a.Extra {
		if _, known := knownFields[key]; !known {
			extra[key] = value
		}
	}
	if len(extra) == 0 {
		return base, nil
	}

	tail, err := json.Marshal(extra)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(base)+len(tail))
	out = append(out, base[:len(base)-1]...)
	out = append(out, ',')
	out = append(out, tail[1:]...)
	return out, nil
}

// Stringify converts a decoded JSON value into the string stored on a record.
// A null becomes the empty string.
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
