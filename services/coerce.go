package services

import (
	"bufio"
	"bytes"
	"encoding/json"

	"github.com/kendall-kelly/agenda-api/models"
)

// Shape is the wire shape a stored document was found in
type Shape int

const (
	ShapeUnknown Shape = iota
	ShapeNull
	ShapeArray
	ShapeString
	ShapeItems
	ShapeRecord
	ShapeNDJSON
)

// maxStringNesting bounds how many JSON-string wrappers are unwrapped
const maxStringNesting = 4

func (s Shape) String() string {
	switch s {
	case ShapeNull:
		return "null"
	case ShapeArray:
		return "array"
	case ShapeString:
		return "string"
	case ShapeItems:
		return "items"
	case ShapeRecord:
		return "record"
	case ShapeNDJSON:
		return "ndjson"
	default:
		return "unknown"
	}
}

// recordMarkers are the keys that make a bare object count as one appointment
var recordMarkers = []string{"id", "cliente", "start_at"}

// Classify reports the shape of a stored payload
func Classify(raw []byte) Shape {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return ShapeNull
	}
	if !json.Valid(trimmed) {
		return ShapeNDJSON
	}

	switch trimmed[0] {
	case 'n':
		return ShapeNull
	case '[':
		return ShapeArray
	case '"':
		return ShapeString
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err != nil || len(fields) == 0 {
			return ShapeUnknown
		}
		if items, ok := fields["items"]; ok && isArray(items) {
			return ShapeItems
		}
		for _, marker := range recordMarkers {
			if _, ok := fields[marker]; ok {
				return ShapeRecord
			}
		}
	}
	return ShapeUnknown
}

// Coerce normalizes any stored payload into an ordered list of appointments.
// It never fails: unreadable input yields an empty, non-nil slice.
func Coerce(raw []byte) (items []models.Appointment) {
	defer func() {
		if r := recover(); r != nil {
			items = []models.Appointment{}
		}
	}()
	return coerce(raw, 0)
}

func coerce(raw []byte, depth int) []models.Appointment {
	trimmed := bytes.TrimSpace(raw)

	switch Classify(trimmed) {
	case ShapeArray:
		return fromArray(trimmed)
	case ShapeString:
		return fromString(trimmed, depth)
	case ShapeItems:
		return fromItems(trimmed)
	case ShapeRecord:
		return fromRecord(trimmed)
	case ShapeNDJSON:
		return fromNDJSON(trimmed)
	default:
		return []models.Appointment{}
	}
}

func fromArray(raw []byte) []models.Appointment {
	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		return []models.Appointment{}
	}

	out := make([]models.Appointment, 0, len(elements))
	for _, element := range elements {
		if rec, ok := decodeRecord(element); ok {
			out = append(out, rec)
		}
	}
	return out
}

func fromString(raw []byte, depth int) []models.Appointment {
	if depth >= maxStringNesting {
		return []models.Appointment{}
	}
	var inner string
	if err := json.Unmarshal(raw, &inner); err != nil {
		return []models.Appointment{}
	}
	return coerce([]byte(inner), depth+1)
}

func fromItems(raw []byte) []models.Appointment {
	var wrapper struct {
		Items json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return []models.Appointment{}
	}
	return fromArray(wrapper.Items)
}

func fromRecord(raw []byte) []models.Appointment {
	if rec, ok := decodeRecord(raw); ok {
		return []models.Appointment{rec}
	}
	return []models.Appointment{}
}

// fromNDJSON parses one object per line, skipping lines that do not parse
func fromNDJSON(raw []byte) []models.Appointment {
	out := []models.Appointment{}
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), len(raw)+1)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if rec, ok := decodeRecord(line); ok {
			out = append(out, rec)
		}
	}
	return out
}

func decodeRecord(raw []byte) (models.Appointment, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return models.Appointment{}, false
	}
	var rec models.Appointment
	if err := json.Unmarshal(trimmed, &rec); err != nil {
		return models.Appointment{}, false
	}
	return rec, true
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

// Encode serializes the collection in its persisted form, a JSON array
func Encode(items []models.Appointment) ([]byte, error) {
	if items == nil {
		items = []models.Appointment{}
	}
	return json.Marshal(items)
}
