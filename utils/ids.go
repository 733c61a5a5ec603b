package utils

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// idSuffixLength is the number of random characters appended to an id
	idSuffixLength = 6
	// TimestampLayout is the format of created_at and updated_at
	TimestampLayout = "2006-01-02T15:04:05.000Z"
)

// NewAppointmentID returns a time-ordered id: base36 unix millis, a dash and a
// short random suffix. Collisions are improbable at agenda scale, not impossible.
func NewAppointmentID(now time.Time) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strconv.FormatInt(now.UnixMilli(), 36) + "-" + random[:idSuffixLength]
}

// Timestamp formats t the way record timestamps are stored
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
