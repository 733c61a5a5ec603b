package utils

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppointmentID_Format(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	id := NewAppointmentID(now)

	parts := strings.SplitN(id, "-", 2)
	require.Len(t, parts, 2, "ID should have a timestamp prefix and a random suffix")
	assert.Equal(t, strconv.FormatInt(now.UnixMilli(), 36), parts[0])
	assert.Len(t, parts[1], idSuffixLength)
}

func TestNewAppointmentID_Unique(t *testing.T) {
	now := time.Now()
	seen := make(map[string]bool)

	// Same millisecond for every call, only the suffix differs
	for i := 0; i < 1000; i++ {
		id := NewAppointmentID(now)
		assert.False(t, seen[id], "ID %s generated twice", id)
		seen[id] = true
	}
}

func TestTimestamp(t *testing.T) {
	rome := time.FixedZone("CET", 3600)
	ts := time.Date(2024, 3, 5, 11, 30, 15, 123_000_000, rome)

	assert.Equal(t, "2024-03-05T10:30:15.123Z", Timestamp(ts))
}
