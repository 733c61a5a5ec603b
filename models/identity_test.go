package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsElevatedRole(t *testing.T) {
	tests := []struct {
		role     string
		expected bool
	}{
		{"azienda", true},
		{"Direzione Commerciale", true},
		{"area manager", true},
		{"AreaManager", true},
		{"  azienda  ", true},
		{"agente", false},
		{"", false},
		{"service", false},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsElevatedRole(tt.role))
		})
	}
}

func TestIdentityOwns(t *testing.T) {
	rec := Appointment{ID: "1", AgenteID: "A@X.com"}

	assert.True(t, Identity{Email: "a@x.com"}.Owns(rec))
	assert.False(t, Identity{Email: "b@x.com"}.Owns(rec))
	assert.False(t, Identity{}.Owns(Appointment{ID: "2"}), "an empty email owns nothing")
}

func TestIdentityCreator(t *testing.T) {
	tests := []struct {
		name     string
		identity Identity
		expected string
	}{
		{"service", Identity{Service: true, Email: ServiceEmail}, ServiceCreator},
		{"email", Identity{Email: "boss@x.com", Agent: "Boss"}, "boss@x.com"},
		{"agent name", Identity{Agent: "Boss"}, "Boss"},
		{"anonymous", Identity{}, "system"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.identity.Creator())
		})
	}
}
