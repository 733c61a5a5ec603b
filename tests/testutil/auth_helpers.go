package testutil

import (
	"net/http"

	"github.com/kendall-kelly/agenda-api/middleware"
)

// Caller describes the gateway headers of a simulated request
type Caller struct {
	Email         string
	Role          string
	Agent         string
	AreaManager   string
	Authorization string
}

// Common callers used across tests
var (
	Company   = Caller{Email: "boss@mcquadro.it", Role: "azienda", Agent: "Direzione"}
	AgentA    = Caller{Email: "a@x.com", Role: "agente", Agent: "Agente A"}
	AgentB    = Caller{Email: "b@x.com", Role: "agente", Agent: "Agente B"}
	Service   = Caller{Authorization: "Bearer MCQ_abc123"}
	Anonymous = Caller{}
)

// Apply sets the caller headers on req
func (c Caller) Apply(req *http.Request) {
	set := func(key, value string) {
		if value != "" {
			req.Header.Set(key, value)
		}
	}
	set(middleware.HeaderEmail, c.Email)
	set(middleware.HeaderRole, c.Role)
	set(middleware.HeaderAgent, c.Agent)
	set(middleware.HeaderAreaManager, c.AreaManager)
	set("Authorization", c.Authorization)
}
