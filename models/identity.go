package models

import "strings"

// ServiceRole is the role forced on callers presenting a service token
const ServiceRole = "service"

// ServiceEmail is used as the caller email for service calls without one
const ServiceEmail = "master@service"

// ServiceCreator is stored in creato_da for records created by service calls
const ServiceCreator = "agenda-master"

// elevatedRoles lists the roles with unrestricted access to the collection
var elevatedRoles = map[string]bool{
	"azienda":               true,
	"direzione commerciale": true,
	"area manager":          true,
	"areamanager":           true,
}

// Identity is the caller derived from the trusted gateway headers of a request
type Identity struct {
	Role        string `json:"role"`
	Email       string `json:"email"` // lower-cased
	Agent       string `json:"agent"` // display name
	AreaManager string `json:"area_manager"`
	Elevated    bool   `json:"elevated"`
	Service     bool   `json:"service"`
}

// IsElevatedRole reports whether role belongs to the privileged role set
func IsElevatedRole(role string) bool {
	return elevatedRoles[strings.ToLower(strings.TrimSpace(role))]
}

// Owns reports whether the identity is the agent assigned to the appointment
func (i Identity) Owns(a Appointment) bool {
	return i.Email != "" && strings.ToLower(a.AgenteID) == i.Email
}

// Creator returns the value recorded in creato_da for records this identity creates
func (i Identity) Creator() string {
	switch {
	case i.Service:
		return ServiceCreator
	case i.Email != "":
		return i.Email
	case i.Agent != "":
		return i.Agent
	default:
		return "system"
	}
}
