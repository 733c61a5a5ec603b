package services

import "github.com/kendall-kelly/agenda-api/models"

// FilterForIdentity returns the appointments the caller may see. Elevated
// callers see everything, agents only the appointments assigned to them.
func FilterForIdentity(items []models.Appointment, identity models.Identity) []models.Appointment {
	if identity.Elevated {
		return items
	}
	out := make([]models.Appointment, 0, len(items))
	for _, item := range items {
		if identity.Owns(item) {
			out = append(out, item)
		}
	}
	return out
}
