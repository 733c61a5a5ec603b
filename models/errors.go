package models

import "net/http"

// AgendaError is a failure the API reports to the caller with a fixed status
type AgendaError struct {
	Code    string
	Status  int
	Message string
}

func (e *AgendaError) Error() string {
	return e.Message
}

var (
	ErrValidation = &AgendaError{Code: "VALIDATION_ERROR", Status: http.StatusBadRequest, Message: "Dati mancanti"}
	ErrMissingID  = &AgendaError{Code: "MISSING_ID", Status: http.StatusBadRequest, Message: "ID mancante"}
	ErrNotFound   = &AgendaError{Code: "NOT_FOUND", Status: http.StatusNotFound, Message: "Non trovato"}

	ErrPermissionDenied  = &AgendaError{Code: "PERMISSION_DENIED", Status: http.StatusForbidden, Message: "Permesso negato"}
	ErrUnsupportedMethod = &AgendaError{Code: "UNSUPPORTED_METHOD", Status: http.StatusMethodNotAllowed, Message: "Metodo non supportato"}

	// ErrNoStorageAvailable is returned on write when no backend is configured
	ErrNoStorageAvailable = &AgendaError{Code: "NO_STORAGE", Status: http.StatusInternalServerError, Message: "No storage available"}
)
