package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/agenda-api/middleware"
	"github.com/kendall-kelly/agenda-api/models"
	"github.com/kendall-kelly/agenda-api/services"
	"github.com/kendall-kelly/agenda-api/utils/logging"
)

// previewLimit caps the raw document preview returned by diag=1
const previewLimit = 400

// AgendaController serves the single agenda resource
type AgendaController struct {
	agenda *services.AgendaService
}

// NewAgendaController creates the controller
func NewAgendaController(agenda *services.AgendaService) *AgendaController {
	return &AgendaController{agenda: agenda}
}

// Handle dispatches every method of the agenda resource
func (ac *AgendaController) Handle(c *gin.Context) {
	if c.Request.Method == http.MethodOptions {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "*")
		c.Header("Access-Control-Allow-Methods", strings.Join(middleware.AllowedMethods, ","))
		c.Status(http.StatusOK)
		return
	}

	identity, err := middleware.GetIdentity(c)
	if err != nil {
		respondError(c, err)
		return
	}

	// seed=1 resets the collection whatever the method
	if queryFlag(c, "seed") {
		ac.seed(c)
		return
	}

	switch c.Request.Method {
	case http.MethodGet:
		ac.list(c, identity)
	case http.MethodPost:
		ac.create(c, identity)
	case http.MethodPatch:
		ac.patch(c, identity)
	case http.MethodDelete:
		ac.remove(c, identity)
	default:
		respondError(c, models.ErrUnsupportedMethod)
	}
}

// list handles GET - returns the appointments visible to the caller
func (ac *AgendaController) list(c *gin.Context, identity models.Identity) {
	ctx := c.Request.Context()
	result := ac.agenda.List(ctx, identity, queryFlag(c, "all"))

	debug := gin.H{
		"total":    result.Total,
		"filtered": len(result.Items),
		"user": gin.H{
			"role":     identity.Role,
			"email":    identity.Email,
			"elevated": identity.Elevated,
		},
		"modes": gin.H{
			"read":  result.ReadMode,
			"write": services.ModeNone,
		},
		"env": ac.backendFlags(),
	}

	if queryFlag(c, "diag") {
		c.JSON(http.StatusOK, gin.H{
			"ok":      true,
			"debug":   debug,
			"key":     services.DocumentKey,
			"store":   services.StoreName,
			"preview": ac.agenda.Preview(ctx, previewLimit),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":    true,
		"items": result.Items,
		"debug": debug,
	})
}

// create handles POST - adds an appointment (elevated callers only)
func (ac *AgendaController) create(c *gin.Context, identity models.Identity) {
	rec, err := ac.agenda.Create(c.Request.Context(), identity, readBody(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "item": rec})
}

// patch handles PATCH ?id= - updates status, feedback, time and notes
func (ac *AgendaController) patch(c *gin.Context, identity models.Identity) {
	id := c.Query("id")
	if strings.TrimSpace(id) == "" {
		respondError(c, models.ErrMissingID)
		return
	}

	rec, err := ac.agenda.Patch(c.Request.Context(), identity, id, readBody(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "item": rec})
}

// remove handles DELETE ?id= - removes an appointment (elevated callers only)
func (ac *AgendaController) remove(c *gin.Context, identity models.Identity) {
	if err := ac.agenda.Delete(c.Request.Context(), identity, c.Query("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (ac *AgendaController) seed(c *gin.Context) {
	result, err := ac.agenda.Seed(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":     true,
		"seeded": true,
		"modes": gin.H{
			"read":  services.ModeNone,
			"write": result.Mode,
		},
	})
}

func (ac *AgendaController) backendFlags() gin.H {
	flags := gin.H{"s3": false, "gcs": false, "database": false, "gist": false}
	for _, name := range ac.agenda.Backends() {
		flags[name] = true
	}
	return flags
}

// readBody decodes a JSON object body. A missing or malformed body is treated
// as an empty object so validation reports the missing fields.
func readBody(c *gin.Context) map[string]any {
	input := map[string]any{}
	if c.Request.Body == nil {
		return input
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil || len(body) == 0 {
		return input
	}
	if err := json.Unmarshal(body, &input); err != nil {
		logging.From(c.Request.Context()).Debug("ignoring malformed request body", "error", err)
		return map[string]any{}
	}
	return input
}

func queryFlag(c *gin.Context, name string) bool {
	return strings.TrimSpace(c.Query(name)) == "1"
}

// respondError writes the error envelope. Known agenda errors keep their
// status, anything else is reported as a 500 with its message.
func respondError(c *gin.Context, err error) {
	var agendaErr *models.AgendaError
	if errors.As(err, &agendaErr) {
		c.JSON(agendaErr.Status, gin.H{"ok": false, "error": agendaErr.Message})
		return
	}

	logging.From(c.Request.Context()).Error("agenda request failed",
		"method", c.Request.Method, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
}
