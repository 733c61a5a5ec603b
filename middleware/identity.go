package middleware

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/agenda-api/models"
	"github.com/kendall-kelly/agenda-api/utils/logging"
)

// Headers set by the upstream gateway
const (
	HeaderRole        = "X-Simac-Role"
	HeaderEmail       = "X-Simac-Email"
	HeaderAgent       = "X-Simac-Agente"
	HeaderAreaManager = "X-Simac-Areamanager"
)

const identityKey = "identity"

var (
	bearerPattern = regexp.MustCompile(`(?i)^Bearer\s+(.+)$`)
	// Pre-provisioned service tokens
	serviceTokenPattern = regexp.MustCompile(`^MCQ_[A-Za-z0-9]+$`)
)

// ResolveIdentity derives the caller from the trusted gateway headers. The
// headers are not verified here: the gateway is expected to set or strip them.
func ResolveIdentity(h http.Header, serviceToken string) models.Identity {
	role := strings.TrimSpace(h.Get(HeaderRole))
	identity := models.Identity{
		Role:        role,
		Email:       strings.ToLower(strings.TrimSpace(h.Get(HeaderEmail))),
		Agent:       strings.TrimSpace(h.Get(HeaderAgent)),
		AreaManager: strings.TrimSpace(h.Get(HeaderAreaManager)),
		Elevated:    models.IsElevatedRole(role),
	}

	if IsServiceToken(h.Get("Authorization"), serviceToken) {
		identity.Service = true
		identity.Elevated = true
		identity.Role = models.ServiceRole
		if identity.Email == "" {
			identity.Email = models.ServiceEmail
		}
	}
	return identity
}

// IsServiceToken reports whether an Authorization header carries the shared
// service secret or a pre-provisioned MCQ_ token
func IsServiceToken(authorization, secret string) bool {
	m := bearerPattern.FindStringSubmatch(strings.TrimSpace(authorization))
	if m == nil {
		return false
	}
	token := m[1]
	secret = strings.TrimSpace(secret)
	if secret != "" && token == secret {
		return true
	}
	return serviceTokenPattern.MatchString(token)
}

// Identify resolves the caller identity and stores it in the Gin context
func Identify(serviceToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := ResolveIdentity(c.Request.Header, serviceToken)
		logging.From(c.Request.Context()).Debug("agenda auth",
			"method", c.Request.Method,
			"service", identity.Service,
			"role", identity.Role,
			"email", identity.Email,
			"elevated", identity.Elevated,
		)
		c.Set(identityKey, identity)
		c.Next()
	}
}

// GetIdentity extracts the caller identity from the Gin context
func GetIdentity(c *gin.Context) (models.Identity, error) {
	value, exists := c.Get(identityKey)
	if !exists {
		return models.Identity{}, &AuthError{Code: "MISSING_IDENTITY", Message: "Identity not found in context"}
	}

	identity, ok := value.(models.Identity)
	if !ok {
		return models.Identity{}, &AuthError{Code: "INVALID_IDENTITY", Message: "Identity is not in the expected format"}
	}
	return identity, nil
}

// AuthError represents a failure to obtain the caller identity
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
