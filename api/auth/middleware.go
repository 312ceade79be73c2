package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/LeiShi1313/readrepeat/api/types"
	"github.com/LeiShi1313/readrepeat/internal/services/auth"
	apperrors "github.com/LeiShi1313/readrepeat/pkg/errors"
)

// Context keys set by WorkerMiddleware
const (
	ClaimsKey = "claims"
	WorkerKey = "worker"
)

// Handler guards the worker endpoints
type Handler struct {
	authService *auth.Service
}

// NewHandler creates a new auth handler. A nil service or one without a
// secret leaves the worker endpoints open.
func NewHandler(authService *auth.Service) *Handler {
	return &Handler{authService: authService}
}

// Enabled reports whether worker tokens are enforced
func (h *Handler) Enabled() bool {
	return h.authService != nil && h.authService.Enabled()
}

// WorkerMiddleware validates worker bearer tokens
func (h *Handler) WorkerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.Enabled() {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, http.StatusUnauthorized, "Authorization header required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			abort(c, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		claims, err := h.authService.ValidateToken(parts[1])
		if err != nil {
			if errors.Is(err, auth.ErrUnauthorized) {
				abort(c, http.StatusForbidden, "Access denied - not a worker token")
			} else {
				abort(c, http.StatusUnauthorized, "Invalid or expired token")
			}
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(WorkerKey, claims.WorkerName())
		c.Next()
	}
}

// WorkerName returns the authenticated worker, falling back to the
// X-Worker-Name header and then the client address when auth is off
func WorkerName(c *gin.Context) string {
	if name := c.GetString(WorkerKey); name != "" {
		return name
	}
	if name := strings.TrimSpace(c.GetHeader("X-Worker-Name")); name != "" {
		return name
	}
	return c.ClientIP()
}

// Whoami returns the identity the worker endpoints see for this request
// @Summary      Worker identity
// @Description  Echoes the worker name derived from the bearer token
// @Tags         jobs
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} object{worker=string,authenticated=bool,expiresAt=string}
// @Failure      401 {object} types.ErrorResponse
// @Router       /api/jobs/whoami [get]
func (h *Handler) Whoami(c *gin.Context) {
	response := gin.H{
		"worker":        WorkerName(c),
		"authenticated": false,
	}
	if value, ok := c.Get(ClaimsKey); ok {
		claims := value.(*auth.Claims)
		response["authenticated"] = true
		if claims.ExpiresAt != nil {
			response["expiresAt"] = claims.ExpiresAt.Time
		}
	}
	c.JSON(http.StatusOK, response)
}

func abort(c *gin.Context, status int, message string) {
	code := apperrors.ErrCodeUnauthorized
	if status == http.StatusForbidden {
		code = apperrors.ErrCodeForbidden
	}
	c.AbortWithStatusJSON(status, types.ErrorResponse{
		Status:  types.StatusError,
		Message: message,
		Error:   string(code),
	})
}
