package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"wms/internal/metrics"
	"wms/internal/middleware"
	"wms/internal/model"
	"wms/internal/service"
	"wms/pkg/response"
)

type AuthHandler struct {
	authService service.AuthService
	auth        *middleware.Authenticator
	denylist    *middleware.Denylist
}

// NewAuthHandler sets up the routing dependencies for the session endpoints
func NewAuthHandler(authService service.AuthService, auth *middleware.Authenticator, denylist *middleware.Denylist) *AuthHandler {
	return &AuthHandler{authService: authService, auth: auth, denylist: denylist}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/login", h.Login)
	router.POST("/logout", h.auth.Authenticated(), h.Logout)
}

// Login handles POST /login to exchange credentials for a bearer token
// @Summary      Login
// @Description  Verifies username and password and returns a signed token. The body is not wrapped in the response envelope.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      model.Credentials  true  "Login Credentials"
// @Success      202      {object}  model.TokenResponse
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	raw, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		metrics.Login(false)
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid username or password"))
			return
		}
		respondError(c, err)
		return
	}
	metrics.Login(true)

	c.JSON(http.StatusAccepted, model.TokenResponse{Token: raw})
}

// Logout handles POST /logout by revoking the presented token
// @Summary      Logout
// @Description  Revokes the bearer token until it would have expired
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      202  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Router       /logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if claims := middleware.Claims(c); claims != nil && claims.ExpiresAt != nil {
		h.denylist.Revoke(claims.ID, claims.ExpiresAt.Time)
	}
	c.JSON(http.StatusAccepted, response.Success(http.StatusAccepted, gin.H{"message": "Logged out successfully"}))
}
