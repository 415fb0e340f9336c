package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"titlehub/internal/api/dto"
	"titlehub/internal/api/service"
	"titlehub/internal/apperror"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRoutes registers the signup and token-exchange endpoints
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/signup", h.SignUp)
		auth.POST("/token", h.Token)
	}
}

// SignUp handles POST /auth/signup. Identity collisions surface as 400
// here: the endpoint contract folds them into validation failures, while
// the admin user endpoints keep 409.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req dto.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.authService.SignUp(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Token handles POST /auth/token: 404 for an unknown username, 400 with
// a field-level error for a wrong or expired code.
func (h *AuthHandler) Token(c *gin.Context) {
	var req dto.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.authService.Token(c.Request.Context(), req)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && errors.Is(err, apperror.ErrUnauthorized) && appErr.Field != "" {
			// bad confirmation code: field-level error in the body
			c.JSON(http.StatusBadRequest, gin.H{"field": appErr.Field, "error": appErr.Message})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
