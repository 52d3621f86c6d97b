package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"prompteria-api/middleware"
	"prompteria-api/services"
	"prompteria-api/utils"
)

type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

type GoogleLoginRequest struct {
	IDToken string `json:"id_token" binding:"required"`
}

func (ac *AuthController) GoogleLogin(c *gin.Context) {
	var req GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Missing id token")
		return
	}

	result, err := ac.auth.SignInWithGoogle(c.Request.Context(), req.IDToken)
	if err != nil {
		respondError(c, err, "Failed to sign in")
		return
	}

	c.JSON(http.StatusOK, result)
}

// Session returns the user behind the bearer token.
func (ac *AuthController) Session(c *gin.Context) {
	user, err := ac.auth.Session(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err, "Failed to load session")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
