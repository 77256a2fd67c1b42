package controller

import (
	"errors"

	"uas_practice_backend/internal/service"
	"uas_practice_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	Service *service.AuthService
}

func NewAuthController(svc *service.AuthService) *AuthController {
	return &AuthController{Service: svc}
}

type AdminLoginRequest struct {
	AccessCode string `json:"accessCode" binding:"required"`
}

// @Summary Admin login
// @Description Exchanges the administrator access code for a JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param body body AdminLoginRequest true "Access code"
// @Success 200 {object} util.Response
// @Router /admin/login [post]
func (c *AuthController) AdminLogin(ctx *gin.Context) {
	var req AdminLoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	token, err := c.Service.AdminLogin(req.AccessCode)
	if err != nil {
		if errors.Is(err, util.ErrInvalidAccessCode) {
			util.Unauthorized(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"token": token})
}
