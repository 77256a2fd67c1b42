package controller

import (
	"net/http"

	"uas_practice_backend/internal/service"
	"uas_practice_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthController struct {
	DB      *gorm.DB
	Content *service.ContentRepository
}

func NewHealthController(db *gorm.DB, content *service.ContentRepository) *HealthController {
	return &HealthController{DB: db, Content: content}
}

// @Summary Health check
// @Description Reports database and catalog mirror status
// @Tags system
// @Produce json
// @Success 200 {object} util.Response
// @Router /health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	sqlDB, err := c.DB.DB()
	if err != nil {
		util.InternalServerError(ctx)
		return
	}

	if err := sqlDB.Ping(); err != nil {
		util.Error(ctx, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	catalog := "waiting"
	if _, ok := c.Content.Latest(); ok {
		catalog = "up"
	}

	util.Success(ctx, gin.H{
		"status": "ok",
		"components": gin.H{
			"database": "up",
			"catalog":  catalog,
		},
	})
}
