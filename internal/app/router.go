package app

import (
	"uas_practice_backend/docs"
	"uas_practice_backend/internal/config"
	"uas_practice_backend/internal/middleware"
	"uas_practice_backend/internal/util"
	"uas_practice_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// learner routes, anonymous by design
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.GET("/courses", c.course.ListCourses)
		public.POST("/admin/login", c.auth.AdminLogin)

		quiz := public.Group("/quiz")
		{
			quiz.POST("/sessions", c.quiz.StartSession)
			quiz.GET("/sessions/:id", c.quiz.GetSession)
			quiz.POST("/sessions/:id/answer", c.quiz.SubmitAnswer)
			quiz.POST("/sessions/:id/advance", c.quiz.Advance)
			quiz.GET("/sessions/:id/result", c.quiz.Result)
			quiz.DELETE("/sessions/:id", c.quiz.Abandon)
		}
	}

	// catalog administration
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(util.RoleAdmin))
	{
		admin.GET("/courses", c.catalog.ListCourses)
		admin.POST("/courses", c.catalog.CreateCourse)
		admin.PUT("/courses/:id", c.catalog.UpdateCourse)
		admin.DELETE("/courses/:id", c.catalog.DeleteCourse)

		admin.GET("/questions", c.catalog.ListQuestions)
		admin.POST("/questions", c.catalog.CreateQuestion)
		admin.PUT("/questions/:id", c.catalog.UpdateQuestion)
		admin.DELETE("/questions/:id", c.catalog.DeleteQuestion)

		admin.GET("/questions/export", c.catalog.ExportQuestions)
		admin.POST("/questions/import", c.catalog.ImportQuestions)
		admin.POST("/questions/export/backup", c.catalog.BackupExport)
	}
}
