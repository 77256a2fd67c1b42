package controller

import (
	"encoding/json"
	"errors"
	"io"

	"uas_practice_backend/internal/model"
	"uas_practice_backend/internal/service"
	"uas_practice_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CatalogController is the admin surface: course/question CRUD and bulk
// import/export. All routes behind admin auth.
type CatalogController struct {
	Service *service.CatalogService
	Storage *service.StorageService
}

func NewCatalogController(svc *service.CatalogService, storage *service.StorageService) *CatalogController {
	return &CatalogController{Service: svc, Storage: storage}
}

// @Summary Create course
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.CourseRequest true "Course"
// @Success 201 {object} util.Response
// @Router /admin/courses [post]
func (c *CatalogController) CreateCourse(ctx *gin.Context) {
	var req service.CourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.Service.CreateCourse(ctx.Request.Context(), req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, course)
}

// @Summary Update course
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Course id"
// @Param body body service.CourseRequest true "Course"
// @Success 200 {object} util.Response
// @Router /admin/courses/{id} [put]
func (c *CatalogController) UpdateCourse(ctx *gin.Context) {
	var req service.CourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.Service.UpdateCourse(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, course)
}

// @Summary Delete course
// @Description Questions referencing the course are kept as dangling references
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Course id"
// @Success 200 {object} util.Response
// @Router /admin/courses/{id} [delete]
func (c *CatalogController) DeleteCourse(ctx *gin.Context) {
	if err := c.Service.DeleteCourse(ctx.Request.Context(), ctx.Param("id")); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": true})
}

// @Summary List courses (admin)
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /admin/courses [get]
func (c *CatalogController) ListCourses(ctx *gin.Context) {
	courses, err := c.Service.ListCourses()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// @Summary Create question
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.QuestionRequest true "Question"
// @Success 201 {object} util.Response
// @Router /admin/questions [post]
func (c *CatalogController) CreateQuestion(ctx *gin.Context) {
	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.Service.CreateQuestion(ctx.Request.Context(), req)
	if err != nil {
		if isValidationError(err) {
			util.BadRequest(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, q)
}

// @Summary Update question
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Question id"
// @Param body body service.QuestionRequest true "Question"
// @Success 200 {object} util.Response
// @Router /admin/questions/{id} [put]
func (c *CatalogController) UpdateQuestion(ctx *gin.Context) {
	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.Service.UpdateQuestion(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
			return
		}
		if isValidationError(err) {
			util.BadRequest(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, q)
}

// @Summary Delete question
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Question id"
// @Success 200 {object} util.Response
// @Router /admin/questions/{id} [delete]
func (c *CatalogController) DeleteQuestion(ctx *gin.Context) {
	if err := c.Service.DeleteQuestion(ctx.Request.Context(), ctx.Param("id")); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": true})
}

// @Summary List questions (admin)
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param courseId query string false "Filter by course"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} util.Response
// @Router /admin/questions [get]
func (c *CatalogController) ListQuestions(ctx *gin.Context) {
	page := util.ParsePositiveInt(ctx.Query("page"), 1, 0)
	limit := util.ParsePositiveInt(ctx.Query("limit"), 20, 100)

	qs, total, err := c.Service.ListQuestions(ctx.Query("courseId"), page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  qs,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// @Summary Export question bank
// @Description Returns the full question bank as a JSON array
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} model.Question
// @Router /admin/questions/export [get]
func (c *CatalogController) ExportQuestions(ctx *gin.Context) {
	qs, err := c.Service.ExportQuestions()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", `attachment; filename="question_bank_export.json"`)
	ctx.JSON(200, qs)
}

// @Summary Import question bank
// @Description Accepts a JSON array of question records; the whole batch is applied or nothing
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /admin/questions/import [post]
func (c *CatalogController) ImportQuestions(ctx *gin.Context) {
	data, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	count, err := c.Service.ImportQuestions(ctx.Request.Context(), data)
	if err != nil {
		if errors.Is(err, util.ErrImportNotArray) || errors.Is(err, util.ErrImportInvalid) {
			util.BadRequest(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"imported": count})
}

// @Summary Back up the question bank to object storage
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /admin/questions/export/backup [post]
func (c *CatalogController) BackupExport(ctx *gin.Context) {
	if !c.Storage.Enabled() {
		util.ServiceUnavailable(ctx, "storage not configured")
		return
	}

	qs, err := c.Service.ExportQuestions()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	data, err := json.Marshal(qs)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	url, err := c.Storage.BackupExport(ctx.Request.Context(), data)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"url": url, "questions": len(qs)})
}

func isValidationError(err error) bool {
	return errors.Is(err, model.ErrOptionCount) ||
		errors.Is(err, model.ErrCorrectIndexRange) ||
		errors.Is(err, model.ErrUnknownVersion) ||
		errors.Is(err, model.ErrUnknownDifficulty) ||
		errors.Is(err, model.ErrOptionsMalformed)
}
