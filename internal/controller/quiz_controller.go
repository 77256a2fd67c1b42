package controller

import (
	"errors"

	"uas_practice_backend/internal/service"
	"uas_practice_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	Sessions *service.QuizSessionService
	Content  *service.ContentRepository
}

func NewQuizController(sessions *service.QuizSessionService, content *service.ContentRepository) *QuizController {
	return &QuizController{Sessions: sessions, Content: content}
}

// @Summary Start a practice session
// @Description Builds a session from the latest catalog snapshot
// @Tags quiz
// @Accept json
// @Produce json
// @Param body body service.StartSessionRequest true "Selection criteria"
// @Success 201 {object} util.Response
// @Router /quiz/sessions [post]
func (c *QuizController) StartSession(ctx *gin.Context) {
	var req service.StartSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	// The snapshot is taken once, here. The session owns its copy from now
	// on; later snapshots never reach it.
	snap, ok := c.Content.Latest()
	if !ok {
		util.ServiceUnavailable(ctx, util.ErrCatalogNotReady.Error())
		return
	}

	view, err := c.Sessions.StartSession(snap, req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrSelectionEmpty):
			util.Error(ctx, 422, err.Error())
		case errors.Is(err, util.ErrCourseNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrInvalidFilter):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, view)
}

// @Summary Get session state
// @Tags quiz
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} util.Response
// @Router /quiz/sessions/{id} [get]
func (c *QuizController) GetSession(ctx *gin.Context) {
	view, err := c.Sessions.Get(ctx.Param("id"))
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, view)
}

type SubmitAnswerRequest struct {
	OptionIndex *int `json:"optionIndex" binding:"required"`
}

// @Summary Submit an answer for the current question
// @Description Records the answer and returns correctness plus the explanation; does not advance
// @Tags quiz
// @Accept json
// @Produce json
// @Param id path string true "Session id"
// @Param body body SubmitAnswerRequest true "Selected option"
// @Success 200 {object} util.Response
// @Router /quiz/sessions/{id}/answer [post]
func (c *QuizController) SubmitAnswer(ctx *gin.Context) {
	var req SubmitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	feedback, err := c.Sessions.SubmitAnswer(ctx.Param("id"), *req.OptionIndex)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrSessionNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrAlreadyAnswered):
			util.Conflict(ctx, err.Error())
		case errors.Is(err, util.ErrOptionIndexRange):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrSessionCompleted), errors.Is(err, util.ErrUnscorableQuestion):
			util.Conflict(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, feedback)
}

// @Summary Advance to the next question
// @Tags quiz
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} util.Response
// @Router /quiz/sessions/{id}/advance [post]
func (c *QuizController) Advance(ctx *gin.Context) {
	view, err := c.Sessions.Advance(ctx.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrSessionNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrAnswerRequired):
			util.Conflict(ctx, err.Error())
		case errors.Is(err, util.ErrSessionCompleted):
			util.Conflict(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, view)
}

// @Summary Get the result of a completed session
// @Tags quiz
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} util.Response
// @Router /quiz/sessions/{id}/result [get]
func (c *QuizController) Result(ctx *gin.Context) {
	result, err := c.Sessions.Result(ctx.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrSessionNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrSessionInProgress):
			util.Conflict(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, result)
}

// @Summary Abandon a session
// @Tags quiz
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} util.Response
// @Router /quiz/sessions/{id} [delete]
func (c *QuizController) Abandon(ctx *gin.Context) {
	c.Sessions.Abandon(ctx.Param("id"))
	util.Success(ctx, gin.H{"abandoned": true})
}
