package controller

import (
	"uas_practice_backend/internal/service"
	"uas_practice_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// CourseController serves the learner-facing course list. It reads from the
// content repository's snapshot, not from the database, so learners see
// exactly what sessions are built from.
type CourseController struct {
	Content *service.ContentRepository
}

func NewCourseController(content *service.ContentRepository) *CourseController {
	return &CourseController{Content: content}
}

// @Summary List courses
// @Description Courses from the latest catalog snapshot
// @Tags courses
// @Produce json
// @Success 200 {object} util.Response
// @Router /courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	snap, ok := c.Content.Latest()
	if !ok {
		util.ServiceUnavailable(ctx, util.ErrCatalogNotReady.Error())
		return
	}

	type courseSummary struct {
		ID            string `json:"id"`
		Code          string `json:"code"`
		Name          string `json:"name"`
		QuestionCount int    `json:"questionCount"`
	}

	counts := make(map[string]int, len(snap.Courses))
	for _, q := range snap.Questions {
		counts[q.CourseID]++
	}

	out := make([]courseSummary, 0, len(snap.Courses))
	for _, course := range snap.Courses {
		out = append(out, courseSummary{
			ID:            course.ID,
			Code:          course.Code,
			Name:          course.Name,
			QuestionCount: counts[course.ID],
		})
	}

	util.Success(ctx, out)
}
