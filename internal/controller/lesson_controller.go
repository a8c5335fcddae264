package controller

import (
	"errors"
	"strconv"

	"kursus_backend/internal/service"
	"kursus_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LessonController struct {
	LessonService *service.LessonService
}

func NewLessonController(lessonService *service.LessonService) *LessonController {
	return &LessonController{LessonService: lessonService}
}

// @Summary 获取课程列表
// @Description 获取已发布的课程，附带当前学习者的进度
// @Tags 课程
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param subject query string false "科目"
// @Param gradeLevel query int false "年级"
// @Success 200 {object} util.Response
// @Router /api/lessons [get]
func (c *LessonController) ListLessons(ctx *gin.Context) {
	learner := util.GetLearnerFromContext(ctx)
	if learner == nil {
		util.Unauthorized(ctx)
		return
	}

	subject := ctx.Query("subject")
	gradeLevel := 0
	if gradeStr := ctx.Query("gradeLevel"); gradeStr != "" {
		if g, err := strconv.Atoi(gradeStr); err == nil && g > 0 {
			gradeLevel = g
		}
	}

	lessons, err := c.LessonService.ListWithProgress(learner.LearnerID, subject, gradeLevel)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, lessons)
}

// @Summary 获取课程详情
// @Description 获取单个已发布课程的内容
// @Tags 课程
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/lessons/{id} [get]
func (c *LessonController) GetLesson(ctx *gin.Context) {
	learner := util.GetLearnerFromContext(ctx)
	if learner == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "无效的课程ID")
		return
	}

	lesson, err := c.LessonService.Get(uint(id))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrLessonNotFound), errors.Is(err, util.ErrLessonNotPublished):
			util.NotFound(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, lesson)
}
