package controller

import (
	"errors"

	"kursus_backend/internal/service"
	"kursus_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SessionController struct {
	SessionService *service.SessionService
}

func NewSessionController(sessionService *service.SessionService) *SessionController {
	return &SessionController{SessionService: sessionService}
}

// @Summary 获取下一道练习题
// @Description 根据本次会话的答题表现自适应调整难度并生成下一题
// @Tags 练习会话
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.NextQuestionRequest true "会话表现"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 503 {object} util.Response
// @Router /api/practice/next-question [post]
func (c *SessionController) NextQuestion(ctx *gin.Context) {
	learner := util.GetLearnerFromContext(ctx)
	if learner == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.NextQuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resp, err := c.SessionService.NextQuestion(ctx.Request.Context(), learner.LearnerID, req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrLessonNotFound), errors.Is(err, util.ErrLessonNotPublished):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrInvalidDifficulty), errors.Is(err, util.ErrInvalidPerformance):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrGeneratorUnavailable):
			util.ServiceUnavailable(ctx, "题目生成服务暂不可用")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, resp)
}
