package controller

import (
	"errors"
	"strconv"

	"kursus_backend/internal/service"
	"kursus_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type MasteryController struct {
	MasteryService *service.MasteryService
}

func NewMasteryController(masteryService *service.MasteryService) *MasteryController {
	return &MasteryController{MasteryService: masteryService}
}

// @Summary 获取掌握度
// @Description 获取当前学习者的全部科目掌握度；指定subject和gradeLevel时返回单条
// @Tags 掌握度
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param subject query string false "科目"
// @Param gradeLevel query int false "年级"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/mastery [get]
func (c *MasteryController) GetMastery(ctx *gin.Context) {
	learner := util.GetLearnerFromContext(ctx)
	if learner == nil {
		util.Unauthorized(ctx)
		return
	}

	subject := ctx.Query("subject")
	if subject != "" {
		gradeLevel, err := strconv.Atoi(ctx.DefaultQuery("gradeLevel", "0"))
		if err != nil || gradeLevel <= 0 {
			util.BadRequest(ctx, "无效的年级")
			return
		}
		state, err := c.MasteryService.Get(learner.LearnerID, subject, gradeLevel)
		if err != nil {
			if errors.Is(err, util.ErrMasteryNotFound) {
				util.NotFound(ctx)
			} else {
				util.LogInternalError(ctx, err)
			}
			return
		}
		util.Success(ctx, state)
		return
	}

	states, err := c.MasteryService.ListByLearner(learner.LearnerID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, states)
}
