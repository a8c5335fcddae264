package controller

import (
	"strconv"

	"kursus_backend/internal/service"
	"kursus_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type WeakAreaController struct {
	WeakAreaService *service.WeakAreaService
}

func NewWeakAreaController(weakAreaService *service.WeakAreaService) *WeakAreaController {
	return &WeakAreaController{WeakAreaService: weakAreaService}
}

// @Summary 获取薄弱知识点
// @Description 获取当前学习者的薄弱知识点；指定subject时按错误次数返回前若干条
// @Tags 弱项追踪
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param subject query string false "科目"
// @Param limit query int false "返回数量" default(5)
// @Success 200 {object} util.Response
// @Router /api/weak-areas [get]
func (c *WeakAreaController) GetWeakAreas(ctx *gin.Context) {
	learner := util.GetLearnerFromContext(ctx)
	if learner == nil {
		util.Unauthorized(ctx)
		return
	}

	subject := ctx.Query("subject")
	if subject != "" {
		limit := 5
		if limitStr := ctx.Query("limit"); limitStr != "" {
			if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 50 {
				limit = l
			}
		}
		areas, err := c.WeakAreaService.TopAreas(learner.LearnerID, subject, limit)
		if err != nil {
			util.LogInternalError(ctx, err)
			return
		}
		util.Success(ctx, areas)
		return
	}

	areas, err := c.WeakAreaService.ListByLearner(learner.LearnerID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, areas)
}
