package controller

import (
	"errors"

	"kursus_backend/internal/service"
	"kursus_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type GamificationController struct {
	LedgerService      *service.LedgerService
	LeaderboardService *service.LeaderboardService
	BadgeService       *service.BadgeService
}

func NewGamificationController(
	ledgerService *service.LedgerService,
	leaderboardService *service.LeaderboardService,
	badgeService *service.BadgeService,
) *GamificationController {
	return &GamificationController{
		LedgerService:      ledgerService,
		LeaderboardService: leaderboardService,
		BadgeService:       badgeService,
	}
}

// @Summary 获取游戏化档案
// @Description 获取当前学习者的XP、等级、连续天数和已获徽章
// @Tags 游戏化
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/gamification/profile [get]
func (c *GamificationController) GetProfile(ctx *gin.Context) {
	learner := util.GetLearnerFromContext(ctx)
	if learner == nil {
		util.Unauthorized(ctx)
		return
	}

	profile, err := c.LedgerService.GetProfile(learner.LearnerID)
	if err != nil {
		if errors.Is(err, util.ErrLearnerNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, profile)
}

// @Summary 获取徽章列表
// @Description 获取全部启用徽章及当前学习者的获得状态
// @Tags 游戏化
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/gamification/badges [get]
func (c *GamificationController) GetBadges(ctx *gin.Context) {
	learner := util.GetLearnerFromContext(ctx)
	if learner == nil {
		util.Unauthorized(ctx)
		return
	}

	badges, err := c.BadgeService.ListWithStatus(learner.LearnerID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, badges)
}

// @Summary 获取XP排行榜
// @Description 获取按总XP排序的学习者排行榜
// @Tags 游戏化
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/gamification/leaderboard [get]
func (c *GamificationController) GetLeaderboard(ctx *gin.Context) {
	entries, err := c.LeaderboardService.Top(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, entries)
}
