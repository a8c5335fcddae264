package app

import (
	"kursus_backend/docs"
	"kursus_backend/internal/config"
	"kursus_backend/internal/middleware"
	"kursus_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
	}

	// 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.learner))
	{
		// 练习会话
		authGroup.POST("/practice/next-question", c.session.NextQuestion)

		// 测验
		authGroup.GET("/quizzes/attempts", c.quiz.RecentAttempts)
		authGroup.GET("/quizzes/:quizId", c.quiz.GetQuiz)
		authGroup.POST("/quizzes/:quizId/submit", c.quiz.Submit)

		// 掌握度与弱项
		authGroup.GET("/mastery", c.mastery.GetMastery)
		authGroup.GET("/weak-areas", c.weakArea.GetWeakAreas)

		// 游戏化
		authGroup.GET("/gamification/profile", c.gamification.GetProfile)
		authGroup.GET("/gamification/badges", c.gamification.GetBadges)
		authGroup.GET("/gamification/leaderboard", c.gamification.GetLeaderboard)

		// 课程目录
		authGroup.GET("/lessons", c.lesson.ListLessons)
		authGroup.GET("/lessons/:id", c.lesson.GetLesson)
	}
}
