package middleware

import (
	"kursus_backend/internal/config"
	"kursus_backend/internal/repository"
	"kursus_backend/internal/util"
	"strings"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware 解析 Bearer Token 得到学习者身份。
// 鉴权策略由上游网关负责，这里只要求身份可解析
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}

		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret)
		if err != nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set("learner", claims)
		c.Next()
	}
}

// ActivityMiddleware 异步刷新学习者的最近活跃时间
func ActivityMiddleware(learnerRepo *repository.LearnerRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims := util.GetLearnerFromContext(c); claims != nil {
			go learnerRepo.TouchLastSeen(claims.LearnerID)
		}
		c.Next()
	}
}
