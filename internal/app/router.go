package app

import (
	"provafacil_backend/docs"
	"provafacil_backend/internal/config"
	"provafacil_backend/internal/middleware"
	"provafacil_backend/internal/model"
	"provafacil_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		// 个人信息
		authGroup.GET("/profile", c.auth.GetProfile)
		authGroup.PUT("/user/profile", c.user.UpdateProfile)
		authGroup.POST("/user/avatar/upload", c.user.UploadAvatar)

		// 统计与历史
		authGroup.GET("/user/stats", c.stats.GetUserStats)
		authGroup.GET("/user/history", c.stats.GetUserExamHistory)

		// 试卷
		authGroup.GET("/exams", c.exam.ListExams)
		authGroup.GET("/exams/:id", c.exam.GetExam)
		authGroup.GET("/exams/:id/take", c.exam.GetExamForTaking)

		// 创建与导入试卷，教师和管理员可用
		creator := authGroup.Group("/exams")
		creator.Use(middleware.RoleMiddleware(model.Teacher))
		{
			creator.POST("", c.exam.CreateExam)
			creator.POST("/import", c.exam.ImportExam)
			creator.GET("/mine", c.exam.ListMyExams)
			creator.DELETE("/:id", c.exam.DeleteExam)
		}

		// 答题
		authGroup.POST("/exams/:id/attempts", c.attempt.SubmitAttempt)
		authGroup.GET("/exams/:id/results", c.stats.GetExamResults)

		// 在线答题会话
		authGroup.POST("/exams/:id/sessions", c.session.StartSession)
		authGroup.GET("/sessions/:id", c.session.GetSession)
		authGroup.POST("/sessions/:id/answer", c.session.SelectAnswer)
		authGroup.POST("/sessions/:id/next", c.session.NextQuestion)
		authGroup.POST("/sessions/:id/finish", c.session.FinishSession)
		authGroup.GET("/sessions/:id/ws", c.session.ServeWS)
	}
}
