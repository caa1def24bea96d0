package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"warbler/internal/handler"
	"warbler/internal/middleware"
	"warbler/pkg/websession"
)

// Handlers 路由用到的全部 handler
type Handlers struct {
	Home    *handler.HomeHandler
	Auth    *handler.AuthHandler
	User    *handler.UserHandler
	Message *handler.MessageHandler
}

// SetupRouter 设置路由
func SetupRouter(allowedOrigins []string, store *websession.Store, users middleware.UserResolver, h *Handlers) *gin.Engine {
	// 创建 Gin Engine（不使用默认中间件）
	r := gin.New()

	// 全局中间件
	r.Use(gin.Recovery())                            // Panic 恢复
	r.Use(middleware.CORSMiddleware(allowedOrigins)) // CORS
	r.Use(middleware.MetricsMiddleware())            // 指标
	r.Use(middleware.LoadUser(store, users))         // 当前用户
	r.Use(middleware.LoggerMiddleware())             // 日志

	auth := middleware.RequireLogin(store)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/", h.Home.Index)

	// 注册 / 登录
	r.GET("/signup", h.Auth.SignupForm)
	r.POST("/signup", h.Auth.Signup)
	r.GET("/login", h.Auth.LoginForm)
	r.POST("/login", h.Auth.Login)
	r.POST("/logout", h.Auth.Logout)

	userGroup := r.Group("/users")
	{
		userGroup.GET("", h.User.List)
		userGroup.GET("/:id", h.User.Show)

		userGroup.GET("/:id/following", auth, h.User.Following)
		userGroup.GET("/:id/followers", auth, h.User.Followers)
		userGroup.POST("/follow/:id", auth, h.User.Follow)
		userGroup.POST("/stop-following/:id", auth, h.User.StopFollowing)
		userGroup.GET("/profile", auth, h.User.ProfileForm)
		userGroup.POST("/profile", auth, h.User.UpdateProfile)
		userGroup.POST("/delete", auth, h.User.Delete)
	}

	messageGroup := r.Group("/messages")
	{
		messageGroup.GET("/new", auth, h.Message.NewForm)
		messageGroup.POST("/new", auth, h.Message.Create)
		messageGroup.GET("/:id", h.Message.Show)
		messageGroup.POST("/:id/delete", auth, h.Message.Delete)
	}

	return r
}
