package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/dig"

	"github.com/manavgup/ragcore/internal/config"
	"github.com/manavgup/ragcore/internal/handler"
	"github.com/manavgup/ragcore/internal/middleware"
	"github.com/manavgup/ragcore/internal/types/interfaces"
)

// RouterParams 路由参数
type RouterParams struct {
	dig.In

	Config            *config.Config
	UserService       interfaces.UserService
	ModelService      interfaces.ModelService
	TenantHandler     *handler.TenantHandler
	TenantService     interfaces.TenantService
	ModelHandler      *handler.ModelHandler
	AuthHandler       *handler.AuthHandler
	SystemHandler     *handler.SystemHandler
	SearchHandler     *handler.SearchHandler
	ChatWSHandler     *handler.ChatWSHandler
	AdminLogsHandler  *handler.AdminLogsHandler
	TokenUsageHandler *handler.TokenUsageHandler
}

// NewRouter 创建新的路由
func NewRouter(params RouterParams) *gin.Engine {
	r := gin.New()

	// CORS 中间件应放在最前面
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-Key", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Access-Control-Allow-Origin"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 其他中间件
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.Auth(params.TenantService, params.Config))

	// 添加OpenTelemetry追踪中间件
	r.Use(middleware.TracingMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// 需要认证的API路由
	v1 := r.Group("/api/v1")
	{
		RegisterAuthRoutes(v1, params.AuthHandler)
		RegisterTenantRoutes(v1, params.TenantHandler)
		RegisterModelRoutes(v1, params.ModelHandler)
		RegisterSystemRoutes(v1, params.SystemHandler)
		RegisterSearchRoutes(v1, params.SearchHandler)
		RegisterWSRoutes(v1, params.ChatWSHandler)
		RegisterAdminLogRoutes(v1, params.AdminLogsHandler)
		RegisterTokenUsageRoutes(v1, params.TokenUsageHandler)
	}

	return r
}

// RegisterTenantRoutes 注册租户相关的路由
func RegisterTenantRoutes(r *gin.RouterGroup, handler *handler.TenantHandler) {
	// 租户路由组
	tenantRoutes := r.Group("/tenants")
	{
		tenantRoutes.POST("", handler.CreateTenant)
		tenantRoutes.GET("/:id", handler.GetTenant)
		tenantRoutes.PUT("/:id", handler.UpdateTenant)
		tenantRoutes.DELETE("/:id", handler.DeleteTenant)
		tenantRoutes.GET("", handler.ListTenants)
	}
}

// RegisterModelRoutes 注册模型相关的路由
func RegisterModelRoutes(r *gin.RouterGroup, handler *handler.ModelHandler) {
	// 模型路由组
	models := r.Group("/models")
	{
		// 创建模型
		models.POST("", handler.CreateModel)
		// 获取模型列表
		models.GET("", handler.ListModels)
		// 获取单个模型
		models.GET("/:id", handler.GetModel)
		// 更新模型
		models.PUT("/:id", handler.UpdateModel)
		// 删除模型
		models.DELETE("/:id", handler.DeleteModel)
	}
}

// RegisterAuthRoutes registers authentication routes
func RegisterAuthRoutes(r *gin.RouterGroup, handler *handler.AuthHandler) {
	r.POST("/auth/register", handler.Register)
	r.POST("/auth/login", handler.Login)
	r.POST("/auth/refresh", handler.RefreshToken)
	r.GET("/auth/validate", handler.ValidateToken)
	r.POST("/auth/logout", handler.Logout)
	r.GET("/auth/me", handler.GetCurrentUser)
	r.POST("/auth/change-password", handler.ChangePassword)
}

// RegisterSystemRoutes registers system information routes
func RegisterSystemRoutes(r *gin.RouterGroup, handler *handler.SystemHandler) {
	systemRoutes := r.Group("/system")
	{
		systemRoutes.GET("/info", handler.GetSystemInfo)
	}
}

// RegisterSearchRoutes registers the RAG pipeline's synchronous search endpoint.
func RegisterSearchRoutes(r *gin.RouterGroup, handler *handler.SearchHandler) {
	r.POST("/search", handler.Search)
}

// RegisterWSRoutes registers the real-time chat socket.
func RegisterWSRoutes(r *gin.RouterGroup, handler *handler.ChatWSHandler) {
	r.GET("/ws/chat", handler.Handle)
}

// RegisterAdminLogRoutes registers the pipeline log tail and live stream endpoints.
func RegisterAdminLogRoutes(r *gin.RouterGroup, handler *handler.AdminLogsHandler) {
	logs := r.Group("/admin/logs")
	{
		logs.GET("", handler.Tail)
		logs.GET("/stream", handler.Stream)
	}
}

// RegisterTokenUsageRoutes registers token usage stats and warning acknowledgement.
func RegisterTokenUsageRoutes(r *gin.RouterGroup, handler *handler.TokenUsageHandler) {
	tokenUsage := r.Group("/token-usage")
	{
		tokenUsage.GET("/stats", handler.Stats)
		tokenUsage.POST("/warnings/:id/ack", handler.AcknowledgeWarning)
	}
}
