package restapi

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"wallet_dashboard/internal/infrastructure/configloader"
	"wallet_dashboard/internal/pkg/logger"
)

// RouterDeps is everything SetupRouter wires into the engine.
type RouterDeps struct {
	Catalog  *CatalogHandler
	Sessions *SessionHandler
	Gatherer prometheus.Gatherer
	Server   configloader.ServerConfig
	Swagger  configloader.SwaggerConfig
	Logger   *zap.Logger
}

// SetupRouter настраивает и возвращает экземпляр Gin роутера.
func SetupRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	corsConfig := cors.DefaultConfig()
	if len(deps.Server.AllowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = deps.Server.AllowedOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	if deps.Logger != nil {
		router.Use(logger.GinMiddleware(deps.Logger))
	}
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		respond(c, http.StatusOK, nil, "ok")
	})
	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/networks", deps.Catalog.ListNetworksHandler)
		v1.GET("/connectors", deps.Catalog.ListConnectorsHandler)

		sessions := v1.Group("/sessions")
		sessions.POST("", deps.Sessions.CreateSessionHandler)
		sessions.GET("/:id", deps.Sessions.GetSessionHandler)
		sessions.DELETE("/:id", deps.Sessions.DeleteSessionHandler)
		sessions.PUT("/:id/network", deps.Sessions.SelectNetworkHandler)
		sessions.POST("/:id/connect", deps.Sessions.ConnectHandler)
		sessions.POST("/:id/disconnect", deps.Sessions.DisconnectHandler)
		sessions.GET("/:id/dashboard", deps.Sessions.DashboardHandler)
	}

	// The OpenAPI document is a static file; gin-swagger only renders the UI around it.
	if deps.Swagger.Enabled {
		router.StaticFile("/docs/swagger.yaml", deps.Swagger.SpecFile)
		swaggerURL := ginSwagger.URL("/docs/swagger.yaml")
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, swaggerURL))
	}

	return router
}
