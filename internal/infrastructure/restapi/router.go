package restapi

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// RouterOptions configures the middleware and auxiliary routes.
type RouterOptions struct {
	Logger          *zap.Logger
	AllowOrigins    []string // empty allows every origin
	Metrics         bool
	SwaggerEnabled  bool
	SwaggerPath     string
	SwaggerSpecFile string
}

// SetupRouter builds the gin engine serving the portfolio API.
func SetupRouter(h *PortfolioHandler, opts RouterOptions) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	router := gin.New()

	corsConfig := cors.DefaultConfig()
	if len(opts.AllowOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = opts.AllowOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(ZapLoggerMiddleware(opts.Logger))
	router.Use(gin.Recovery())

	router.GET("/healthz", h.HealthHandler)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/portfolio", h.GetPortfolioHandler)
		v1.GET("/tokens", h.GetTokensHandler)
		v1.GET("/chart", h.GetChartHandler)
		v1.GET("/transactions", h.GetTransactionsHandler)
		v1.PUT("/wallets/:chain", h.ConnectWalletHandler)
		v1.DELETE("/wallets/:chain", h.DisconnectWalletHandler)
		v1.POST("/refresh", h.RefreshHandler)
		v1.DELETE("/session", h.ClearSessionHandler)
	}

	if opts.Metrics {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	if opts.SwaggerEnabled {
		path := strings.TrimRight(opts.SwaggerPath, "/")
		if path == "" {
			path = "/swagger"
		}
		router.StaticFile("/docs/swagger.yaml", opts.SwaggerSpecFile)
		router.GET(path+"/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/docs/swagger.yaml")))
		opts.Logger.Info("Swagger UI enabled", zap.String("path", path+"/index.html"))
	}

	return router
}
