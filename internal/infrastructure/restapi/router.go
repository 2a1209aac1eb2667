package restapi

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// RouterOptions tunes the router beyond the API routes themselves.
type RouterOptions struct {
	// SwaggerEnabled mounts the Swagger UI backed by the static
	// specification file.
	SwaggerEnabled bool
	// SwaggerSpecPath is the on-disk path of the swagger.yaml served to
	// the UI.
	SwaggerSpecPath string
}

// SetupRouter builds the gin engine: CORS, zap request logging, recovery,
// health and metrics endpoints, and the v1 quoting API.
func SetupRouter(handler *QuoteHandler, streamHandler *QuoteStreamHandler, logger *zap.Logger, opts RouterOptions) *gin.Engine {
	router := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	router.Use(cors.New(corsConfig))

	router.Use(ZapLoggerMiddleware(logger))
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/quote", handler.GetQuoteHandler)
		v1.GET("/chains", handler.ListChainsHandler)
		v1.GET("/chains/:chain/tokens", handler.ListTokensHandler)
		if streamHandler != nil {
			v1.GET("/quote/stream", streamHandler.StreamQuotesHandler)
		}
	}

	if opts.SwaggerEnabled {
		specPath := opts.SwaggerSpecPath
		if specPath == "" {
			specPath = "./docs/swagger.yaml"
		}
		// The OpenAPI document is a hand-maintained static file, so the
		// UI points at it directly instead of generated docs.
		router.StaticFile("/docs/swagger.yaml", specPath)
		swaggerURL := ginSwagger.URL("/docs/swagger.yaml")
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, swaggerURL))
	}

	return router
}
