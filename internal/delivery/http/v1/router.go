package v1

import (
	"net/http"

	"github.com/mariocromia/centroservice/config"
	"github.com/mariocromia/centroservice/internal/abuse"
	"github.com/mariocromia/centroservice/internal/delivery/http/middleware"
	"github.com/mariocromia/centroservice/internal/delivery/http/response"
	"github.com/mariocromia/centroservice/internal/domain"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	ContactUC  domain.ContactUsecase
	TokenStore abuse.TokenStore
	Config     *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.Config.FrontendURL, deps.Config.Environment == "production")) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger()) // Use standard Gin logger
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler())

	// The form endpoint accepts POST only; anything else is 405, not 404.
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		response.Error(c, http.StatusMethodNotAllowed, "Método não permitido", nil)
	})

	// Health Check
	r.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, "System operational", nil)
	})

	// Public routes (no auth; the form is served to anonymous visitors)
	NewContactHandler(r, deps.ContactUC, deps.TokenStore, deps.Config)

	// Swagger
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
