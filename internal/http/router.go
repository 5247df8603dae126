// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ridefare/internal/http/handlers"
	"ridefare/internal/http/middleware"
	"ridefare/internal/infra"
)

type RouterDeps struct {
	Quotes   handlers.QuoteService
	Configs  handlers.ConfigCache
	Verifier infra.TokenVerifier
	Log      *zap.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(deps.Log), middleware.Logging(deps.Log))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api", middleware.Auth(deps.Verifier))

	quoteHandler := handlers.NewQuoteHandler(deps.Quotes)
	api.POST("/quotes/compute", quoteHandler.Compute)
	api.GET("/quotes/:id", quoteHandler.Get)
	api.POST("/merchants/:merchantID/quotes", quoteHandler.Create)

	staff := api.Group("/merchants/:merchantID", middleware.RequireMerchantAccess())
	staff.GET("/quotes", quoteHandler.List)

	merchantHandler := handlers.NewMerchantHandler(deps.Configs)
	staff.DELETE("/config-cache", merchantHandler.InvalidateConfig)

	return r
}
