package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/speaklab/retell-be/internal/api/handler"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "retell-api-service",
		})
	})

	evaluationHandler := handler.NewEvaluationHandler(deps)

	// POST /evaluate-single-card - Queue a background card evaluation
	r.POST("/evaluate-single-card", evaluationHandler.SubmitEvaluation)

	// GET /get-single-card-result/:round_id/:card_id - Poll one card's job
	r.GET("/get-single-card-result/:round_id/:card_id", evaluationHandler.GetResult)

	// GET /get-round-summary/:round_id - Synchronous round summary
	r.GET("/get-round-summary/:round_id", evaluationHandler.GetRoundSummary)

	return r
}
