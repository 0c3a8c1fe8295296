package routes

import (
	"context"
	"errors"
	"net/http"
	"time"

	"hmo-chatbot-backend/internal/logger"
	"hmo-chatbot-backend/internal/telemetry"
	"hmo-chatbot-backend/middleware"
	"hmo-chatbot-backend/models"
	"hmo-chatbot-backend/services"
	"hmo-chatbot-backend/utils"

	"github.com/gin-gonic/gin"
)

// turnTimeout bounds one full chat turn including embedding and generation.
const turnTimeout = 60 * time.Second

func SetupChatRoutes(router *gin.Engine, chatService *services.ChatService, metrics *telemetry.Metrics) {
	router.POST("/chat", func(c *gin.Context) {
		var req models.ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "invalid_input",
				"Invalid request data", gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), turnTimeout)
		defer cancel()

		reply, phase, err := chatService.HandleTurn(ctx, req.History, req.Message)
		if err != nil {
			requestID := middleware.GetRequestID(c)
			switch {
			case errors.Is(err, services.ErrGenerationUnavailable):
				logger.Error("Generation provider unavailable", "error", err, "request_id", requestID)
				utils.RespondWithUnavailable(c, "generation_unavailable",
					"The answering service is temporarily unavailable. Please try again shortly.")
			case errors.Is(err, services.ErrEmbeddingUnavailable):
				logger.Error("Embedding provider unavailable", "error", err, "request_id", requestID)
				utils.RespondWithUnavailable(c, "embedding_unavailable",
					"The answering service is temporarily unavailable. Please try again shortly.")
			default:
				logger.Error("Chat turn failed", "error", err, "request_id", requestID)
				utils.RespondWithInternalError(c, "Something went wrong processing your message", nil)
			}
			return
		}

		if metrics != nil {
			metrics.RecordTurn(string(phase))
		}
		c.JSON(http.StatusOK, models.ChatResponse{
			Reply:     reply,
			Phase:     phase,
			Timestamp: time.Now().UTC(),
		})
	})
}

// SetupHealthRoutes registers liveness and readiness probes.
func SetupHealthRoutes(router *gin.Engine, index *services.IndexProvider) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC(),
		})
	})

	router.GET("/ready", func(c *gin.Context) {
		if index.Load() == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "index not built",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
}
