package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lucaprinsss/Participium-sub003/internal/http/handler/webhook"
)

type RouterConfig struct {
	// WebhookPath is empty when updates arrive by long polling.
	WebhookPath   string
	WebhookSecret string
}

type Deps struct {
	Dispatcher webhook.Dispatcher
	Metrics    http.Handler
}

func SetupRoutes(router *gin.Engine, deps Deps, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics))
	}

	if cfg.WebhookPath != "" {
		h := webhook.NewTelegramWebhookHandler(deps.Dispatcher, cfg.WebhookSecret)
		TelegramRouter(router.Group(cfg.WebhookPath), h)
	}
}

func TelegramRouter(router *gin.RouterGroup, handler *webhook.TelegramWebhookHandler) {
	router.POST("", handler.HandleUpdate)
}
