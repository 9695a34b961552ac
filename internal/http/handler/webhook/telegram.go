package webhook

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/lucaprinsss/Participium-sub003/internal/bot"
	"github.com/lucaprinsss/Participium-sub003/internal/chat"
	"github.com/lucaprinsss/Participium-sub003/internal/gateway"
)

const secretHeader = "X-Telegram-Bot-Api-Secret-Token"

type Dispatcher interface {
	Dispatch(ctx context.Context, u chat.Update) error
}

type TelegramWebhookHandler struct {
	dispatcher Dispatcher
	secret     string
}

// NewTelegramWebhookHandler builds the handler. An empty secret disables the
// header check, which is only acceptable outside production.
func NewTelegramWebhookHandler(dispatcher Dispatcher, secret string) *TelegramWebhookHandler {
	return &TelegramWebhookHandler{
		dispatcher: dispatcher,
		secret:     secret,
	}
}

func (h *TelegramWebhookHandler) HandleUpdate(c *gin.Context) {
	ctx := c.Request.Context()

	if h.secret != "" {
		got := c.GetHeader(secretHeader)
		if got == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing webhook token"})
			return
		}
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook token"})
			return
		}
	}

	var raw tgbotapi.Update
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	u, ok := gateway.Decode(raw)
	if !ok {
		// Telegram retries anything that is not 2xx; unsupported updates are acknowledged.
		slog.DebugContext(ctx, "ignoring unsupported telegram update", "update_id", raw.UpdateID)
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	if err := h.dispatcher.Dispatch(ctx, u); err != nil {
		if errors.Is(err, bot.ErrShuttingDown) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "shutting down"})
			return
		}
		slog.ErrorContext(ctx, "failed to dispatch telegram update",
			"error", err,
			"update_id", u.ID,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process update"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
