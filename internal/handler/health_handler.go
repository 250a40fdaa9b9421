package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/yourusername/quiz-app/internal/service"
	"github.com/yourusername/quiz-app/internal/websocket"
)

const healthPingTimeout = time.Second

// HealthHandler отдает состояние сервиса
type HealthHandler struct {
	session     *service.QuizSession
	wsManager   *websocket.Manager
	redisClient redis.UniversalClient // nil, если Redis отключен
}

// NewHealthHandler создает обработчик /health
func NewHealthHandler(session *service.QuizSession, wsManager *websocket.Manager, redisClient redis.UniversalClient) *HealthHandler {
	return &HealthHandler{
		session:     session,
		wsManager:   wsManager,
		redisClient: redisClient,
	}
}

// Health возвращает 200, если сервис работает. Недоступный Redis не делает сервис нездоровым:
// кеш и лимитер работают в режиме fail-open.
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	redisStatus := "disabled"
	if h.redisClient != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
		defer cancel()
		if err := h.redisClient.Ping(ctx).Err(); err != nil {
			redisStatus = "unavailable"
		} else {
			redisStatus = "ok"
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"quiz_state": h.session.State(),
		"redis":      redisStatus,
		"websocket":  h.wsManager.GetMetrics(),
	})
}
