package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"github.com/yourusername/quiz-app/internal/handler/dto"
	"github.com/yourusername/quiz-app/internal/pkg/logger"
	"github.com/yourusername/quiz-app/internal/service"
	"github.com/yourusername/quiz-app/internal/service/quizengine"
	"github.com/yourusername/quiz-app/internal/websocket"
)

// wsEnvelopeOverhead - запас на конверт {"type":...,"data":...} поверх лимита документа
const wsEnvelopeOverhead = 4 * 1024

// WSHandler обрабатывает WebSocket соединения
type WSHandler struct {
	session      *service.QuizSession
	wsHub        *websocket.Hub
	wsManager    *websocket.Manager
	upgrader     gorillaws.Upgrader
	clientConfig websocket.ClientConfig
	unsubscribe  func()
	log          *logger.Logger
}

// NewWSHandler создает обработчик WebSocket и подписывает его на изменения сессии:
// после каждой успешной команды (HTTP или WebSocket) всем клиентам рассылается VIEW.
func NewWSHandler(
	session *service.QuizSession,
	wsHub *websocket.Hub,
	wsManager *websocket.Manager,
	allowedOrigins []string,
	maxUploadBytes int64,
	log *logger.Logger,
) *WSHandler {
	clientConfig := websocket.DefaultClientConfig()
	clientConfig.MaxMessageSize = maxUploadBytes + wsEnvelopeOverhead

	h := &WSHandler{
		session:      session,
		wsHub:        wsHub,
		wsManager:    wsManager,
		clientConfig: clientConfig,
		log:          log.With("component", "ws_handler"),
	}
	h.upgrader = gorillaws.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     h.originChecker(allowedOrigins),
	}

	h.registerMessageHandlers()
	h.unsubscribe = session.Subscribe(func(snap quizengine.Snapshot) {
		if err := wsManager.BroadcastEvent(websocket.VIEW, dto.NewQuizView(snap)); err != nil {
			h.log.Error("Failed to broadcast view", "error", err)
		}
	})
	return h
}

// Close отписывает обработчик от сессии
func (h *WSHandler) Close() {
	h.unsubscribe()
}

// originChecker разрешает клиентов без Origin (не браузер) и origin из списка CORS
func (h *WSHandler) originChecker(allowedOrigins []string) func(r *http.Request) bool {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := allowed[origin]; ok {
			return true
		}
		// Фронтенд, раздаваемый этим же сервером
		if origin == "http://"+r.Host || origin == "https://"+r.Host {
			return true
		}
		h.log.Warn("WebSocket: rejected unauthorized origin", "origin", origin)
		return false
	}
}

// HandleConnection обрабатывает входящее WebSocket соединение
// GET /ws
func (h *WSHandler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade уже записал ответ с ошибкой
		h.log.Warn("Error upgrading connection", "error", err)
		return
	}

	client := websocket.NewClientWithConfig(h.wsHub, conn, h.clientConfig)
	h.log.Debug("WebSocket connection upgraded", "conn_id", client.ConnectionID)

	client.StartPumps(h.wsManager.HandleMessage)

	// Новый клиент сразу получает текущий экран
	h.sendView(client, h.session.Snapshot())
}

// registerMessageHandlers регистрирует обработчики команд клиента
func (h *WSHandler) registerMessageHandlers() {
	h.wsManager.RegisterHandler(websocket.LOAD_SAMPLE, func(_ json.RawMessage, client *websocket.Client) error {
		_, err := h.session.LoadSample(context.Background())
		h.replyError(client, err)
		return nil
	})

	h.wsManager.RegisterHandler(websocket.LOAD_QUIZ, func(data json.RawMessage, client *websocket.Client) error {
		_, err := h.session.LoadDocument(documentBytes(data))
		h.replyError(client, err)
		return nil
	})

	h.wsManager.RegisterHandler(websocket.SELECT_CHOICE, func(data json.RawMessage, client *websocket.Client) error {
		var payload struct {
			Index *int `json:"index"`
		}
		if err := json.Unmarshal(data, &payload); err != nil || payload.Index == nil {
			h.wsManager.SendErrorToClient(client, websocket.ErrorData{
				Code:    "invalid_format",
				Message: fmt.Sprintf("%s requires data {\"index\": N}", websocket.SELECT_CHOICE),
			})
			return nil
		}
		_, err := h.session.SelectChoice(*payload.Index)
		h.replyError(client, err)
		return nil
	})

	h.wsManager.RegisterHandler(websocket.NEXT, func(_ json.RawMessage, client *websocket.Client) error {
		_, err := h.session.Advance()
		h.replyError(client, err)
		return nil
	})

	h.wsManager.RegisterHandler(websocket.SUBMIT, func(_ json.RawMessage, client *websocket.Client) error {
		_, err := h.session.Submit()
		h.replyError(client, err)
		return nil
	})

	h.wsManager.RegisterHandler(websocket.RESTART, func(_ json.RawMessage, _ *websocket.Client) error {
		h.session.Restart()
		return nil
	})

	h.wsManager.RegisterHandler(websocket.GET_VIEW, func(_ json.RawMessage, client *websocket.Client) error {
		h.sendView(client, h.session.Snapshot())
		return nil
	})
}

// documentBytes принимает документ как JSON-объект или как строку с текстом файла
func documentBytes(data json.RawMessage) []byte {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		return []byte(text)
	}
	return data
}

func (h *WSHandler) sendView(client *websocket.Client, snap quizengine.Snapshot) {
	if err := h.wsManager.SendEventToClient(client, websocket.VIEW, dto.NewQuizView(snap)); err != nil {
		h.log.Error("Failed to send view", "conn_id", client.ConnectionID, "error", err)
	}
}

// replyError отправляет ERROR клиенту; успешные команды подтверждаются рассылкой VIEW
func (h *WSHandler) replyError(client *websocket.Client, err error) {
	if err == nil {
		return
	}
	status, resp := errorResponse(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("Internal error in WebSocket command", "conn_id", client.ConnectionID, "error", err)
	}
	h.wsManager.SendErrorToClient(client, websocket.ErrorData{
		Code:           resp.Code,
		Message:        resp.Error,
		ExpectedFormat: resp.ExpectedFormat,
	})
}
