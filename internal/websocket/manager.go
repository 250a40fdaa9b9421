package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/yourusername/quiz-app/internal/pkg/logger"
)

// Event представляет структуру WebSocket-сообщения
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// inboundEvent - входящее сообщение; data разбирает зарегистрированный обработчик
type inboundEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// EventHandler обрабатывает data конкретного типа сообщений
type EventHandler func(data json.RawMessage, client *Client) error

// Manager обрабатывает WebSocket сообщения
type Manager struct {
	hub            *Hub
	messageHandler map[string]EventHandler
	log            *logger.Logger
}

// NewManager создает новый менеджер WebSocket
func NewManager(hub *Hub, log *logger.Logger) *Manager {
	return &Manager{
		hub:            hub,
		messageHandler: make(map[string]EventHandler),
		log:            log.With("component", "ws_manager"),
	}
}

// RegisterHandler регистрирует обработчик для определенного типа сообщений
func (m *Manager) RegisterHandler(eventType string, handler EventHandler) {
	m.messageHandler[eventType] = handler
	m.log.Debug("Registered WebSocket handler", "type", eventType)
}

// HandleMessage обрабатывает входящее сообщение от клиента.
// Некорректный JSON и неизвестный тип не закрывают соединение: клиент получает ERROR.
func (m *Manager) HandleMessage(message []byte, client *Client) error {
	var event inboundEvent
	if err := json.Unmarshal(message, &event); err != nil {
		m.log.Info("Failed to unmarshal WebSocket message", "conn_id", client.ConnectionID, "error", err)
		m.hub.metrics.AddMessageReceived("")
		m.SendErrorToClient(client, ErrorData{Code: "invalid_message_format", Message: "Invalid JSON format"})
		return nil
	}
	m.hub.metrics.AddMessageReceived(event.Type)

	handler, ok := m.messageHandler[event.Type]
	if !ok {
		m.SendErrorToClient(client, ErrorData{Code: "unknown_message_type", Message: fmt.Sprintf("Unknown message type: %s", event.Type)})
		return nil
	}

	if err := handler(event.Data, client); err != nil {
		m.log.Error("WebSocket handler failed", "type", event.Type, "conn_id", client.ConnectionID, "error", err)
		return err
	}
	return nil
}

// SendErrorToClient отправляет сообщение ERROR клиенту. Соединение не закрывается.
func (m *Manager) SendErrorToClient(client *Client, data ErrorData) {
	if err := m.hub.SendJSON(client, Event{Type: ERROR, Data: data}); err != nil {
		m.log.Error("Failed to send error to client", "conn_id", client.ConnectionID, "error", err)
	}
}

// SendEventToClient отправляет событие одному клиенту
func (m *Manager) SendEventToClient(client *Client, eventType string, data interface{}) error {
	return m.hub.SendJSON(client, Event{Type: eventType, Data: data})
}

// BroadcastEvent отправляет событие всем клиентам
func (m *Manager) BroadcastEvent(eventType string, data interface{}) error {
	return m.hub.BroadcastJSON(Event{Type: eventType, Data: data})
}

// GetMetrics возвращает текущие метрики WebSocket-системы
func (m *Manager) GetMetrics() map[string]interface{} {
	return m.hub.GetMetrics()
}
