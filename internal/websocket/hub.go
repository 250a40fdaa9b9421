package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/yourusername/quiz-app/internal/pkg/logger"
)

const (
	// Размер очереди широковещательных сообщений
	broadcastBufferSize = 64

	// Максимальное количество переполнений буфера клиента до отключения
	maxBufferWarnings = 3
)

// Hub хранит подключенных клиентов и рассылает им сообщения.
// Регистрация, отключение и рассылка обрабатываются одной горутиной Run.
type Hub struct {
	clients    sync.Map // Ключ: *Client, Значение: struct{}
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	closeOnce  sync.Once

	metrics *HubMetrics
	log     *logger.Logger
}

// NewHub создает хаб. Для работы нужно запустить Run.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan []byte, broadcastBufferSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		metrics:    NewHubMetrics(),
		log:        log.With("component", "ws_hub"),
	}
}

// Run обрабатывает события хаба до отмены контекста или вызова Close
func (h *Hub) Run(ctx context.Context) {
	h.log.Info("WebSocket hub started")
	for {
		select {
		case client := <-h.register:
			h.handleRegister(client)
		case client := <-h.unregister:
			h.handleUnregister(client)
		case message := <-h.broadcast:
			h.handleBroadcast(message)
		case <-ctx.Done():
			h.Close()
			h.cleanupAllClients()
			h.log.Info("WebSocket hub stopped", "reason", ctx.Err())
			return
		case <-h.done:
			h.cleanupAllClients()
			h.log.Info("WebSocket hub stopped")
			return
		}
	}
}

// Close останавливает Run
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// Register регистрирует клиента. Возвращает false, если хаб уже остановлен.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister отключает клиента
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) handleRegister(client *Client) {
	h.clients.Store(client, struct{}{})
	h.metrics.IncrementTotalConnections()
	h.log.Debug("Client registered", "conn_id", client.ConnectionID)

	select {
	case client.registrationComplete <- struct{}{}:
	default:
	}
}

func (h *Hub) handleUnregister(client *Client) {
	if _, ok := h.clients.LoadAndDelete(client); !ok {
		return
	}
	client.closeConn()
	client.CloseSend()
	h.metrics.DecrementActiveConnections()
	h.log.Debug("Client unregistered", "conn_id", client.ConnectionID)
}

func (h *Hub) handleBroadcast(message []byte) {
	var delivered int64
	h.clients.Range(func(key, _ interface{}) bool {
		client := key.(*Client)
		if h.deliver(client, message) {
			delivered++
		}
		return true
	})
	h.metrics.AddMessageSent(delivered)
}

// deliver кладет сообщение в буфер клиента без блокировки.
// После maxBufferWarnings переполнений подряд клиент отключается.
func (h *Hub) deliver(client *Client, message []byte) bool {
	if client.enqueue(message) {
		client.bufferWarnings.Store(0)
		return true
	}

	warnings := client.bufferWarnings.Add(1)
	h.log.Warn("Client buffer full", "conn_id", client.ConnectionID, "warnings", warnings)
	if warnings >= maxBufferWarnings {
		h.log.Warn("Client exceeded buffer warnings, disconnecting", "conn_id", client.ConnectionID)
		if _, ok := h.clients.LoadAndDelete(client); ok {
			client.closeConn()
			client.CloseSend()
			h.metrics.DecrementActiveConnections()
			h.metrics.AddConnectionError()
		}
	}
	return false
}

func (h *Hub) cleanupAllClients() {
	h.clients.Range(func(key, _ interface{}) bool {
		client := key.(*Client)
		h.clients.Delete(client)
		client.closeConn()
		client.CloseSend()
		h.metrics.DecrementActiveConnections()
		return true
	})
}

// BroadcastBytes ставит сообщение в очередь рассылки всем клиентам
func (h *Hub) BroadcastBytes(message []byte) {
	select {
	case h.broadcast <- message:
	default:
		h.log.Warn("Broadcast channel full, message dropped")
	}
}

// BroadcastJSON рассылает JSON-сообщение всем клиентам
func (h *Hub) BroadcastJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.BroadcastBytes(data)
	return nil
}

// SendJSON отправляет JSON-сообщение одному клиенту
func (h *Hub) SendJSON(client *Client, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if h.deliver(client, data) {
		h.metrics.AddMessageSent(1)
	}
	return nil
}

// ClientCount возвращает количество подключенных клиентов
func (h *Hub) ClientCount() int {
	var count int
	h.clients.Range(func(_, _ interface{}) bool {
		count++
		return true
	})
	return count
}

// GetMetrics возвращает метрики хаба
func (h *Hub) GetMetrics() map[string]interface{} {
	metrics := h.metrics.GetMetrics()
	metrics["client_count"] = h.ClientCount()
	return metrics
}
