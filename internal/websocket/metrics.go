package websocket

import (
	"sync"
	"time"
)

// HubMetrics - счетчики WebSocket-хаба
type HubMetrics struct {
	totalConnections  int64
	activeConnections int64
	messagesSent      int64
	messagesReceived  int64
	connectionErrors  int64
	startTime         time.Time

	// Счетчики входящих сообщений по типам
	messageTypeCounts map[string]int64

	mu sync.RWMutex
}

// NewHubMetrics создает новый экземпляр метрик
func NewHubMetrics() *HubMetrics {
	return &HubMetrics{
		startTime:         time.Now(),
		messageTypeCounts: make(map[string]int64),
	}
}

// IncrementTotalConnections учитывает новое подключение
func (m *HubMetrics) IncrementTotalConnections() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalConnections++
	m.activeConnections++
}

// DecrementActiveConnections учитывает отключение
func (m *HubMetrics) DecrementActiveConnections() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.activeConnections > 0 {
		m.activeConnections--
	}
}

func (m *HubMetrics) AddMessageSent(count int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messagesSent += count
}

// AddMessageReceived учитывает входящее сообщение указанного типа
func (m *HubMetrics) AddMessageReceived(messageType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messagesReceived++
	if messageType != "" {
		m.messageTypeCounts[messageType]++
	}
}

func (m *HubMetrics) AddConnectionError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectionErrors++
}

// GetMetrics возвращает снимок метрик
func (m *HubMetrics) GetMetrics() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	typeCounts := make(map[string]int64, len(m.messageTypeCounts))
	for k, v := range m.messageTypeCounts {
		typeCounts[k] = v
	}

	return map[string]interface{}{
		"total_connections":   m.totalConnections,
		"active_connections":  m.activeConnections,
		"messages_sent":       m.messagesSent,
		"messages_received":   m.messagesReceived,
		"connection_errors":   m.connectionErrors,
		"message_type_counts": typeCounts,
		"uptime_seconds":      int64(time.Since(m.startTime).Seconds()),
	}
}
