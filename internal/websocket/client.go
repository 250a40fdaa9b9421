package websocket

import (
	"bytes"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Время, которое разрешено писать сообщение клиенту.
	writeWait = 10 * time.Second

	// Время, которое разрешено клиенту читать следующее сообщение.
	pongWait = 30 * time.Second

	// Периодичность отправки ping-сообщений клиенту.
	pingPeriod = (pongWait * 9) / 10

	// Максимальный размер входящего сообщения по умолчанию
	maxMessageSize = 64 * 1024

	// Размер буфера по умолчанию для канала отправки сообщений клиенту
	defaultClientBufferSize = 32

	// Время ожидания регистрации в хабе
	registrationTimeout = 5 * time.Second
)

var (
	newline = []byte{'\n'}
	space   = []byte{' '}
)

// ClientConfig содержит настройки для клиента
type ClientConfig struct {
	// BufferSize определяет размер буфера канала отправки сообщений
	BufferSize int

	// PingInterval определяет интервал между ping-сообщениями
	PingInterval time.Duration

	// PongWait определяет время ожидания pong-ответа
	PongWait time.Duration

	// WriteWait определяет тайм-аут для записи сообщений
	WriteWait time.Duration

	// MaxMessageSize определяет максимальный размер входящего сообщения.
	// LOAD_QUIZ несет документ целиком, поэтому лимит согласуется с лимитом загрузки.
	MaxMessageSize int64
}

// DefaultClientConfig возвращает конфигурацию клиента по умолчанию
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BufferSize:     defaultClientBufferSize,
		PingInterval:   pingPeriod,
		PongWait:       pongWait,
		WriteWait:      writeWait,
		MaxMessageSize: maxMessageSize,
	}
}

// MessageHandler обрабатывает одно входящее сообщение.
// Ошибка считается фатальной для соединения.
type MessageHandler func(message []byte, client *Client) error

// Client является посредником между WebSocket соединением и hub.
type Client struct {
	// Уникальный ID для каждого соединения
	ConnectionID string

	hub    *Hub
	conn   *websocket.Conn
	config ClientConfig

	// Буферизованный канал для исходящих сообщений
	send       chan []byte
	sendMu     sync.RWMutex
	sendClosed bool

	// Счетчик переполнений буфера подряд
	bufferWarnings atomic.Int32

	// Сигнал о завершении регистрации в хабе
	registrationComplete chan struct{}

	closeOnce sync.Once
}

// NewClient создает нового клиента с конфигурацией по умолчанию
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return NewClientWithConfig(hub, conn, DefaultClientConfig())
}

// NewClientWithConfig создает нового клиента с указанной конфигурацией
func NewClientWithConfig(hub *Hub, conn *websocket.Conn, config ClientConfig) *Client {
	defaults := DefaultClientConfig()
	if config.BufferSize <= 0 {
		config.BufferSize = defaults.BufferSize
	}
	if config.PingInterval <= 0 {
		config.PingInterval = defaults.PingInterval
	}
	if config.PongWait <= 0 {
		config.PongWait = defaults.PongWait
	}
	if config.WriteWait <= 0 {
		config.WriteWait = defaults.WriteWait
	}
	if config.MaxMessageSize <= 0 {
		config.MaxMessageSize = defaults.MaxMessageSize
	}

	return &Client{
		ConnectionID:         uuid.New().String(),
		hub:                  hub,
		conn:                 conn,
		config:               config,
		send:                 make(chan []byte, config.BufferSize),
		registrationComplete: make(chan struct{}, 1),
	}
}

// StartPumps регистрирует клиента в хабе и запускает горутины чтения и записи
func (c *Client) StartPumps(messageHandler MessageHandler) {
	if !c.hub.Register(c) {
		c.hub.log.Warn("Hub is stopped, closing connection", "conn_id", c.ConnectionID)
		c.closeConn()
		return
	}

	select {
	case <-c.registrationComplete:
	case <-time.After(registrationTimeout):
		c.hub.log.Warn("Timeout waiting for client registration", "conn_id", c.ConnectionID)
		c.closeConn()
		return
	}

	go c.writePump()
	go c.readPump(messageHandler)
}

// readPump читает сообщения от клиента и передает их обработчику
func (c *Client) readPump(messageHandler MessageHandler) {
	defer func() {
		c.hub.Unregister(c)
		c.closeConn()
	}()

	c.conn.SetReadLimit(c.config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.hub.log.Warn("WebSocket read error", "conn_id", c.ConnectionID, "error", err)
			}
			return
		}

		if handlerErr := c.safeHandleMessage(message, messageHandler); handlerErr != nil {
			c.hub.log.Error("WebSocket handler error, closing connection", "conn_id", c.ConnectionID, "error", handlerErr)
			return
		}
	}
}

// safeHandleMessage вызывает обработчик с recover
func (c *Client) safeHandleMessage(message []byte, messageHandler MessageHandler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			c.hub.log.Error("PANIC recovered in message handler", "conn_id", c.ConnectionID, "panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("panic recovered: %v", r)
		}
	}()
	message = bytes.TrimSpace(bytes.Replace(message, newline, space, -1))
	if messageHandler == nil {
		return nil
	}
	return messageHandler(message, c)
}

// writePump отправляет сообщения клиенту из канала send
func (c *Client) writePump() {
	ticker := time.NewTicker(c.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.closeConn()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait)); err != nil {
				return
			}
			if !ok {
				// Хаб закрыл канал клиента
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.hub.log.Warn("WebSocket write error", "conn_id", c.ConnectionID, "error", err)
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// enqueue кладет сообщение в буфер без блокировки. false - буфер полон или закрыт.
func (c *Client) enqueue(message []byte) bool {
	c.sendMu.RLock()
	defer c.sendMu.RUnlock()
	if c.sendClosed {
		return false
	}
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

// CloseSend безопасно закрывает канал send (только один раз).
// Возвращает true, если канал был закрыт этим вызовом.
func (c *Client) CloseSend() bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.sendClosed {
		return false
	}
	c.sendClosed = true
	close(c.send)
	return true
}

func (c *Client) closeConn() {
	c.closeOnce.Do(func() {
		if c.conn != nil {
			c.conn.Close()
		}
	})
}
