package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"jdlmedia/core/apperr"
	"jdlmedia/logger"
	"jdlmedia/metrics"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 1 << 20
	sendBuffer     = 64
)

// Client 一条命令通道连接
type Client struct {
	Hub     *Hub
	Conn    *websocket.Conn
	OwnerID string

	send   chan []byte
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewClient 创建连接对应的客户端
func NewClient(hub *Hub, conn *websocket.Conn, ownerID string) *Client {
	return &Client{
		Hub:     hub,
		Conn:    conn,
		OwnerID: ownerID,
		send:    make(chan []byte, sendBuffer),
	}
}

// Hub 管理所有在线连接，按用户分组
type Hub struct {
	clients map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client

	mu   sync.RWMutex
	done chan struct{}
	once sync.Once
}

// NewHub 创建 Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run 启动 Hub 主循环
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case <-h.done:
			h.cleanup()
			return
		}
	}
}

// Stop 停止 Hub 并关闭所有连接的发送通道
func (h *Hub) Stop() {
	h.once.Do(func() { close(h.done) })
}

// Register 注册客户端
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.close()
	}
}

// Unregister 注销客户端
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Count 在线连接数
func (h *Hub) Count(ownerID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if ownerID == "" {
		n := 0
		for _, clients := range h.clients {
			n += len(clients)
		}
		return n
	}
	return len(h.clients[ownerID])
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.OwnerID] == nil {
		h.clients[client.OwnerID] = make(map[*Client]bool)
	}
	h.clients[client.OwnerID][client] = true
	metrics.WebSocketConnections.Inc()

	logger.Info("client registered",
		logger.Owner(client.OwnerID),
		logger.Int("connections", len(h.clients[client.OwnerID])))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.OwnerID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.clients, client.OwnerID)
	}
	client.close()
	metrics.WebSocketConnections.Dec()

	logger.Info("client unregistered", logger.Owner(client.OwnerID))
}

func (h *Hub) cleanup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.clients {
		for client := range clients {
			client.close()
			metrics.WebSocketConnections.Dec()
		}
	}
	h.clients = make(map[string]map[*Client]bool)
}

// close 关闭发送通道，WritePump 随之退出
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// enqueue 非阻塞写入发送队列，连接已关闭或队列满时丢弃
func (c *Client) enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		logger.Warn("send buffer full, dropping response", logger.Owner(c.OwnerID))
		return false
	}
}

// SendResponse 序列化并发送响应
func (c *Client) SendResponse(resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		logger.Error("marshal response failed", logger.Op(resp.Event), logger.ErrorField(err))
		data, _ = json.Marshal(Response{Event: resp.Event, RequestID: resp.RequestID, Errors: apperr.List{apperr.Internal}})
	}
	c.enqueue(data)
}

// ReadPump 读取命令，每条命令在独立的 goroutine 中执行，慢命令不阻塞后续命令
func (c *Client) ReadPump(ctx context.Context, dispatcher *Dispatcher) {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		c.wg.Wait()
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("websocket read error",
					logger.ErrorField(err),
					logger.Owner(c.OwnerID))
			}
			return
		}

		var req Request
		if err := json.Unmarshal(message, &req); err != nil || req.Event == "" {
			c.SendResponse(Response{Event: EventServerError, Errors: apperr.List{apperr.NoDataSent}})
			continue
		}

		c.wg.Add(1)
		go func(req Request) {
			defer c.wg.Done()
			c.SendResponse(dispatcher.Dispatch(ctx, c.OwnerID, req))
		}(req)
	}
}

// WritePump 一条响应一帧，定时发送 ping
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub 关闭了通道
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
