package notify

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// イベント配信の約束。配信は投げっぱなし（再送なし）。
type Publisher interface {
	Publish(channel string, event string, payload interface{})
}

// チャンネル名の規約
func RestaurantChannel(restaurantID int64) string {
	return fmt.Sprintf("restaurant_%d", restaurantID)
}

func OrderChannel(orderID int64) string {
	return fmt.Sprintf("order_%d", orderID)
}

func UserChannel(userID int64) string {
	return fmt.Sprintf("user_%d", userID)
}

type eventFrame struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Client は1本のWebSocket接続への唯一の書き込み口。
// gorillaの接続は同時書き込みを許さないため、ハンドラのackも
// hubの配信もすべてここのキュー経由で1本のgoroutineが書く。
type Client struct {
	conn *websocket.Conn

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func NewClient(conn *websocket.Conn) *Client {
	c := &Client{
		conn: conn,
		send: make(chan []byte, 32),
	}
	go c.writeLoop()
	return c
}

func (c *Client) writeLoop() {
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Printf("notify: write: %v", err)
			break
		}
	}
	c.conn.Close()
}

// Send はキューに積むだけで待たない。queueが一杯のclientには捨てる。
func (c *Client) Send(msg []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- msg:
	default:
		//遅いclientを全体の足かせにしない
	}
}

func (c *Client) SendJSON(v interface{}) {
	raw, err := json.Marshal(v)
	if err != nil {
		log.Printf("notify: marshal: %v", err)
		return
	}
	c.Send(raw)
}

// Close は書き込みgoroutineを止めて接続を閉じる。二重呼び出し可。
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// Hub はチャンネルごとの接続集合を持つWebSocketファンアウト。
type Hub struct {
	mu    sync.Mutex
	rooms map[string]map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[*Client]bool),
	}
}

func (h *Hub) Join(channel string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[channel]
	if !ok {
		room = make(map[*Client]bool)
		h.rooms[channel] = room
	}
	room[client] = true
}

// RemoveClient は切断されたclientを全チャンネルから外す。
func (h *Hub) RemoveClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for channel, room := range h.rooms {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, channel)
		}
	}
}

// Publish はチャンネルの全clientへ {event, data} を積む。
// lockは購読者の写しを取る間だけ持ち、書き込み自体は各clientの
// goroutineに任せる。失敗はログのみで呼び出し元へ返さない。
func (h *Hub) Publish(channel string, event string, payload interface{}) {
	frame, err := json.Marshal(eventFrame{Event: event, Data: payload})
	if err != nil {
		log.Printf("notify: marshal event %s: %v", event, err)
		return
	}

	h.mu.Lock()
	room := h.rooms[channel]
	subs := make([]*Client, 0, len(room))
	for c := range room {
		subs = append(subs, c)
	}
	h.mu.Unlock()

	for _, c := range subs {
		c.Send(frame)
	}
}
