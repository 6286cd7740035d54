package notify_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"app/internal/notify"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelNames(t *testing.T) {
	assert.Equal(t, "restaurant_1", notify.RestaurantChannel(1))
	assert.Equal(t, "order_42", notify.OrderChannel(42))
	assert.Equal(t, "user_10", notify.UserChannel(10))
}

// hubServerはクエリのchannelにそのままJoinするテスト用エンドポイント。
// サーバ側で作ったclientはchanで受け取れる。
func hubServer(t *testing.T, hub *notify.Hub, clients chan<- *notify.Client) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		client := notify.NewClient(conn)
		hub.Join(r.URL.Query().Get("channel"), client)
		if clients != nil {
			clients <- client
		}
	}))
}

func dialChannel(t *testing.T, srv *httptest.Server, channel string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?channel=" + channel
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func TestHub_Publish_FansOutToChannel(t *testing.T) {
	hub := notify.NewHub()
	srv := hubServer(t, hub, nil)
	defer srv.Close()

	sub1 := dialChannel(t, srv, "order_42")
	defer sub1.Close()
	sub2 := dialChannel(t, srv, "order_42")
	defer sub2.Close()
	other := dialChannel(t, srv, "order_99")
	defer other.Close()

	//Joinはupgrade直後に走るが、念のため少し待つ
	time.Sleep(50 * time.Millisecond)

	hub.Publish("order_42", "orderStatusUpdated", map[string]string{"status": "preparing"})

	for _, sub := range []*websocket.Conn{sub1, sub2} {
		sub.SetReadDeadline(time.Now().Add(time.Second))
		_, raw, err := sub.ReadMessage()
		require.NoError(t, err)

		var frame struct {
			Event string            `json:"event"`
			Data  map[string]string `json:"data"`
		}
		require.NoError(t, json.Unmarshal(raw, &frame))
		assert.Equal(t, "orderStatusUpdated", frame.Event)
		assert.Equal(t, "preparing", frame.Data["status"])
	}

	//別チャンネルには届かない
	other.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err := other.ReadMessage()
	assert.Error(t, err)
}

func TestHub_Publish_EmptyChannel_NoPanic(t *testing.T) {
	hub := notify.NewHub()
	hub.Publish("order_1", "orderCreated", map[string]int{"order_id": 1})
}

func TestHub_RemoveClient_StopsDelivery(t *testing.T) {
	hub := notify.NewHub()
	clients := make(chan *notify.Client, 1)
	srv := hubServer(t, hub, clients)
	defer srv.Close()

	sub := dialChannel(t, srv, "user_10")
	defer sub.Close()

	client := <-clients

	hub.Publish("user_10", "orderPaymentUpdated", map[string]string{"payment_status": "success"})

	sub.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err := sub.ReadMessage()
	require.NoError(t, err)

	//外したclientには届かない
	hub.RemoveClient(client)
	hub.Publish("user_10", "orderPaymentUpdated", map[string]string{"payment_status": "failed"})

	sub.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err = sub.ReadMessage()
	assert.Error(t, err)
}

// hub配信とハンドラ側ackが同じ接続へ同時に走っても、
// 書き込みは1本のgoroutineに直列化されている（-race で検証できる）。
func TestHub_ConcurrentPublishAndAcks(t *testing.T) {
	hub := notify.NewHub()
	clients := make(chan *notify.Client, 1)
	srv := hubServer(t, hub, clients)
	defer srv.Close()

	sub := dialChannel(t, srv, "order_1")
	defer sub.Close()

	//受信側は読み捨てて書き込みを詰まらせない
	go func() {
		for {
			if _, _, err := sub.ReadMessage(); err != nil {
				return
			}
		}
	}()

	client := <-clients

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			hub.Publish("order_1", "orderStatusUpdated", map[string]int{"seq": i})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			client.SendJSON(map[string]string{"event": "joined", "data": "order_1"})
		}
	}()
	wg.Wait()

	hub.RemoveClient(client)
	client.Close()
}

// Closeは二重に呼んでも落ちず、Close後のSendは何もしない。
func TestClient_CloseIdempotent(t *testing.T) {
	hub := notify.NewHub()
	clients := make(chan *notify.Client, 1)
	srv := hubServer(t, hub, clients)
	defer srv.Close()

	sub := dialChannel(t, srv, "user_1")
	defer sub.Close()

	client := <-clients
	client.Close()
	client.Close()
	client.Send([]byte("late"))
	client.SendJSON(map[string]string{"event": "late"})
}
