package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/middleware"
	"app/internal/notify"
	repo "app/internal/repository"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler はリアルタイム通知のWebSocket入口。
// チャンネルjoinは本人確認つき（誰でもjoinできた元実装の穴は塞ぐ）。
type WSHandler struct {
	cfg         config.Config
	hub         *notify.Hub
	orders      repo.OrderRepository
	restaurants repo.RestaurantRepository
}

func NewWSHandler(cfg config.Config, hub *notify.Hub, orders repo.OrderRepository, restaurants repo.RestaurantRepository) *WSHandler {
	return &WSHandler{
		cfg:         cfg,
		hub:         hub,
		orders:      orders,
		restaurants: restaurants,
	}
}

func (h *WSHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", h.serve)
}

type wsClientMessage struct {
	Action  string `json:"action"`
	Channel string `json:"channel"`
}

type wsServerMessage struct {
	Event string `json:"event"`
	Data  string `json:"data"`
}

func (h *WSHandler) serve(c echo.Context) error {
	//tokenはクエリで受ける（ブラウザのWebSocketはヘッダを足せない）
	claims, err := middleware.ParseAccessToken(c.QueryParam("token"), h.cfg.JWTSecret)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Success: false, Message: "unauthorized"})
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Printf("ws upgrade: %v", err)
		return nil
	}

	//書き込みはackも配信もclientの1本のgoroutineに集約する
	client := notify.NewClient(conn)
	defer func() {
		h.hub.RemoveClient(client)
		client.Close()
	}()

	for {
		var msg wsClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return nil
		}

		if msg.Action != "join" {
			client.SendJSON(wsServerMessage{Event: "error", Data: "unknown action"})
			continue
		}

		if err := h.authorizeJoin(c.Request().Context(), claims, msg.Channel); err != nil {
			client.SendJSON(wsServerMessage{Event: "error", Data: err.Error()})
			continue
		}

		h.hub.Join(msg.Channel, client)
		client.SendJSON(wsServerMessage{Event: "joined", Data: msg.Channel})
	}
}

// authorizeJoin はチャンネルの種類ごとにjoin権限を確認する。
//   - user_{id}:       本人のみ
//   - order_{id}:      注文者・レストランのオーナー・admin
//   - restaurant_{id}: レストランのオーナー・admin
func (h *WSHandler) authorizeJoin(ctx context.Context, claims middleware.AccessClaims, channel string) error {
	kind, id, ok := splitChannel(channel)
	if !ok {
		return errors.New("invalid channel")
	}

	isAdmin := claims.Role == string(model.RoleAdmin)

	switch kind {
	case "user":
		if isAdmin || id == claims.UserID {
			return nil
		}
		return errors.New("forbidden")

	case "order":
		if isAdmin {
			return nil
		}
		o, err := h.orders.FindByID(ctx, id)
		if err != nil {
			return errors.New("forbidden")
		}
		if o.CustomerID == claims.UserID {
			return nil
		}
		r, err := h.restaurants.FindByID(ctx, o.RestaurantID)
		if err == nil && r.OwnerID == claims.UserID {
			return nil
		}
		return errors.New("forbidden")

	case "restaurant":
		if isAdmin {
			return nil
		}
		r, err := h.restaurants.FindByID(ctx, id)
		if err == nil && r.OwnerID == claims.UserID {
			return nil
		}
		return errors.New("forbidden")

	default:
		return errors.New("invalid channel")
	}
}

func splitChannel(channel string) (kind string, id int64, ok bool) {
	i := strings.LastIndex(channel, "_")
	if i <= 0 || i == len(channel)-1 {
		return "", 0, false
	}
	id, err := strconv.ParseInt(channel[i+1:], 10, 64)
	if err != nil || id <= 0 {
		return "", 0, false
	}
	return channel[:i], id, true
}
