package usecase

import (
	"context"
	"errors"
	"net/http"

	"app/internal/domain/model"
	"app/internal/notify"
	repo "app/internal/repository"
)

type OrderUsecase struct {
	tx          repo.TransactionManager
	orders      repo.OrderRepository
	restaurants repo.RestaurantRepository
	payments    PaymentSettler
	pub         notify.Publisher
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	restaurants repo.RestaurantRepository,
	payments PaymentSettler,
	pub notify.Publisher,
) *OrderUsecase {
	return &OrderUsecase{
		tx:          tx,
		orders:      orders,
		restaurants: restaurants,
		payments:    payments,
		pub:         pub,
	}
}

type OrderItemInput struct {
	MenuItemID int64 `json:"menu_item_id"`
	Quantity   int64 `json:"quantity"`
}

type CreateOrderInput struct {
	RestaurantID    int64
	Items           []OrderItemInput
	CustomerNote    *string
	DeliveryAddress *string
}

// CreateOrder は注文作成の本体。
// 参照の検証・価格スナップショット・合計計算・order+items保存を
// 1トランザクションで行い、決済確定はコミット後に非同期で走らせる。
func (u *OrderUsecase) CreateOrder(ctx context.Context, customerID int64, in CreateOrderInput) (model.Order, error) {
	if customerID <= 0 {
		return model.Order{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.RestaurantID <= 0 {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "invalid restaurant id")
	}
	if len(in.Items) == 0 {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "order must contain at least one item")
	}
	for _, it := range in.Items {
		if it.MenuItemID <= 0 {
			return model.Order{}, NewHTTPError(http.StatusBadRequest, "invalid menu item id")
		}
		if it.Quantity < 1 {
			return model.Order{}, NewHTTPError(http.StatusBadRequest, "quantity must be >= 1")
		}
	}

	var orderID int64

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//顧客の存在確認
		if _, err := r.Users().FindByID(ctx, customerID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "customer not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//レストランの存在確認
		if _, err := r.Restaurants().FindByID(ctx, in.RestaurantID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "restaurant not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//メニューをid集合で一括取得（active+availableのみ）
		distinct := distinctIDs(in.Items)
		menuItems, err := r.MenuItems().FindAvailableByIDs(ctx, distinct)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		//件数一致チェック。どれが欠けたかまでは報告しない
		if len(menuItems) != len(distinct) {
			return NewHTTPError(http.StatusBadRequest, "one or more menu items are not available")
		}

		byID := make(map[int64]model.MenuItem, len(menuItems))
		for _, m := range menuItems {
			byID[m.ID] = m
		}

		//現在価格をスナップショットして合計を積む
		orderItems := make([]model.OrderItem, 0, len(in.Items))
		var total int64 = 0
		for _, it := range in.Items {
			m := byID[it.MenuItemID]
			orderItems = append(orderItems, model.OrderItem{
				MenuItemID: m.ID,
				Quantity:   it.Quantity,
				PriceCents: m.PriceCents,
			})
			total += m.PriceCents * it.Quantity
		}

		order := model.Order{
			Status:          model.OrderStatusPending,
			PaymentStatus:   model.PaymentStatusPending,
			TotalPriceCents: total,
			CustomerNote:    in.CustomerNote,
			DeliveryAddress: in.DeliveryAddress,
			CustomerID:      customerID,
			RestaurantID:    in.RestaurantID,
		}
		if err := r.Orders().Create(ctx, &order); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.OrderItems().CreateBulk(ctx, order.ID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		orderID = order.ID
		return nil
	})
	if err != nil {
		return model.Order{}, err
	}

	//コミット後にリレーション込みで再取得して返す
	full, err := u.orders.FindByIDWithRelations(ctx, orderID)
	if err != nil {
		return model.Order{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//通知はベストエフォート。失敗しても注文はロールバックしない
	u.pub.Publish(notify.RestaurantChannel(in.RestaurantID), "orderCreated", full)

	//決済確定はトランザクションの外で非同期に走る
	u.payments.SettleAsync(orderID, customerID)

	return full, nil
}

// GetOrderByID はadminなら任意、それ以外は自分の注文のみ。
// 他人の注文は「存在しない扱い」にして存在を漏らさない。
func (u *OrderUsecase) GetOrderByID(ctx context.Context, orderID int64, requesterID int64, requesterRole string) (model.Order, error) {
	if requesterID <= 0 {
		return model.Order{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	o, err := u.orders.FindByIDWithRelations(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, NewHTTPError(http.StatusNotFound, "order not found")
	}
	if err != nil {
		return model.Order{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if requesterRole != string(model.RoleAdmin) && o.CustomerID != requesterID {
		return model.Order{}, NewHTTPError(http.StatusNotFound, "order not found")
	}
	return o, nil
}

func (u *OrderUsecase) ListByCustomerID(ctx context.Context, customerID int64, requesterID int64, requesterRole string) ([]model.Order, error) {
	if requesterID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if customerID <= 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid customer id")
	}
	if requesterRole != string(model.RoleAdmin) && customerID != requesterID {
		return nil, NewHTTPError(http.StatusForbidden, "you do not have permission to view these orders")
	}

	items, err := u.orders.ListByCustomerID(ctx, customerID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}

func (u *OrderUsecase) ListByRestaurantID(ctx context.Context, restaurantID int64, requesterID int64, requesterRole string) ([]model.Order, error) {
	if requesterID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if restaurantID <= 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid restaurant id")
	}

	if requesterRole != string(model.RoleAdmin) {
		r, err := u.restaurants.FindByID(ctx, restaurantID)
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewHTTPError(http.StatusNotFound, "restaurant not found")
		}
		if err != nil {
			return nil, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if r.OwnerID != requesterID {
			return nil, NewHTTPError(http.StatusForbidden, "you do not have permission to view orders for this restaurant")
		}
	}

	items, err := u.orders.ListByRestaurantID(ctx, restaurantID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}

// UpdateOrderStatus はレストランのオーナーかadminのみ。
// delivered/cancelledは終端で、そこからの遷移は認めない。
func (u *OrderUsecase) UpdateOrderStatus(ctx context.Context, orderID int64, newStatus model.OrderStatus, updatedByID int64, updatedByRole string) (model.Order, error) {
	if updatedByID <= 0 {
		return model.Order{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if !model.ValidOrderStatus(newStatus) {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, NewHTTPError(http.StatusNotFound, "order not found")
	}
	if err != nil {
		return model.Order{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if updatedByRole != string(model.RoleAdmin) {
		r, err := u.restaurants.FindByID(ctx, o.RestaurantID)
		if err != nil {
			return model.Order{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if r.OwnerID != updatedByID {
			return model.Order{}, NewHTTPError(http.StatusForbidden, "you do not have permission to update this order status")
		}
	}

	if model.TerminalOrderStatus(o.Status) {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "order status can no longer change")
	}

	if err := u.orders.UpdateStatus(ctx, orderID, newStatus); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.Order{}, NewHTTPError(http.StatusNotFound, "order not found")
		}
		return model.Order{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	full, err := u.orders.FindByIDWithRelations(ctx, orderID)
	if err != nil {
		return model.Order{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.pub.Publish(notify.OrderChannel(orderID), "orderStatusUpdated", full)
	u.pub.Publish(notify.RestaurantChannel(o.RestaurantID), "orderStatusUpdated", full)

	return full, nil
}

func distinctIDs(items []OrderItemInput) []int64 {
	seen := make(map[int64]bool, len(items))
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		if !seen[it.MenuItemID] {
			seen[it.MenuItemID] = true
			ids = append(ids, it.MenuItemID)
		}
	}
	return ids
}
