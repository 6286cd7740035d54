package usecase

import (
	"context"
	"log"
	"math/rand"
	"time"

	"app/internal/domain/model"
	"app/internal/notify"
	repo "app/internal/repository"
)

// 決済確定の約束。注文コミット後に非同期で呼ばれる。
type PaymentSettler interface {
	SettleAsync(orderID int64, customerID int64)
}

// PaymentSimulator は決済ゲートウェイの代役。
// 1〜3秒待ってから90%で成功にする。注文トランザクションの外で動き、
// 確定は短いUPDATE1回だけ。
type PaymentSimulator struct {
	orders repo.OrderRepository
	pub    notify.Publisher

	//テストで差し替える
	sleep func(time.Duration)
	roll  func() float64
}

func NewPaymentSimulator(orders repo.OrderRepository, pub notify.Publisher) *PaymentSimulator {
	return &PaymentSimulator{
		orders: orders,
		pub:    pub,
		sleep:  time.Sleep,
		roll:   rand.Float64,
	}
}

type paymentEvent struct {
	OrderID       int64               `json:"order_id"`
	PaymentStatus model.PaymentStatus `json:"payment_status"`
}

func (s *PaymentSimulator) SettleAsync(orderID int64, customerID int64) {
	go s.Settle(context.Background(), orderID, customerID)
}

func (s *PaymentSimulator) Settle(ctx context.Context, orderID int64, customerID int64) model.PaymentStatus {
	//1〜3秒の擬似処理時間
	delay := time.Second + time.Duration(s.roll()*2000)*time.Millisecond
	s.sleep(delay)

	status := model.PaymentStatusSuccess
	if s.roll() >= 0.9 {
		status = model.PaymentStatusFailed
	}

	if err := s.orders.UpdatePaymentStatus(ctx, orderID, status); err != nil {
		log.Printf("payment settle order %d: %v", orderID, err)
		return status
	}

	ev := paymentEvent{OrderID: orderID, PaymentStatus: status}
	s.pub.Publish(notify.OrderChannel(orderID), "orderPaymentUpdated", ev)
	s.pub.Publish(notify.UserChannel(customerID), "orderPaymentUpdated", ev)

	return status
}
