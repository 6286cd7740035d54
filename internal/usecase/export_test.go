package usecase

import (
	"time"

	"app/internal/notify"
	repo "app/internal/repository"
)

// NewPaymentSimulatorForTest は待ち時間と乱数を差し替えたシミュレータを返す。
func NewPaymentSimulatorForTest(
	orders repo.OrderRepository,
	pub notify.Publisher,
	sleep func(time.Duration),
	roll func() float64,
) *PaymentSimulator {
	return &PaymentSimulator{
		orders: orders,
		pub:    pub,
		sleep:  sleep,
		roll:   roll,
	}
}
