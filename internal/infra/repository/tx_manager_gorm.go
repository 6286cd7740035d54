package repository

import (
	"context"

	repo "app/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	users       repo.UserRepository
	restaurants repo.RestaurantRepository
	menuItems   repo.MenuItemRepository
	orders      repo.OrderRepository
	orderItems  repo.OrderItemRepository
}

func (r *txReposGorm) Users() repo.UserRepository             { return r.users }
func (r *txReposGorm) Restaurants() repo.RestaurantRepository { return r.restaurants }
func (r *txReposGorm) MenuItems() repo.MenuItemRepository     { return r.menuItems }
func (r *txReposGorm) Orders() repo.OrderRepository           { return r.orders }
func (r *txReposGorm) OrderItems() repo.OrderItemRepository   { return r.orderItems }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			users:       NewUserGormRepository(tx),
			restaurants: NewRestaurantGormRepository(tx),
			menuItems:   NewMenuItemGormRepository(tx),
			orders:      NewOrderGormRepository(tx),
			orderItems:  NewOrderItemGormRepository(tx),
		}
		return fn(r)
	})
}
