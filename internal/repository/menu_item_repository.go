package repository

import (
	"context"

	"app/internal/domain/model"
)

// メニューの永続化を約束。
type MenuItemRepository interface {
	Create(ctx context.Context, m model.MenuItem) (model.MenuItem, error)
	FindByID(ctx context.Context, id int64) (model.MenuItem, error)
	// active+availableのみ、作成日時昇順
	ListAvailableByRestaurantID(ctx context.Context, restaurantID int64) ([]model.MenuItem, error)
	// id集合でバッチ取得（active+availableのみ）
	FindAvailableByIDs(ctx context.Context, ids []int64) ([]model.MenuItem, error)
	Update(ctx context.Context, m model.MenuItem) error
	SoftDelete(ctx context.Context, id int64) error
}
