package repository

import (
	"context"

	"app/internal/domain/model"
)

// レストランの永続化（保存・取得）だけを約束。
type RestaurantRepository interface {
	Create(ctx context.Context, r model.Restaurant) (model.Restaurant, error)
	FindByID(ctx context.Context, id int64) (model.Restaurant, error)
	// owner込みで取得（注文の権限チェックに使う）
	FindByIDWithOwner(ctx context.Context, id int64) (model.Restaurant, error)
	FindBySlug(ctx context.Context, slug string) (model.Restaurant, error)
	ListActive(ctx context.Context) ([]model.Restaurant, error)
	ListByOwnerID(ctx context.Context, ownerID int64) ([]model.Restaurant, error)
	Update(ctx context.Context, r model.Restaurant) error
	SoftDelete(ctx context.Context, id int64) error
}
