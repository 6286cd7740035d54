package repository

import (
	"context"

	"app/internal/domain/model"
)

// ユーザーの保存・取得を約束
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// last_login・is_activeなどの更新
	Update(ctx context.Context, user *model.User) error
}
