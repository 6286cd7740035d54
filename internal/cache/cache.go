package cache

import (
	"context"
	"time"
)

// キャッシュの約束。失敗しても呼び出し側で握りつぶす前提。
type Store interface {
	// 第2戻り値はヒットしたかどうか
	Get(ctx context.Context, key string) (string, bool, error)
	SetEx(ctx context.Context, key string, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}
