package usecase_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MenuRepoMock struct{ mock.Mock }

func (m *MenuRepoMock) Create(ctx context.Context, item model.MenuItem) (model.MenuItem, error) {
	args := m.Called(ctx, item)
	out, _ := args.Get(0).(model.MenuItem)
	return out, args.Error(1)
}

func (m *MenuRepoMock) FindByID(ctx context.Context, id int64) (model.MenuItem, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(model.MenuItem)
	return out, args.Error(1)
}

func (m *MenuRepoMock) ListAvailableByRestaurantID(ctx context.Context, restaurantID int64) ([]model.MenuItem, error) {
	args := m.Called(ctx, restaurantID)
	out, _ := args.Get(0).([]model.MenuItem)
	return out, args.Error(1)
}

func (m *MenuRepoMock) FindAvailableByIDs(ctx context.Context, ids []int64) ([]model.MenuItem, error) {
	args := m.Called(ctx, ids)
	out, _ := args.Get(0).([]model.MenuItem)
	return out, args.Error(1)
}

func (m *MenuRepoMock) Update(ctx context.Context, item model.MenuItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MenuRepoMock) SoftDelete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// memCacheはテスト用のインメモリStore。TTLは記録するだけで失効させない。
type memCache struct {
	data    map[string]string
	lastTTL time.Duration
	gets    int
	sets    int
	dels    int
	getErr  error
	setErr  error
	delErr  error
}

func newMemCache() *memCache {
	return &memCache{data: map[string]string{}}
}

func (c *memCache) Get(ctx context.Context, key string) (string, bool, error) {
	c.gets++
	if c.getErr != nil {
		return "", false, c.getErr
	}
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memCache) SetEx(ctx context.Context, key string, value string, ttl time.Duration) error {
	c.sets++
	if c.setErr != nil {
		return c.setErr
	}
	c.data[key] = value
	c.lastTTL = ttl
	return nil
}

func (c *memCache) Del(ctx context.Context, key string) error {
	c.dels++
	if c.delErr != nil {
		return c.delErr
	}
	delete(c.data, key)
	return nil
}

// =====================
// GetMenuByRestaurantID
// =====================

func TestMenuUsecase_GetMenu_ColdCache_PopulatesAndHits(t *testing.T) {
	ctx := context.Background()
	menuRepo := new(MenuRepoMock)
	restoRepo := new(RestoRepoMock)
	c := newMemCache()
	uc := usecase.NewMenuUsecase(menuRepo, restoRepo, c)

	items := []model.MenuItem{
		{ID: 5, Name: "Burger", PriceCents: 999, RestaurantID: 1, IsActive: true, IsAvailable: true},
	}
	//DBは1回しか呼ばれない
	menuRepo.On("ListAvailableByRestaurantID", mock.Anything, int64(1)).Return(items, nil).Once()

	out1, err := uc.GetMenuByRestaurantID(ctx, 1)
	assert.NoError(t, err)
	assert.Len(t, out1, 1)

	//キャッシュに600秒で書かれている
	raw, ok := c.data["menu:1"]
	assert.True(t, ok)
	assert.Equal(t, 600*time.Second, c.lastTTL)

	var cached []model.MenuItem
	assert.NoError(t, json.Unmarshal([]byte(raw), &cached))
	assert.Equal(t, int64(999), cached[0].PriceCents)

	//2回目はキャッシュから返る
	out2, err := uc.GetMenuByRestaurantID(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, out1, out2)
	menuRepo.AssertNumberOfCalls(t, "ListAvailableByRestaurantID", 1)
}

// キャッシュ障害はリクエストを止めない。
func TestMenuUsecase_GetMenu_CacheDown_FallsBackToDB(t *testing.T) {
	ctx := context.Background()
	menuRepo := new(MenuRepoMock)
	restoRepo := new(RestoRepoMock)
	c := newMemCache()
	c.getErr = assert.AnError
	c.setErr = assert.AnError
	uc := usecase.NewMenuUsecase(menuRepo, restoRepo, c)

	menuRepo.On("ListAvailableByRestaurantID", mock.Anything, int64(1)).Return([]model.MenuItem{{ID: 5}}, nil)

	out, err := uc.GetMenuByRestaurantID(ctx, 1)
	assert.NoError(t, err)
	assert.Len(t, out, 1)
}

// 壊れたキャッシュエントリはDBへ落ちる。
func TestMenuUsecase_GetMenu_CorruptCache_FallsBackToDB(t *testing.T) {
	ctx := context.Background()
	menuRepo := new(MenuRepoMock)
	restoRepo := new(RestoRepoMock)
	c := newMemCache()
	c.data["menu:1"] = "{not json"
	uc := usecase.NewMenuUsecase(menuRepo, restoRepo, c)

	menuRepo.On("ListAvailableByRestaurantID", mock.Anything, int64(1)).Return([]model.MenuItem{{ID: 5}}, nil)

	out, err := uc.GetMenuByRestaurantID(ctx, 1)
	assert.NoError(t, err)
	assert.Len(t, out, 1)
}

// =====================
// Mutations invalidate
// =====================

func TestMenuUsecase_CreateMenuItem_InvalidatesCache(t *testing.T) {
	ctx := context.Background()
	menuRepo := new(MenuRepoMock)
	restoRepo := new(RestoRepoMock)
	c := newMemCache()
	c.data["menu:1"] = `[{"id":5}]`
	uc := usecase.NewMenuUsecase(menuRepo, restoRepo, c)

	restoRepo.On("FindByID", mock.Anything, int64(1)).Return(model.Restaurant{ID: 1, OwnerID: 2, IsActive: true}, nil)
	menuRepo.On("Create", mock.Anything, mock.MatchedBy(func(item model.MenuItem) bool {
		return item.Name == "Burger" && item.IsActive && item.IsAvailable
	})).Return(model.MenuItem{ID: 5, Name: "Burger"}, nil)

	_, err := uc.CreateMenuItem(ctx, 2, string(model.RoleRestaurantOwner), usecase.CreateMenuItemInput{
		Name:         "Burger",
		PriceCents:   999,
		Category:     model.CategoryMainCourse,
		RestaurantID: 1,
	})
	assert.NoError(t, err)

	_, ok := c.data["menu:1"]
	assert.False(t, ok)
}

func TestMenuUsecase_CreateMenuItem_NotOwner_Forbidden(t *testing.T) {
	menuRepo := new(MenuRepoMock)
	restoRepo := new(RestoRepoMock)
	uc := usecase.NewMenuUsecase(menuRepo, restoRepo, newMemCache())

	restoRepo.On("FindByID", mock.Anything, int64(1)).Return(model.Restaurant{ID: 1, OwnerID: 2}, nil)

	_, err := uc.CreateMenuItem(context.Background(), 99, string(model.RoleRestaurantOwner), usecase.CreateMenuItemInput{
		Name:         "Burger",
		PriceCents:   999,
		Category:     model.CategoryMainCourse,
		RestaurantID: 1,
	})
	assertHTTPStatus(t, err, http.StatusForbidden)
	menuRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestMenuUsecase_CreateMenuItem_InvalidCategory(t *testing.T) {
	menuRepo := new(MenuRepoMock)
	restoRepo := new(RestoRepoMock)
	uc := usecase.NewMenuUsecase(menuRepo, restoRepo, newMemCache())

	restoRepo.On("FindByID", mock.Anything, int64(1)).Return(model.Restaurant{ID: 1, OwnerID: 2}, nil)

	_, err := uc.CreateMenuItem(context.Background(), 2, string(model.RoleRestaurantOwner), usecase.CreateMenuItemInput{
		Name:         "Burger",
		PriceCents:   999,
		Category:     model.MenuCategory("snacks"),
		RestaurantID: 1,
	})
	assertHTTPStatus(t, err, http.StatusBadRequest)
}

func TestMenuUsecase_UpdateMenuItem_InvalidatesCache(t *testing.T) {
	ctx := context.Background()
	menuRepo := new(MenuRepoMock)
	restoRepo := new(RestoRepoMock)
	c := newMemCache()
	c.data["menu:1"] = `[{"id":5}]`
	uc := usecase.NewMenuUsecase(menuRepo, restoRepo, c)

	menuRepo.On("FindByID", mock.Anything, int64(5)).Return(model.MenuItem{ID: 5, Name: "Burger", PriceCents: 999, Category: model.CategoryMainCourse, RestaurantID: 1, IsActive: true, IsAvailable: true}, nil)
	restoRepo.On("FindByID", mock.Anything, int64(1)).Return(model.Restaurant{ID: 1, OwnerID: 2, IsActive: true}, nil)

	price := int64(1299)
	menuRepo.On("Update", mock.Anything, mock.MatchedBy(func(item model.MenuItem) bool {
		return item.ID == 5 && item.PriceCents == 1299
	})).Return(nil)

	out, err := uc.UpdateMenuItem(ctx, 2, string(model.RoleRestaurantOwner), 5, usecase.UpdateMenuItemInput{PriceCents: &price})
	assert.NoError(t, err)
	assert.Equal(t, int64(1299), out.PriceCents)

	_, ok := c.data["menu:1"]
	assert.False(t, ok)
}

func TestMenuUsecase_DeleteMenuItem_SoftDeletesAndInvalidates(t *testing.T) {
	ctx := context.Background()
	menuRepo := new(MenuRepoMock)
	restoRepo := new(RestoRepoMock)
	c := newMemCache()
	c.data["menu:1"] = `[{"id":5}]`
	uc := usecase.NewMenuUsecase(menuRepo, restoRepo, c)

	menuRepo.On("FindByID", mock.Anything, int64(5)).Return(model.MenuItem{ID: 5, RestaurantID: 1}, nil)
	restoRepo.On("FindByID", mock.Anything, int64(1)).Return(model.Restaurant{ID: 1, OwnerID: 2, IsActive: true}, nil)
	menuRepo.On("SoftDelete", mock.Anything, int64(5)).Return(nil)

	err := uc.DeleteMenuItem(ctx, 2, string(model.RoleRestaurantOwner), 5)
	assert.NoError(t, err)

	_, ok := c.data["menu:1"]
	assert.False(t, ok)
}

func TestMenuUsecase_DeleteMenuItem_Missing_NotFound(t *testing.T) {
	menuRepo := new(MenuRepoMock)
	restoRepo := new(RestoRepoMock)
	uc := usecase.NewMenuUsecase(menuRepo, restoRepo, newMemCache())

	menuRepo.On("FindByID", mock.Anything, int64(5)).Return(model.MenuItem{}, repo.ErrNotFound)

	err := uc.DeleteMenuItem(context.Background(), 2, string(model.RoleRestaurantOwner), 5)
	assertHTTPStatus(t, err, http.StatusNotFound)
}
