package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"app/internal/cache"
	"app/internal/domain/model"
	repo "app/internal/repository"
)

// メニューキャッシュの有効期限
const menuCacheTTL = 600 * time.Second

func menuCacheKey(restaurantID int64) string {
	return fmt.Sprintf("menu:%d", restaurantID)
}

type MenuUsecase struct {
	menuItems   repo.MenuItemRepository
	restaurants repo.RestaurantRepository
	cache       cache.Store
}

func NewMenuUsecase(menuItems repo.MenuItemRepository, restaurants repo.RestaurantRepository, cache cache.Store) *MenuUsecase {
	return &MenuUsecase{
		menuItems:   menuItems,
		restaurants: restaurants,
		cache:       cache,
	}
}

type CreateMenuItemInput struct {
	Name         string
	Description  *string
	PriceCents   int64
	Category     model.MenuCategory
	Image        *string
	RestaurantID int64
	IsActive     *bool
	IsAvailable  *bool
}

func (u *MenuUsecase) CreateMenuItem(ctx context.Context, requesterID int64, requesterRole string, in CreateMenuItemInput) (model.MenuItem, error) {
	if err := u.checkRestaurantOwnership(ctx, requesterID, requesterRole, in.RestaurantID); err != nil {
		return model.MenuItem{}, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.MenuItem{}, NewHTTPError(http.StatusBadRequest, "name required")
	}
	if in.PriceCents <= 0 {
		return model.MenuItem{}, NewHTTPError(http.StatusBadRequest, "price must be > 0")
	}
	if !model.ValidMenuCategory(in.Category) {
		return model.MenuItem{}, NewHTTPError(http.StatusBadRequest, "invalid category")
	}

	item := model.MenuItem{
		Name:         name,
		Description:  in.Description,
		PriceCents:   in.PriceCents,
		Category:     in.Category,
		Image:        in.Image,
		IsActive:     true,
		IsAvailable:  true,
		RestaurantID: in.RestaurantID,
	}
	if in.IsActive != nil {
		item.IsActive = *in.IsActive
	}
	if in.IsAvailable != nil {
		item.IsAvailable = *in.IsAvailable
	}

	created, err := u.menuItems.Create(ctx, item)
	if err != nil {
		return model.MenuItem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.invalidateMenuCache(ctx, in.RestaurantID)
	return created, nil
}

func (u *MenuUsecase) GetMenuItemByID(ctx context.Context, id int64) (model.MenuItem, error) {
	if id <= 0 {
		return model.MenuItem{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	m, err := u.menuItems.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.MenuItem{}, NewHTTPError(http.StatusNotFound, "menu item not found")
	}
	if err != nil {
		return model.MenuItem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return m, nil
}

// GetMenuByRestaurantID はread-throughキャッシュ。
// キャッシュ障害はリクエストを止めない（ログだけ残してDBへ落ちる）。
func (u *MenuUsecase) GetMenuByRestaurantID(ctx context.Context, restaurantID int64) ([]model.MenuItem, error) {
	if restaurantID <= 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid restaurant id")
	}

	key := menuCacheKey(restaurantID)

	cached, hit, err := u.cache.Get(ctx, key)
	if err != nil {
		log.Printf("menu cache get %s: %v", key, err)
	}
	if hit {
		var items []model.MenuItem
		if err := json.Unmarshal([]byte(cached), &items); err == nil {
			return items, nil
		}
		//壊れたキャッシュはDBへ落とす
		log.Printf("menu cache decode %s: %v", key, err)
	}

	items, err := u.menuItems.ListAvailableByRestaurantID(ctx, restaurantID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if raw, err := json.Marshal(items); err == nil {
		if err := u.cache.SetEx(ctx, key, string(raw), menuCacheTTL); err != nil {
			log.Printf("menu cache set %s: %v", key, err)
		}
	}

	return items, nil
}

// 部分更新の入力。nilのフィールドは変更しない。
type UpdateMenuItemInput struct {
	Name        *string
	Description *string
	PriceCents  *int64
	Category    *model.MenuCategory
	Image       *string
	IsActive    *bool
	IsAvailable *bool
}

func (u *MenuUsecase) UpdateMenuItem(ctx context.Context, requesterID int64, requesterRole string, id int64, in UpdateMenuItemInput) (model.MenuItem, error) {
	if id <= 0 {
		return model.MenuItem{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	m, err := u.menuItems.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.MenuItem{}, NewHTTPError(http.StatusNotFound, "menu item not found")
	}
	if err != nil {
		return model.MenuItem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.checkRestaurantOwnership(ctx, requesterID, requesterRole, m.RestaurantID); err != nil {
		return model.MenuItem{}, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return model.MenuItem{}, NewHTTPError(http.StatusBadRequest, "name required")
		}
		m.Name = name
	}
	if in.Description != nil {
		m.Description = in.Description
	}
	if in.PriceCents != nil {
		if *in.PriceCents <= 0 {
			return model.MenuItem{}, NewHTTPError(http.StatusBadRequest, "price must be > 0")
		}
		m.PriceCents = *in.PriceCents
	}
	if in.Category != nil {
		if !model.ValidMenuCategory(*in.Category) {
			return model.MenuItem{}, NewHTTPError(http.StatusBadRequest, "invalid category")
		}
		m.Category = *in.Category
	}
	if in.Image != nil {
		m.Image = in.Image
	}
	if in.IsActive != nil {
		m.IsActive = *in.IsActive
	}
	if in.IsAvailable != nil {
		m.IsAvailable = *in.IsAvailable
	}

	if err := u.menuItems.Update(ctx, m); err != nil {
		return model.MenuItem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.invalidateMenuCache(ctx, m.RestaurantID)
	return m, nil
}

// DeleteMenuItem はソフトデリート。注文履歴からの参照は残る。
func (u *MenuUsecase) DeleteMenuItem(ctx context.Context, requesterID int64, requesterRole string, id int64) error {
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	m, err := u.menuItems.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "menu item not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.checkRestaurantOwnership(ctx, requesterID, requesterRole, m.RestaurantID); err != nil {
		return err
	}

	if err := u.menuItems.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "menu item not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.invalidateMenuCache(ctx, m.RestaurantID)
	return nil
}

func (u *MenuUsecase) invalidateMenuCache(ctx context.Context, restaurantID int64) {
	key := menuCacheKey(restaurantID)
	if err := u.cache.Del(ctx, key); err != nil {
		//無効化失敗はTTL切れで回復する
		log.Printf("menu cache del %s: %v", key, err)
	}
}

func (u *MenuUsecase) checkRestaurantOwnership(ctx context.Context, requesterID int64, requesterRole string, restaurantID int64) error {
	if requesterID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if restaurantID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid restaurant id")
	}

	r, err := u.restaurants.FindByID(ctx, restaurantID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "restaurant not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if requesterRole != string(model.RoleAdmin) && r.OwnerID != requesterID {
		return NewHTTPError(http.StatusForbidden, "you do not have permission for this restaurant")
	}
	return nil
}
