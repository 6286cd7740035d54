package usecase

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

var slugStripPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify は名前から決定的にslugを作る。
// 小文字化→英数字以外の連続をハイフン1つに→先頭末尾のハイフン除去。
func Slugify(name string) string {
	s := strings.ToLower(name)
	s = slugStripPattern.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

type RestaurantUsecase struct {
	restaurants repo.RestaurantRepository
}

func NewRestaurantUsecase(restaurants repo.RestaurantRepository) *RestaurantUsecase {
	return &RestaurantUsecase{restaurants: restaurants}
}

type CreateRestaurantInput struct {
	Name        string
	Description *string
	Address     *string
	City        *string
	State       *string
	ZipCode     *string
	Phone       *string
	Image       *string
}

func (u *RestaurantUsecase) Create(ctx context.Context, ownerID int64, ownerRole string, in CreateRestaurantInput) (model.Restaurant, error) {
	if ownerID <= 0 {
		return model.Restaurant{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	//作成はadminとrestaurant_ownerのみ
	if ownerRole != string(model.RoleAdmin) && ownerRole != string(model.RoleRestaurantOwner) {
		return model.Restaurant{}, NewHTTPError(http.StatusForbidden, "only admin and restaurant owners can create restaurants")
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Restaurant{}, NewHTTPError(http.StatusBadRequest, "name required")
	}

	slug := Slugify(name)
	if slug == "" {
		return model.Restaurant{}, NewHTTPError(http.StatusBadRequest, "name must contain letters or digits")
	}

	//slug重複チェック
	_, err := u.restaurants.FindBySlug(ctx, slug)
	if err == nil {
		return model.Restaurant{}, NewHTTPError(http.StatusConflict, "restaurant with this name already exists")
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return model.Restaurant{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	created, err := u.restaurants.Create(ctx, model.Restaurant{
		Name:        name,
		Slug:        slug,
		Description: in.Description,
		Address:     in.Address,
		City:        in.City,
		State:       in.State,
		ZipCode:     in.ZipCode,
		Phone:       in.Phone,
		Image:       in.Image,
		IsActive:    true,
		OwnerID:     ownerID,
	})
	if err != nil {
		return model.Restaurant{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return created, nil
}

// GetByID は公開の詳細取得。オーナー情報も載せて返す。
func (u *RestaurantUsecase) GetByID(ctx context.Context, id int64) (model.Restaurant, error) {
	if id <= 0 {
		return model.Restaurant{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	r, err := u.restaurants.FindByIDWithOwner(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Restaurant{}, NewHTTPError(http.StatusNotFound, "restaurant not found")
	}
	if err != nil {
		return model.Restaurant{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !r.IsActive {
		return model.Restaurant{}, NewHTTPError(http.StatusNotFound, "restaurant not found")
	}
	return r, nil
}

func (u *RestaurantUsecase) GetBySlug(ctx context.Context, slug string) (model.Restaurant, error) {
	if strings.TrimSpace(slug) == "" {
		return model.Restaurant{}, NewHTTPError(http.StatusBadRequest, "invalid slug")
	}

	r, err := u.restaurants.FindBySlug(ctx, slug)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Restaurant{}, NewHTTPError(http.StatusNotFound, "restaurant not found")
	}
	if err != nil {
		return model.Restaurant{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !r.IsActive {
		return model.Restaurant{}, NewHTTPError(http.StatusNotFound, "restaurant not found")
	}
	return r, nil
}

func (u *RestaurantUsecase) ListActive(ctx context.Context) ([]model.Restaurant, error) {
	items, err := u.restaurants.ListActive(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}

func (u *RestaurantUsecase) ListMine(ctx context.Context, ownerID int64) ([]model.Restaurant, error) {
	if ownerID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	items, err := u.restaurants.ListByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}

// 部分更新の入力。nilのフィールドは変更しない。
type UpdateRestaurantInput struct {
	Name        *string
	Description *string
	Address     *string
	City        *string
	State       *string
	ZipCode     *string
	Phone       *string
	Image       *string
	IsActive    *bool
}

func (u *RestaurantUsecase) Update(ctx context.Context, requesterID int64, requesterRole string, id int64, in UpdateRestaurantInput) (model.Restaurant, error) {
	r, err := u.loadOwned(ctx, requesterID, requesterRole, id)
	if err != nil {
		return model.Restaurant{}, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return model.Restaurant{}, NewHTTPError(http.StatusBadRequest, "name required")
		}
		//名前変更はslugも作り直す
		slug := Slugify(name)
		if slug == "" {
			return model.Restaurant{}, NewHTTPError(http.StatusBadRequest, "name must contain letters or digits")
		}
		if slug != r.Slug {
			_, err := u.restaurants.FindBySlug(ctx, slug)
			if err == nil {
				return model.Restaurant{}, NewHTTPError(http.StatusConflict, "restaurant with this name already exists")
			}
			if !errors.Is(err, repo.ErrNotFound) {
				return model.Restaurant{}, NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}
		r.Name = name
		r.Slug = slug
	}
	if in.Description != nil {
		r.Description = in.Description
	}
	if in.Address != nil {
		r.Address = in.Address
	}
	if in.City != nil {
		r.City = in.City
	}
	if in.State != nil {
		r.State = in.State
	}
	if in.ZipCode != nil {
		r.ZipCode = in.ZipCode
	}
	if in.Phone != nil {
		r.Phone = in.Phone
	}
	if in.Image != nil {
		r.Image = in.Image
	}
	if in.IsActive != nil {
		r.IsActive = *in.IsActive
	}

	if err := u.restaurants.Update(ctx, r); err != nil {
		return model.Restaurant{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return r, nil
}

// Delete はソフトデリート（is_active=false）。行は消さない。
func (u *RestaurantUsecase) Delete(ctx context.Context, requesterID int64, requesterRole string, id int64) error {
	if _, err := u.loadOwned(ctx, requesterID, requesterRole, id); err != nil {
		return err
	}

	if err := u.restaurants.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "restaurant not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// 所有者またはadminだけが触れるレストランを取得する。
func (u *RestaurantUsecase) loadOwned(ctx context.Context, requesterID int64, requesterRole string, id int64) (model.Restaurant, error) {
	if requesterID <= 0 {
		return model.Restaurant{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if id <= 0 {
		return model.Restaurant{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	r, err := u.restaurants.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Restaurant{}, NewHTTPError(http.StatusNotFound, "restaurant not found")
	}
	if err != nil {
		return model.Restaurant{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if requesterRole != string(model.RoleAdmin) && r.OwnerID != requesterID {
		return model.Restaurant{}, NewHTTPError(http.StatusForbidden, "you do not have permission for this restaurant")
	}
	return r, nil
}
