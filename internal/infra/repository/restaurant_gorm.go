package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type RestaurantGormRepository struct {
	db *gorm.DB
}

func NewRestaurantGormRepository(db *gorm.DB) *RestaurantGormRepository {
	return &RestaurantGormRepository{db: db}
}

func (r *RestaurantGormRepository) Create(ctx context.Context, rest model.Restaurant) (model.Restaurant, error) {
	if err := r.db.WithContext(ctx).Create(&rest).Error; err != nil {
		return model.Restaurant{}, err
	}
	return rest, nil
}

func (r *RestaurantGormRepository) FindByID(ctx context.Context, id int64) (model.Restaurant, error) {
	var rest model.Restaurant
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Restaurant{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Restaurant{}, err
	}
	return rest, nil
}

func (r *RestaurantGormRepository) FindByIDWithOwner(ctx context.Context, id int64) (model.Restaurant, error) {
	var rest model.Restaurant
	err := r.db.WithContext(ctx).Preload("Owner").Where("id = ?", id).First(&rest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Restaurant{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Restaurant{}, err
	}
	return rest, nil
}

func (r *RestaurantGormRepository) FindBySlug(ctx context.Context, slug string) (model.Restaurant, error) {
	var rest model.Restaurant
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&rest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Restaurant{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Restaurant{}, err
	}
	return rest, nil
}

func (r *RestaurantGormRepository) ListActive(ctx context.Context) ([]model.Restaurant, error) {
	var items []model.Restaurant
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at desc").
		Find(&items).Error
	if err != nil {
		return []model.Restaurant{}, err
	}
	return items, nil
}

func (r *RestaurantGormRepository) ListByOwnerID(ctx context.Context, ownerID int64) ([]model.Restaurant, error) {
	var items []model.Restaurant
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND is_active = ?", ownerID, true).
		Order("created_at desc").
		Find(&items).Error
	if err != nil {
		return []model.Restaurant{}, err
	}
	return items, nil
}

func (r *RestaurantGormRepository) Update(ctx context.Context, rest model.Restaurant) error {
	res := r.db.WithContext(ctx).Save(&rest)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *RestaurantGormRepository) SoftDelete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Model(&model.Restaurant{}).
		Where("id = ?", id).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
