package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"examhub/backend/internal/model"
)

// ClosedDateRepository 闭馆日期数据访问接口
type ClosedDateRepository interface {
	Create(ctx context.Context, cd *model.ClosedDate) error
	GetByDate(ctx context.Context, date time.Time) (*model.ClosedDate, error)
	ListRange(ctx context.Context, from, to time.Time) ([]model.ClosedDate, error)
	Delete(ctx context.Context, id string) error
}

type closedDateRepo struct {
	db *gorm.DB
}

func NewClosedDateRepo(db *gorm.DB) ClosedDateRepository {
	return &closedDateRepo{db: db}
}

func (r *closedDateRepo) Create(ctx context.Context, cd *model.ClosedDate) error {
	return r.db.WithContext(ctx).Create(cd).Error
}

func (r *closedDateRepo) GetByDate(ctx context.Context, date time.Time) (*model.ClosedDate, error) {
	var cd model.ClosedDate
	err := r.db.WithContext(ctx).
		Where("date = ?", date.Format("2006-01-02")).
		First(&cd).Error
	if err != nil {
		return nil, err
	}
	return &cd, nil
}

func (r *closedDateRepo) ListRange(ctx context.Context, from, to time.Time) ([]model.ClosedDate, error) {
	var dates []model.ClosedDate
	err := r.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", from.Format("2006-01-02"), to.Format("2006-01-02")).
		Order("date ASC").
		Find(&dates).Error
	return dates, err
}

func (r *closedDateRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("closed_date_id = ?", id).
		Delete(&model.ClosedDate{}).Error
}
