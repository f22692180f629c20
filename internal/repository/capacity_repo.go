package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"examhub/backend/internal/model"
)

// CapacityRepository 监考员容量数据访问接口（日×场次、日×小时两个粒度）
type CapacityRepository interface {
	GetShift(ctx context.Context, date time.Time, shiftID string) (*model.ShiftCapacity, error)
	GetHour(ctx context.Context, date time.Time, hour int) (*model.HourCapacity, error)
	ListShiftRange(ctx context.Context, from, to time.Time) ([]model.ShiftCapacity, error)
	ListHourRange(ctx context.Context, from, to time.Time) ([]model.HourCapacity, error)
	// ReplaceRange 在单个事务内整批替换日期范围内的容量行（导入语义，不做局部修改）
	ReplaceRange(ctx context.Context, from, to time.Time, shiftRows []model.ShiftCapacity, hourRows []model.HourCapacity) error
}

type capacityRepo struct {
	db *gorm.DB
}

func NewCapacityRepo(db *gorm.DB) CapacityRepository {
	return &capacityRepo{db: db}
}

func (r *capacityRepo) GetShift(ctx context.Context, date time.Time, shiftID string) (*model.ShiftCapacity, error) {
	var row model.ShiftCapacity
	err := r.db.WithContext(ctx).
		Where("date = ? AND shift_id = ?", date.Format("2006-01-02"), shiftID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *capacityRepo) GetHour(ctx context.Context, date time.Time, hour int) (*model.HourCapacity, error) {
	var row model.HourCapacity
	err := r.db.WithContext(ctx).
		Where("date = ? AND hour = ?", date.Format("2006-01-02"), hour).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *capacityRepo) ListShiftRange(ctx context.Context, from, to time.Time) ([]model.ShiftCapacity, error) {
	var rows []model.ShiftCapacity
	err := r.db.WithContext(ctx).
		Preload("Shift").
		Where("date >= ? AND date <= ?", from.Format("2006-01-02"), to.Format("2006-01-02")).
		Order("date ASC, shift_id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *capacityRepo) ListHourRange(ctx context.Context, from, to time.Time) ([]model.HourCapacity, error) {
	var rows []model.HourCapacity
	err := r.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", from.Format("2006-01-02"), to.Format("2006-01-02")).
		Order("date ASC, hour ASC").
		Find(&rows).Error
	return rows, err
}

func (r *capacityRepo) ReplaceRange(ctx context.Context, from, to time.Time, shiftRows []model.ShiftCapacity, hourRows []model.HourCapacity) error {
	fromStr := from.Format("2006-01-02")
	toStr := to.Format("2006-01-02")

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("date >= ? AND date <= ?", fromStr, toStr).
			Delete(&model.ShiftCapacity{}).Error; err != nil {
			return err
		}
		if err := tx.Where("date >= ? AND date <= ?", fromStr, toStr).
			Delete(&model.HourCapacity{}).Error; err != nil {
			return err
		}
		if len(shiftRows) > 0 {
			if err := tx.Create(&shiftRows).Error; err != nil {
				return err
			}
		}
		if len(hourRows) > 0 {
			if err := tx.Create(&hourRows).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
