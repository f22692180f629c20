package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"examhub/backend/internal/dto"
	"examhub/backend/internal/model"
	"examhub/backend/internal/repository"
)

var (
	ErrDateAlreadyClosed = errors.New("该日期已标记为闭馆")
	ErrInvalidDate       = errors.New("日期格式不正确")
)

// ClosedDateService 闭馆日期管理
// 闭馆标记只增删不改；删除即重新开放该日期
type ClosedDateService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

func NewClosedDateService(repo *repository.Repository, logger *zap.Logger) *ClosedDateService {
	return &ClosedDateService{repo: repo, logger: logger}
}

func (s *ClosedDateService) Create(ctx context.Context, req *dto.CreateClosedDateRequest, operatorID string) (*model.ClosedDate, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, ErrInvalidDate
	}

	if _, err := s.repo.ClosedDate.GetByDate(ctx, date); err == nil {
		return nil, ErrDateAlreadyClosed
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cd := &model.ClosedDate{
		Date:      date,
		Reason:    req.Reason,
		CreatedBy: &operatorID,
	}
	if err := s.repo.ClosedDate.Create(ctx, cd); err != nil {
		return nil, err
	}

	s.logger.Info("闭馆日期已添加", zap.String("date", req.Date))
	return cd, nil
}

func (s *ClosedDateService) ListRange(ctx context.Context, fromStr, toStr string) ([]model.ClosedDate, error) {
	from, err := time.Parse("2006-01-02", fromStr)
	if err != nil {
		return nil, ErrInvalidDate
	}
	to, err := time.Parse("2006-01-02", toStr)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if to.Before(from) {
		return nil, ErrInvalidDateRange
	}
	return s.repo.ClosedDate.ListRange(ctx, from, to)
}

func (s *ClosedDateService) Delete(ctx context.Context, id string) error {
	return s.repo.ClosedDate.Delete(ctx, id)
}
