package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"examhub/backend/internal/dto"
	"examhub/backend/internal/model"
	"examhub/backend/internal/repository"
)

var (
	ErrShiftNotFound     = errors.New("场次不存在")
	ErrShiftNameTaken    = errors.New("同名场次已存在")
	ErrShiftHoursInvalid = errors.New("场次时间范围不合法")
	ErrShiftInactive     = errors.New("场次已停用")
)

// ShiftService 考试场次管理
type ShiftService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

func NewShiftService(repo *repository.Repository, logger *zap.Logger) *ShiftService {
	return &ShiftService{repo: repo, logger: logger}
}

func (s *ShiftService) Create(ctx context.Context, req *dto.CreateShiftRequest, operatorID string) (*model.Shift, error) {
	if req.EndHour <= req.StartHour {
		return nil, ErrShiftHoursInvalid
	}

	if _, err := s.repo.Shift.GetByName(ctx, req.Name); err == nil {
		return nil, ErrShiftNameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	shift := &model.Shift{
		Name:          req.Name,
		StartHour:     req.StartHour,
		EndHour:       req.EndHour,
		MaxCandidates: req.MaxCandidates,
		IsActive:      true,
		BaseModel:     model.BaseModel{CreatedBy: &operatorID, UpdatedBy: &operatorID},
	}
	if err := s.repo.Shift.Create(ctx, shift); err != nil {
		return nil, err
	}

	s.logger.Info("场次已创建", zap.String("shift_id", shift.ShiftID), zap.String("name", shift.Name))
	return shift, nil
}

func (s *ShiftService) Update(ctx context.Context, id string, req *dto.UpdateShiftRequest, operatorID string) (*model.Shift, error) {
	shift, err := s.repo.Shift.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, err
	}

	start := shift.StartHour
	end := shift.EndHour
	if req.StartHour != nil {
		start = *req.StartHour
	}
	if req.EndHour != nil {
		end = *req.EndHour
	}
	if end <= start {
		return nil, ErrShiftHoursInvalid
	}

	updates := map[string]interface{}{"updated_by": operatorID}
	if req.StartHour != nil {
		updates["start_hour"] = *req.StartHour
	}
	if req.EndHour != nil {
		updates["end_hour"] = *req.EndHour
	}
	if req.MaxCandidates != nil {
		updates["max_candidates"] = *req.MaxCandidates
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if err := s.repo.Shift.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	return s.repo.Shift.GetByID(ctx, id)
}

func (s *ShiftService) GetByID(ctx context.Context, id string) (*model.Shift, error) {
	shift, err := s.repo.Shift.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, err
	}
	return shift, nil
}

func (s *ShiftService) List(ctx context.Context, includeInactive bool) ([]model.Shift, error) {
	return s.repo.Shift.List(ctx, includeInactive)
}
