package service

import (
	"context"

	"go.uber.org/zap"

	"examhub/backend/config"
	"examhub/backend/internal/model"
	"examhub/backend/internal/repository"
)

// NotificationService 站内通知
// 通知是旁路动作：投递失败只记日志，不影响主流程
type NotificationService struct {
	repo   *repository.Repository
	cfg    *config.BookingConfig
	logger *zap.Logger
}

func NewNotificationService(repo *repository.Repository, cfg *config.BookingConfig, logger *zap.Logger) *NotificationService {
	return &NotificationService{repo: repo, cfg: cfg, logger: logger}
}

// Notify 向单个用户投递通知
func (s *NotificationService) Notify(ctx context.Context, userID, typ, title, content string, bookingID *string) error {
	n := &model.Notification{
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Content:   content,
		BookingID: bookingID,
	}
	return s.repo.Notification.Create(ctx, n)
}

// NotifyAdmins 向配置的所有管理员投递通知
// 单个投递失败不中断其余投递
func (s *NotificationService) NotifyAdmins(ctx context.Context, typ, title, content string, bookingID *string) {
	for _, adminID := range s.cfg.AdminIDs {
		if err := s.Notify(ctx, adminID, typ, title, content, bookingID); err != nil {
			s.logger.Warn("管理员通知投递失败",
				zap.String("admin_id", adminID),
				zap.String("type", typ),
				zap.Error(err),
			)
		}
	}
}

func (s *NotificationService) ListByUser(ctx context.Context, userID string, page, pageSize int) ([]model.Notification, int64, error) {
	offset := (page - 1) * pageSize
	return s.repo.Notification.ListByUser(ctx, userID, offset, pageSize)
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	return s.repo.Notification.MarkRead(ctx, id, userID)
}
