package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"examhub/backend/internal/dto"
	"examhub/backend/internal/repository"
)

func setupTestClosedDateService() *ClosedDateService {
	repo := &repository.Repository{
		Shift:          newMockShiftRepo(),
		ClosedDate:     newMockClosedDateRepo(),
		Capacity:       newMockCapacityRepo(),
		Booking:        newMockBookingRepo(),
		BookingHistory: newMockHistoryRepo(),
		Notification:   newMockNotificationRepo(),
	}
	return NewClosedDateService(repo, zap.NewNop())
}

func TestClosedDateService_Create(t *testing.T) {
	svc := setupTestClosedDateService()
	ctx := context.Background()

	cd, err := svc.Create(ctx, &dto.CreateClosedDateRequest{
		Date:   "2025-05-01",
		Reason: strPtr("劳动节"),
	}, "admin-001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if DateKey(cd.Date) != "2025-05-01" {
		t.Errorf("日期应落库为 2025-05-01, 实际 %s", DateKey(cd.Date))
	}

	// 同日期重复标记被拒
	_, err = svc.Create(ctx, &dto.CreateClosedDateRequest{Date: "2025-05-01"}, "admin-001")
	if !errors.Is(err, ErrDateAlreadyClosed) {
		t.Errorf("重复标记应返回 ErrDateAlreadyClosed, 实际 %v", err)
	}

	// 非法日期
	_, err = svc.Create(ctx, &dto.CreateClosedDateRequest{Date: "05/01/2025"}, "admin-001")
	if !errors.Is(err, ErrInvalidDate) {
		t.Errorf("非法日期应返回 ErrInvalidDate, 实际 %v", err)
	}
}

func TestClosedDateService_ListRangeAndDelete(t *testing.T) {
	svc := setupTestClosedDateService()
	ctx := context.Background()

	cd, err := svc.Create(ctx, &dto.CreateClosedDateRequest{Date: "2025-05-01"}, "admin-001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	_, _ = svc.Create(ctx, &dto.CreateClosedDateRequest{Date: "2025-06-01"}, "admin-001")

	rows, err := svc.ListRange(ctx, "2025-05-01", "2025-05-31")
	if err != nil {
		t.Fatalf("ListRange 应成功: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("范围内应有 1 条记录, 实际 %d", len(rows))
	}

	if _, err := svc.ListRange(ctx, "2025-05-31", "2025-05-01"); !errors.Is(err, ErrInvalidDateRange) {
		t.Errorf("倒置范围应返回 ErrInvalidDateRange, 实际 %v", err)
	}

	// 删除即重新开放
	if err := svc.Delete(ctx, cd.ClosedDateID); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	rows, _ = svc.ListRange(ctx, "2025-05-01", "2025-05-31")
	if len(rows) != 0 {
		t.Errorf("删除后范围内应无记录, 实际 %d", len(rows))
	}
}
