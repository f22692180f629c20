package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// BookingExpirer 占位过期清理的业务入口
type BookingExpirer interface {
	ExpireOverdueHolds(ctx context.Context) (int, error)
}

// HoldReaper 周期清理到期未提交的占位
// 清理本身可安全重入，多实例并发运行也只有一方能赢得状态写入
type HoldReaper struct {
	expirer  BookingExpirer
	interval time.Duration
	logger   *zap.Logger
}

func NewHoldReaper(expirer BookingExpirer, interval time.Duration, logger *zap.Logger) *HoldReaper {
	return &HoldReaper{expirer: expirer, interval: interval, logger: logger}
}

// Run 阻塞运行直至 ctx 取消；启动时先清理一轮
func (r *HoldReaper) Run(ctx context.Context) {
	r.logger.Info("占位清理任务启动", zap.Duration("interval", r.interval))

	r.Sweep(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("占位清理任务退出")
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep 执行一轮清理
func (r *HoldReaper) Sweep(ctx context.Context) {
	count, err := r.expirer.ExpireOverdueHolds(ctx)
	if err != nil {
		r.logger.Error("占位清理失败", zap.Error(err))
		return
	}
	if count > 0 {
		r.logger.Info("已清理到期占位", zap.Int("count", count))
	}
}
