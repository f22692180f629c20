package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"examhub/backend/config"
)

// DeadlineJobs 每日任务的业务入口
type DeadlineJobs interface {
	SendVoucherReminders(ctx context.Context) (int, error)
	EnforceVoucherDeadlines(ctx context.Context) (int, error)
}

// DeadlineScheduler 每日凭证提醒与截止任务的调度器
// 按部门本地时区判定任务时刻；进程内按日期去重，跨实例幂等由
// 数据库侧标记（reminder_sent_at、状态条件更新）兜底
type DeadlineScheduler struct {
	jobs        DeadlineJobs
	loc         *time.Location
	reminderMin int // 每日提醒时刻，自午夜起的分钟数
	deadlineMin int // 每日截止时刻
	logger      *zap.Logger
	nowFn       func() time.Time

	lastReminderDay string
	lastDeadlineDay string
}

func NewDeadlineScheduler(jobs DeadlineJobs, cfg *config.BookingConfig, loc *time.Location, logger *zap.Logger) (*DeadlineScheduler, error) {
	reminderMin, err := parseClock(cfg.ReminderTime)
	if err != nil {
		return nil, err
	}
	deadlineMin, err := parseClock(cfg.DeadlineTime)
	if err != nil {
		return nil, err
	}
	return &DeadlineScheduler{
		jobs:        jobs,
		loc:         loc,
		reminderMin: reminderMin,
		deadlineMin: deadlineMin,
		logger:      logger,
		nowFn:       time.Now,
	}, nil
}

// Run 阻塞运行直至 ctx 取消
func (s *DeadlineScheduler) Run(ctx context.Context, interval time.Duration) {
	s.logger.Info("每日任务调度器启动",
		zap.Int("reminder_minute", s.reminderMin),
		zap.Int("deadline_minute", s.deadlineMin),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("每日任务调度器退出")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick 检查当前时刻是否到达任务触发点
// 到达触发时刻后的任意一次 Tick 都会补跑当日任务，同日只跑一次
func (s *DeadlineScheduler) Tick(ctx context.Context) {
	now := s.nowFn().In(s.loc)
	day := now.Format("2006-01-02")
	minute := now.Hour()*60 + now.Minute()

	if minute >= s.reminderMin && s.lastReminderDay != day {
		s.lastReminderDay = day
		sent, err := s.jobs.SendVoucherReminders(ctx)
		if err != nil {
			s.logger.Error("凭证提醒任务失败", zap.String("day", day), zap.Error(err))
		} else if sent > 0 {
			s.logger.Info("凭证提醒已发送", zap.String("day", day), zap.Int("sent", sent))
		}
	}

	if minute >= s.deadlineMin && s.lastDeadlineDay != day {
		s.lastDeadlineDay = day
		cancelled, err := s.jobs.EnforceVoucherDeadlines(ctx)
		if err != nil {
			s.logger.Error("凭证截止任务失败", zap.String("day", day), zap.Error(err))
		} else if cancelled > 0 {
			s.logger.Info("超期预约已取消", zap.String("day", day), zap.Int("cancelled", cancelled))
		}
	}
}

// parseClock 解析 HH:MM 为自午夜起的分钟数
func parseClock(v string) (int, error) {
	t, err := time.Parse("15:04", v)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}
