package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"examhub/backend/config"
	"examhub/backend/internal/repository"
	"examhub/backend/internal/scheduler"
	"examhub/backend/internal/service"
	"examhub/backend/pkg/database"
	applogger "examhub/backend/pkg/logger"
	"examhub/backend/pkg/redis"
)

// 后台工作进程：占位过期清理 + 每日凭证提醒/截止任务
// 与 API 服务器分进程部署；全部任务走数据库侧幂等，多实例并发运行安全
func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("工作进程启动中...")

	db, err := database.NewDB(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}

	var rdb *redis.Client
	rdb, err = redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，事件广播功能将不可用", zap.Error(err))
		rdb = nil
	}

	repo := repository.NewRepository(db)
	var broadcaster service.EventBroadcaster
	if rdb != nil {
		broadcaster = rdb
	}
	svc, err := service.NewService(repo, cfg, broadcaster, logger)
	if err != nil {
		logger.Fatal("初始化服务失败", zap.Error(err))
	}

	loc, err := cfg.Booking.Location()
	if err != nil {
		logger.Fatal("时区配置无效", zap.Error(err))
	}

	reaper := scheduler.NewHoldReaper(svc.Booking, cfg.Booking.ReaperInterval, logger)
	daily, err := scheduler.NewDeadlineScheduler(svc.Booking, &cfg.Booking, loc, logger)
	if err != nil {
		logger.Fatal("初始化每日任务调度器失败", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		reaper.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		daily.Run(ctx, time.Minute)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，等待任务退出...", zap.String("signal", sig.String()))
	cancel()
	wg.Wait()

	closeDB, _ := db.DB()
	if closeDB != nil {
		closeDB.Close()
	}
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("工作进程已关闭")
}
