package service

import (
	"context"
	"time"

	"examhub/backend/internal/repository"
)

// CalendarService 工作日历计算
// 工作日 = 非周末且未被标记为闭馆的日期
type CalendarService struct {
	closedDates repository.ClosedDateRepository
}

func NewCalendarService(closedDates repository.ClosedDateRepository) *CalendarService {
	return &CalendarService{closedDates: closedDates}
}

// DateKey 日期的规范字符串形式，用作各处 map 的键
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// DateOf 截取纯日期部分（统一到 UTC 零点，便于与 date 列比较）
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsWeekend 是否为周末
func IsWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// ClosedSet 加载日期范围内的闭馆日期集合
func (s *CalendarService) ClosedSet(ctx context.Context, from, to time.Time) (map[string]bool, error) {
	rows, err := s.closedDates.ListRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(rows))
	for _, row := range rows {
		set[DateKey(row.Date)] = true
	}
	return set, nil
}

// IsWorkingDay 指定日期是否可安排考试
func (s *CalendarService) IsWorkingDay(ctx context.Context, d time.Time) (bool, error) {
	if IsWeekend(d) {
		return false, nil
	}
	closed, err := s.ClosedSet(ctx, d, d)
	if err != nil {
		return false, err
	}
	return !closed[DateKey(d)], nil
}

// AddWorkingDays 返回 from 之后（不含 from）的第 n 个工作日
// n<=0 时原样返回 from
func (s *CalendarService) AddWorkingDays(ctx context.Context, from time.Time, n int) (time.Time, error) {
	if n <= 0 {
		return from, nil
	}
	// 先按两倍天数加余量预取闭馆日，极端连续闭馆时翻倍扩大窗口重算
	horizon := n*2 + 14
	for {
		to := from.AddDate(0, 0, horizon)
		closed, err := s.ClosedSet(ctx, from, to)
		if err != nil {
			return time.Time{}, err
		}
		d := from
		count := 0
		for d.Before(to) {
			d = d.AddDate(0, 0, 1)
			if IsWeekend(d) || closed[DateKey(d)] {
				continue
			}
			count++
			if count == n {
				return d, nil
			}
		}
		horizon *= 2
	}
}

// EarliestBookableDate 最早可预约的考试日期
// 参考日取课程结束日与今日中较晚者，再向后推 minWorkingDays 个工作日；
// 课程早已结束时间隔同样从今日起算
func (s *CalendarService) EarliestBookableDate(ctx context.Context, courseEnd, today time.Time, minWorkingDays int) (time.Time, error) {
	ref := DateOf(courseEnd)
	if t := DateOf(today); t.After(ref) {
		ref = t
	}
	return s.AddWorkingDays(ctx, ref, minWorkingDays)
}
