package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
	Booking  BookingConfig  `mapstructure:"booking"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port    int        `mapstructure:"port"`
	BaseURL string     `mapstructure:"base_url"`
	CORS    CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Name         string `mapstructure:"name"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	SSLMode      string `mapstructure:"sslmode"`
	Timezone     string `mapstructure:"timezone"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 配置（事件广播 + Token 黑名单）
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig JWT 认证配置
type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// BookingConfig 考试预约引擎配置
type BookingConfig struct {
	HoldDuration         time.Duration `mapstructure:"hold_duration"`          // 占位有效期
	MinWorkingDays       int           `mapstructure:"min_working_days"`       // 课程结束后最少间隔工作日
	SearchWindowMonths   int           `mapstructure:"search_window_months"`   // 可选时段搜索窗口（月）
	ReservePercent       int           `mapstructure:"reserve_percent"`        // 监考员预留比例（%，向上取整）
	CandidatesPerProctor int           `mapstructure:"candidates_per_proctor"` // 每名监考员对应考生数
	ReaperInterval       time.Duration `mapstructure:"reaper_interval"`        // 占位过期清理间隔
	ReminderDaysBefore   int           `mapstructure:"reminder_days_before"`   // 考前提醒提前天数
	ReminderTime         string        `mapstructure:"reminder_time"`          // 每日提醒任务时刻 HH:MM
	DeadlineTime         string        `mapstructure:"deadline_time"`          // 每日截止任务时刻 HH:MM
	Timezone             string        `mapstructure:"timezone"`               // 部门本地时区
	AdminIDs             []string      `mapstructure:"admin_ids"`              // 接收管理端通知的管理员
}

// Location 解析部门本地时区
func (c *BookingConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "examhub")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "Asia/Shanghai")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.access_token_ttl", "15m")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("booking.hold_duration", "15m")
	v.SetDefault("booking.min_working_days", 10)
	v.SetDefault("booking.search_window_months", 2)
	v.SetDefault("booking.reserve_percent", 20)
	v.SetDefault("booking.candidates_per_proctor", 30)
	v.SetDefault("booking.reaper_interval", "60s")
	v.SetDefault("booking.reminder_days_before", 4)
	v.SetDefault("booking.reminder_time", "08:00")
	v.SetDefault("booking.deadline_time", "12:00")
	v.SetDefault("booking.timezone", "Asia/Shanghai")
	v.SetDefault("booking.admin_ids", []string{})

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("EXAMHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// ── 关键配置校验 ──
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 不能为空")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 长度不能少于 16 字符")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	if c.Booking.ReservePercent < 0 || c.Booking.ReservePercent > 100 {
		return fmt.Errorf("配置校验失败: booking.reserve_percent 必须在 0-100 之间")
	}
	if c.Booking.MinWorkingDays < 0 {
		return fmt.Errorf("配置校验失败: booking.min_working_days 不能为负数")
	}
	if c.Booking.CandidatesPerProctor <= 0 {
		return fmt.Errorf("配置校验失败: booking.candidates_per_proctor 必须大于 0")
	}
	for _, t := range []string{c.Booking.ReminderTime, c.Booking.DeadlineTime} {
		if _, err := time.Parse("15:04", t); err != nil {
			return fmt.Errorf("配置校验失败: 任务时刻 %q 不是合法的 HH:MM 格式", t)
		}
	}
	if _, err := c.Booking.Location(); err != nil {
		return fmt.Errorf("配置校验失败: booking.timezone 无效: %w", err)
	}
	return nil
}
