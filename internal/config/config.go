package config

import (
	"fmt"
	"math"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Tracing   TracingConfig `mapstructure:"tracing"`
	Redis     RedisConfig
	Generator GeneratorConfig `mapstructure:"generator"`
	Engine    EngineConfig    `mapstructure:"engine"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	ForceMigrate bool `mapstructure:"-"`
	MigrateOnly  bool `mapstructure:"-"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

// GeneratorConfig 外部出题服务（OpenAI兼容接口）
type GeneratorConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	Timeout int    `mapstructure:"timeout_seconds"`
}

// EngineConfig 自适应引擎的可调参数
type EngineConfig struct {
	MasteryHistoryWeight   float64 `mapstructure:"mastery_history_weight"`
	MasterySessionWeight   float64 `mapstructure:"mastery_session_weight"`
	XPPerLevel             int     `mapstructure:"xp_per_level"`
	XPPerfectQuiz          int     `mapstructure:"xp_perfect_quiz"`
	XPPassQuiz             int     `mapstructure:"xp_pass_quiz"`
	XPCompletionQuiz       int     `mapstructure:"xp_completion_quiz"`
	XPStreakBonus          int     `mapstructure:"xp_streak_bonus"`
	LowScoreAlertThreshold int     `mapstructure:"low_score_alert_threshold"`
	WeakAreaResolveRun     int     `mapstructure:"weak_area_resolve_run"`
	WeakTopicHintLimit     int     `mapstructure:"weak_topic_hint_limit"`
	LeaderboardSize        int     `mapstructure:"leaderboard_size"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func LoadConfig(path string) (*Config, error) {
	viper.Reset()
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("KURSUS")
	viper.AutomaticEnv()

	// Database
	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.dbname", "DATABASE_NAME")

	// JWT
	viper.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	viper.BindEnv("server.mode", "SERVER_MODE")

	// 出题服务
	viper.BindEnv("generator.base_url", "GENERATOR_BASE_URL")
	viper.BindEnv("generator.api_key", "GENERATOR_API_KEY")
	viper.BindEnv("generator.model", "GENERATOR_MODEL")

	// Tracing
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	// 引擎参数默认值：可在 config.yaml 中覆盖，属于策略调参而非硬性需求
	viper.SetDefault("engine.mastery_history_weight", 0.7)
	viper.SetDefault("engine.mastery_session_weight", 0.3)
	viper.SetDefault("engine.xp_per_level", 200)
	viper.SetDefault("engine.xp_perfect_quiz", 50)
	viper.SetDefault("engine.xp_pass_quiz", 30)
	viper.SetDefault("engine.xp_completion_quiz", 10)
	viper.SetDefault("engine.xp_streak_bonus", 20)
	viper.SetDefault("engine.low_score_alert_threshold", 50)
	viper.SetDefault("engine.weak_area_resolve_run", 3)
	viper.SetDefault("engine.weak_topic_hint_limit", 3)
	viper.SetDefault("engine.leaderboard_size", 10)
	viper.SetDefault("generator.timeout_seconds", 30)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour

	// 生产环境校验 JWT Secret 强度
	if cfg.Server.Mode == "release" && len(cfg.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(cfg.JWT.Secret))
	}

	if math.Abs(cfg.Engine.MasteryHistoryWeight+cfg.Engine.MasterySessionWeight-1.0) > 1e-9 {
		return nil, fmt.Errorf("engine mastery weights must sum to 1.0, got %.2f",
			cfg.Engine.MasteryHistoryWeight+cfg.Engine.MasterySessionWeight)
	}

	return &cfg, nil
}

// DefaultEngineConfig 测试与本地工具使用的默认引擎参数
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		MasteryHistoryWeight:   0.7,
		MasterySessionWeight:   0.3,
		XPPerLevel:             200,
		XPPerfectQuiz:          50,
		XPPassQuiz:             30,
		XPCompletionQuiz:       10,
		XPStreakBonus:          20,
		LowScoreAlertThreshold: 50,
		WeakAreaResolveRun:     3,
		WeakTopicHintLimit:     3,
		LeaderboardSize:        10,
	}
}
