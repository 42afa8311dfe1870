package config

import (
	"errors"
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}
type AdminHTTP struct {
	Host string
	Port int
}

type App struct {
	Name  string
	Env   string
	HTTP  HTTP
	Admin AdminHTTP
}

type FileRotate struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level string
	JSON  bool
	File  FileRotate
}

// Limits 入口保护（限速/并发/包体/超时）
type Limits struct {
	RPS           float64
	Burst         int
	PerIPRPS      float64 `mapstructure:"perIPRPS"`
	PerIPBurst    int     `mapstructure:"perIPBurst"`
	MaxConcurrent int64
	MaxBodyBytes  int64
	TimeoutSec    int
}

type CORS struct {
	AllowOrigins []string
}

type JWT struct {
	Required          bool
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
}

type Mongo struct {
	URI        string
	Database   string
	Collection string
	TimeoutSec int
}

// Store 选择时间段存储：mongo / postgres / mysql / memory
type Store struct {
	Driver string
	Mongo  Mongo
}

// DB store.driver 为 postgres / mysql 时使用
type DB struct {
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type Lock struct {
	TTLMs   int `mapstructure:"ttlMs"`
	RetryMs int
}

type Cache struct {
	TTLSec int `mapstructure:"ttlSec"`
}

type Rabbit struct {
	URL   string `mapstructure:"url"`
	Queue string
}

type SlotTemplate struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type UI struct {
	Owner          string
	Month          string // YYYY-MM
	InterviewTypes []string
	Slots          []SlotTemplate
}

type Config struct {
	App    App
	Log    Log
	Limits Limits
	CORS   CORS `mapstructure:"cors"`
	JWT    JWT
	Store  Store
	DB     DB
	Redis  Redis `mapstructure:"redis"`
	Lock   Lock
	Cache  Cache
	Rabbit Rabbit
	UI     UI `mapstructure:"ui"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "interview-scheduler")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 5000)
	v.SetDefault("app.http.readTimeoutSec", 5)
	v.SetDefault("app.http.writeTimeoutSec", 10)
	v.SetDefault("app.http.idleTimeoutSec", 60)
	v.SetDefault("app.admin.host", "127.0.0.1")
	v.SetDefault("app.admin.port", 5001)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file.enable", false)
	v.SetDefault("log.file.filename", "logs/scheduler.log")
	v.SetDefault("log.file.maxSizeMB", 64)
	v.SetDefault("log.file.maxBackups", 5)
	v.SetDefault("log.file.maxAgeDays", 14)
	v.SetDefault("log.file.compress", true)

	v.SetDefault("limits.rps", 200)
	v.SetDefault("limits.burst", 400)
	v.SetDefault("limits.perIPRPS", 20)
	v.SetDefault("limits.perIPBurst", 40)
	v.SetDefault("limits.maxConcurrent", 300)
	v.SetDefault("limits.maxBodyBytes", 1<<20)
	v.SetDefault("limits.timeoutSec", 10)

	v.SetDefault("cors.allowOrigins", []string{"*"})

	v.SetDefault("jwt.required", false)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "interview-scheduler")
	v.SetDefault("jwt.accessTokenTTLMin", 720)

	v.SetDefault("store.driver", "mongo")
	v.SetDefault("store.mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("store.mongo.database", "scheduler")
	v.SetDefault("store.mongo.collection", "timeslots")
	v.SetDefault("store.mongo.timeoutSec", 10)

	v.SetDefault("db.dsn", "")
	v.SetDefault("db.username", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.autoMigrate", true)
	v.SetDefault("db.maxOpenConns", 20)
	v.SetDefault("db.maxIdleConns", 5)
	v.SetDefault("db.connMaxLifetimeMin", 30)
	v.SetDefault("db.logLevel", "warn")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("lock.ttlMs", 5000)
	v.SetDefault("lock.retryMs", 25)
	v.SetDefault("cache.ttlSec", 30)
	v.SetDefault("rabbit.url", "")
	v.SetDefault("rabbit.queue", "timeslot.events")

	v.SetDefault("ui.owner", "current_hr_id")
	v.SetDefault("ui.month", "2025-01")
	v.SetDefault("ui.interviewTypes", []string{"Technical", "HR", "Final Round"})
	v.SetDefault("ui.slots", []map[string]string{
		{"start": "15:00", "end": "15:30"},
		{"start": "15:30", "end": "16:00"},
		{"start": "16:00", "end": "16:30"},
		{"start": "16:30", "end": "17:00"},
	})
}

func Load(path string) *Config {
	c, err := Read(path)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	return c
}

// Read 读取配置；配置文件不存在时只用默认值 + 环境变量
func Read(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// 兼容旧部署的 MONGODB_URI
	_ = v.BindEnv("store.mongo.uri", "APP_STORE_MONGO_URI", "MONGODB_URI")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	return &c, nil
}
