package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// InsecureJWTSecret 仅用于本地开发，任何部署都必须覆盖
const InsecureJWTSecret = "your-secret-key"

type CORS struct {
	AllowOrigins []string
}

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}

type App struct {
	Name string
	Env  string
	HTTP HTTP
	CORS CORS
}

type LogFile struct {
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
	File  LogFile
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type Auth struct {
	BcryptCost       int
	LoginMaxAttempts int // 0 关闭登录限流
	LoginWindowSec   int
}

type Generation struct {
	OverloadRate float64 // 模拟下游过载的概率
	MaxImageMB   int
	DefaultLimit int
	MaxLimit     int
}

type Limits struct {
	RPS         float64
	Burst       int
	PerIPRPS    float64
	PerIPBurst  int
	Concurrency int64
	MaxBodyMB   int64
	TimeoutSec  int
}

type Config struct {
	App        App
	Log        Log
	JWT        JWT
	DB         DB
	Redis      Redis `mapstructure:"redis"`
	Auth       Auth
	Generation Generation
	Limits     Limits
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "ai-image-studio")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 3001)
	v.SetDefault("app.http.readTimeoutSec", 15)
	v.SetDefault("app.http.writeTimeoutSec", 30)
	v.SetDefault("app.http.idleTimeoutSec", 60)
	v.SetDefault("app.cors.allowOrigins", []string{"http://localhost:3000"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file.enable", false)
	v.SetDefault("log.file.filename", "logs/app.log")
	v.SetDefault("log.file.maxSizeMB", 100)
	v.SetDefault("log.file.maxBackups", 5)
	v.SetDefault("log.file.maxAgeDays", 14)
	v.SetDefault("log.file.compress", false)

	v.SetDefault("jwt.secret", InsecureJWTSecret)
	v.SetDefault("jwt.issuer", "")
	v.SetDefault("jwt.accessTokenTTLMin", 24*60)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "data/ai_studio.db")
	v.SetDefault("db.username", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.maxOpenConns", 10)
	v.SetDefault("db.maxIdleConns", 5)
	v.SetDefault("db.connMaxLifetimeMin", 30)
	v.SetDefault("db.autoMigrate", true)
	v.SetDefault("db.logLevel", "warn")

	// 留空关闭 Redis；键必须登记，否则 APP_REDIS_* 不会被 Unmarshal 读到
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.bcryptCost", 10)
	v.SetDefault("auth.loginMaxAttempts", 10)
	v.SetDefault("auth.loginWindowSec", 300)

	v.SetDefault("generation.overloadRate", 0.2)
	v.SetDefault("generation.maxImageMB", 10)
	v.SetDefault("generation.defaultLimit", 5)
	v.SetDefault("generation.maxLimit", 100)

	v.SetDefault("limits.rps", 200)
	v.SetDefault("limits.burst", 400)
	v.SetDefault("limits.perIPRPS", 20)
	v.SetDefault("limits.perIPBurst", 40)
	v.SetDefault("limits.concurrency", 300)
	v.SetDefault("limits.maxBodyMB", 12)
	v.SetDefault("limits.timeoutSec", 30)
}

// Load 读取 YAML + 环境变量（APP_ 前缀，. 替换为 _）。配置文件不存在时只用默认值。
func Load(path string) (*Config, error) {
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

	// 兼容旧部署里的无前缀变量
	_ = v.BindEnv("jwt.secret", "APP_JWT_SECRET", "JWT_SECRET")
	_ = v.BindEnv("app.http.port", "APP_APP_HTTP_PORT", "PORT")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// InsecureSecret 是否仍在使用默认密钥
func (c *Config) InsecureSecret() bool {
	return c.JWT.Secret == "" || c.JWT.Secret == InsecureJWTSecret
}
