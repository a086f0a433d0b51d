package config

import (
	"errors"
	"os"
	"strconv"
	"sync"
	"time"

	"hackdash/logutils"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "./etc/config.yaml"
	configPathEnv     = "HACKDASH_CONFIG"
)

type Config struct {
	Server struct {
		Addr         string `yaml:"addr"`
		BaseURL      string `yaml:"baseURL"`
		CookieName   string `yaml:"cookieName"`
		SecureCookie bool   `yaml:"secureCookie"`
	} `yaml:"server"`
	Database struct {
		Driver       string `yaml:"driver"` // postgres or sqlite
		Host         string `yaml:"host"`
		Port         string `yaml:"port"`
		DBName       string `yaml:"dbname"`
		User         string `yaml:"user"`
		Password     string `yaml:"password"`
		SSLMode      string `yaml:"sslmode"`
		TimeZone     string `yaml:"TimeZone"`
		SQLitePath   string `yaml:"sqlitePath"`
		MaxIdleConns int    `yaml:"maxIdleConns"`
		MaxOpenConns int    `yaml:"maxOpenConns"`
	} `yaml:"database"`
	Auth struct {
		TokenSecret string        `yaml:"tokenSecret"`
		SignInTTL   time.Duration `yaml:"signInTTL"`
		SessionTTL  time.Duration `yaml:"sessionTTL"`
		WelcomePath string        `yaml:"welcomePath"`
	} `yaml:"auth"`
	Mail struct {
		Driver   string `yaml:"driver"` // smtp or log
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		From     string `yaml:"from"`
	} `yaml:"mail"`
	Uploads struct {
		Backend     string `yaml:"backend"` // disk or s3
		Dir         string `yaml:"dir"`
		MaxSize     int64  `yaml:"maxSize"`
		S3Bucket    string `yaml:"s3Bucket"`
		S3Region    string `yaml:"s3Region"`
		S3Endpoint  string `yaml:"s3Endpoint"`
		S3AccessKey string `yaml:"s3AccessKey"`
		S3SecretKey string `yaml:"s3SecretKey"`
	} `yaml:"uploads"`
	Hackathon struct {
		Year string `yaml:"year"`
	} `yaml:"hackathon"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

var (
	once   sync.Once
	config *Config
)

func GetConfig() *Config {
	once.Do(func() {
		config = initConfig()
	})
	return config
}

// initConfig reads .env (if present), then the YAML file named by
// HACKDASH_CONFIG or ./etc/config.yaml, then the environment overrides.
// A missing YAML file is not an error: the defaults are used.
func initConfig() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logutils.Log.Warn("load .env: ", err)
	}

	configPath := DefaultConfigPath
	if p := os.Getenv(configPathEnv); p != "" {
		configPath = p
	}

	cfg, err := Load(configPath)
	if err != nil {
		logutils.Log.Error("init config", err)
		panic(err)
	}
	return cfg
}

// Load builds a Config from the defaults, the YAML file at filePath and the
// HACKDASH_* environment variables, in that order.
func Load(filePath string) (*Config, error) {
	cfg := Defaults()
	err := readConfig(filePath, cfg)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	applyEnv(cfg)
	return cfg, nil
}

// Defaults returns a development configuration backed by a local SQLite file.
func Defaults() *Config {
	cfg := &Config{}
	cfg.Server.Addr = ":3000"
	cfg.Server.BaseURL = "http://localhost:3000"
	cfg.Server.CookieName = "hackdash_session"

	cfg.Database.Driver = "sqlite"
	cfg.Database.Port = "5432"
	cfg.Database.SSLMode = "disable"
	cfg.Database.TimeZone = "UTC"
	cfg.Database.SQLitePath = "./data/hackdash.db"
	cfg.Database.MaxIdleConns = 5
	cfg.Database.MaxOpenConns = 10

	cfg.Auth.TokenSecret = "change-me"
	cfg.Auth.SignInTTL = 24 * time.Hour
	cfg.Auth.SessionTTL = 30 * 24 * time.Hour
	cfg.Auth.WelcomePath = "/welcome"

	cfg.Mail.Driver = "log"
	cfg.Mail.Port = 587
	cfg.Mail.From = "hackdash@localhost"

	cfg.Uploads.Backend = "disk"
	cfg.Uploads.Dir = "./data/uploads"
	cfg.Uploads.MaxSize = 5_000_000

	cfg.Hackathon.Year = "Y23"
	cfg.Log.Level = "info"
	return cfg
}

func readConfig(filePath string, config *Config) error {
	// 读取 YAML 配置文件
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	// 解析 YAML 数据到结构体
	err = yaml.Unmarshal(data, config)
	if err != nil {
		return err
	}
	return nil
}

func applyEnv(cfg *Config) {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString("HACKDASH_ADDR", &cfg.Server.Addr)
	setString("HACKDASH_BASE_URL", &cfg.Server.BaseURL)
	setString("HACKDASH_DB_DRIVER", &cfg.Database.Driver)
	setString("HACKDASH_DB_HOST", &cfg.Database.Host)
	setString("HACKDASH_DB_PORT", &cfg.Database.Port)
	setString("HACKDASH_DB_NAME", &cfg.Database.DBName)
	setString("HACKDASH_DB_USER", &cfg.Database.User)
	setString("HACKDASH_DB_PASSWORD", &cfg.Database.Password)
	setString("HACKDASH_SQLITE_PATH", &cfg.Database.SQLitePath)
	setString("HACKDASH_TOKEN_SECRET", &cfg.Auth.TokenSecret)
	setString("EMAIL_SERVER_HOST", &cfg.Mail.Host)
	setString("EMAIL_SERVER_USER", &cfg.Mail.User)
	setString("EMAIL_SERVER_PASSWORD", &cfg.Mail.Password)
	setString("EMAIL_FROM", &cfg.Mail.From)
	setString("HACKDASH_UPLOAD_BACKEND", &cfg.Uploads.Backend)
	setString("HACKDASH_UPLOAD_DIR", &cfg.Uploads.Dir)
	setString("HACKDASH_LOG_LEVEL", &cfg.Log.Level)

	if v := os.Getenv("EMAIL_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Mail.Port = port
		}
	}
}
