package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// Config 结构体用于存储应用程序的配置信息
type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	JWTSecret  string
	LogLevel   string
	ServerAddr string

	FrontendURL string
	BackendURL  string

	// 媒体存储：local / s3 / gcs
	StorageDriver      string
	LocalStoragePath   string
	S3Region           string
	S3Bucket           string
	GCSProjectID       string
	GCSBucketName      string
	GCSCredentialsFile string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string

	// 为空时不推送通知事件
	NATSURL string

	// 计数器校准间隔，0 表示关闭
	CounterReconcileInterval time.Duration

	Debug bool // 是否开启调试模式
}

// AppConfig 是全局配置变量
var AppConfig Config

// Init 函数用于初始化配置
func Init() {
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Printf("警告：无法加载 .env 文件: %v", err)
	}

	AppConfig = Load()

	if AppConfig.Debug {
		gin.SetMode(gin.DebugMode)
		log.Println("应用程序运行在调试模式")
	} else {
		gin.SetMode(gin.ReleaseMode)
		log.Println("应用程序运行在生产模式")
	}

	log.Printf("配置加载完成。数据库：%s:%s，存储：%s", AppConfig.DBHost, AppConfig.DBPort, AppConfig.StorageDriver)
}

// Load 从环境变量中读取配置
func Load() Config {
	return Config{
		DBHost:     getEnv("DB_HOST", ""),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", ""),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", ""),
		JWTSecret:  getEnv("JWT_SECRET", ""),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),

		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),
		BackendURL:  getEnv("BACKEND_URL", "http://localhost:8080"),

		StorageDriver:      getEnv("STORAGE_DRIVER", "local"),
		LocalStoragePath:   getEnv("LOCAL_STORAGE_PATH", "./uploads"),
		S3Region:           getEnv("S3_REGION", "us-west-2"),
		S3Bucket:           getEnv("S3_BUCKET", ""),
		GCSProjectID:       getEnv("GCS_PROJECT_ID", ""),
		GCSBucketName:      getEnv("GCS_BUCKET_NAME", ""),
		GCSCredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvAsInt("SMTP_PORT", 465),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		NATSURL: getEnv("NATS_URL", ""),

		CounterReconcileInterval: getEnvAsDuration("COUNTER_RECONCILE_INTERVAL", 10*time.Minute),

		Debug: getEnvAsBool("DEBUG", false),
	}
}

// Validate 检查必需的配置项
func (c Config) Validate() error {
	if c.DBHost == "" || c.DBPort == "" || c.DBUser == "" || c.DBName == "" {
		return errors.New("数据库配置不完整")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT密钥未设置")
	}
	switch c.StorageDriver {
	case "local":
	case "s3":
		if c.S3Bucket == "" {
			return errors.New("S3存储桶未设置")
		}
	case "gcs":
		if c.GCSBucketName == "" {
			return errors.New("GCS存储桶未设置")
		}
	default:
		return errors.New("未知的存储驱动: " + c.StorageDriver)
	}
	return nil
}

// SMTPEnabled 是否配置了邮件服务
func (c Config) SMTPEnabled() bool {
	return c.SMTPHost != "" && c.SMTPUsername != "" && c.SMTPPassword != ""
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultVal int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	valStr := getEnv(key, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	valStr := getEnv(key, "")
	if val, err := time.ParseDuration(valStr); err == nil {
		return val
	}
	return defaultVal
}
