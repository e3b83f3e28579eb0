package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

type (
	APP struct {
		Name      string
		Host      string
		Port      string
		Env       string
		JWTSecret string
	}
	DB struct {
		User     string
		Password string
		Name     string
		Host     string
		Port     string
	}
	S3 struct {
		Endpoint        string
		AccessKeyID     string
		SecretAccessKey string
		BucketUploads   string
		UseSSL          bool
	}
	Clam struct {
		Address string
		Timeout time.Duration
	}
	Scheduler struct {
		Endpoint      string
		WebhookURL    string
		RearmInterval time.Duration
	}
	MQ struct {
		User         string
		Password     string
		Vhost        string
		Host         string
		AmqpPort     string
		Exchange     string
		ExchangeType string
		QueueName    string
	}
	Limits struct {
		MaxUploadBytes int64
		Retention      time.Duration
		DeletionTTL    time.Duration
	}

	Config struct {
		App       APP
		DB        DB
		S3        S3
		Clam      Clam
		Scheduler Scheduler
		MQ        MQ
		Limits    Limits
	}
)

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getEnvHours(key string, def int64) time.Duration {
	return time.Duration(getEnvInt64(key, def)) * time.Hour
}

func Load() Config {
	app := APP{
		Name:      getEnv("SERVICE_NAME", "filevaultapi"),
		Host:      getEnv("SERVICE_HOST", ""),
		Port:      getEnv("SERVICE_PORT", "8080"),
		Env:       getEnv("SERVICE_ENV", ""),
		JWTSecret: getEnv("SERVICE_JWT_SECRET", ""),
	}
	db := DB{
		User:     getEnv("POSTGRES_USER", ""),
		Password: getEnv("POSTGRES_PASSWORD", ""),
		Name:     getEnv("POSTGRES_DB", ""),
		Host:     getEnv("POSTGRES_HOST", ""),
		Port:     getEnv("POSTGRES_PORT", ""),
	}
	s3 := S3{
		Endpoint:        getEnv("S3_ENDPOINT", ""),
		AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		BucketUploads:   getEnv("S3_BUCKET_UPLOADS", ""),
		UseSSL:          getEnvBool("S3_USE_SSL", true),
	}
	clam := Clam{
		Address: getEnv("CLAMAV_ADDRESS", "tcp://localhost:3310"),
		Timeout: time.Duration(getEnvInt64("CLAMAV_TIMEOUT_SECONDS", 120)) * time.Second,
	}
	sched := Scheduler{
		Endpoint:      getEnv("SCHEDULER_ENDPOINT", ""),
		WebhookURL:    getEnv("SCHEDULER_WEBHOOK_URL", ""),
		RearmInterval: getEnvHours("SCHEDULER_REARM_INTERVAL_HOURS", 24),
	}
	mq := MQ{
		User:         getEnv("RABBITMQ_USER", ""),
		Password:     getEnv("RABBITMQ_PASSWORD", ""),
		Vhost:        getEnv("RABBITMQ_VHOST", ""),
		Host:         getEnv("RABBITMQ_HOST", ""),
		AmqpPort:     getEnv("RABBITMQ_AMQP_PORT", ""),
		Exchange:     getEnv("RABBITMQ_EXCHANGE", ""),
		ExchangeType: getEnv("RABBITMQ_EXCHANGE_TYPE", ""),
		QueueName:    getEnv("RABBITMQ_QUEUE_NAME", ""),
	}
	limits := Limits{
		MaxUploadBytes: getEnvInt64("UPLOAD_MAX_BYTES", 100<<20),
		Retention:      getEnvHours("FILE_RETENTION_HOURS", 30*24),
		DeletionTTL:    getEnvHours("FILE_DELETION_TTL_HOURS", 24),
	}

	return Config{
		App:       app,
		DB:        db,
		S3:        s3,
		Clam:      clam,
		Scheduler: sched,
		MQ:        mq,
		Limits:    limits,
	}
}

func (c Config) DBDSN() (string, error) {
	if c.DB.User == "" || c.DB.Name == "" || c.DB.Host == "" || c.DB.Port == "" {
		return "", fmt.Errorf("incomplete DB config")
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		c.DB.User,
		c.DB.Password,
		c.DB.Host,
		c.DB.Port,
		c.DB.Name,
	), nil
}

func (c Config) AMQPDSN() (string, error) {
	if c.MQ.User == "" || c.MQ.Host == "" || c.MQ.AmqpPort == "" {
		return "", fmt.Errorf("invalid MQ config: user, host and amqp port are required")
	}

	return fmt.Sprintf(
		"%s://%s@%s:%s/%s",
		"amqp",
		url.UserPassword(c.MQ.User, c.MQ.Password).String(),
		c.MQ.Host,
		c.MQ.AmqpPort,
		url.PathEscape(c.MQ.Vhost),
	), nil
}
