package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv     string
	Port       string
	JWTSecret  string
	DB         DBConfig
	RedisAddr  string
	Kafka      KafkaConfig
	SMTP       SMTPConfig
	CORS       []string
	Leave      LeaveConfig
	Attendance AttendanceConfig
}

type DBConfig struct {
	Host        string
	User        string
	Password    string
	Name        string
	Port        string
	SSLMode     string
	MaxRetries  int
	AutoMigrate bool
}

type KafkaConfig struct {
	Broker        string
	ConsumerGroup string
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// LeaveConfig is turned into an immutable leave.Policy by the composition root.
type LeaveConfig struct {
	TotalPerYear int
	Sick         int
	Annual       int
	Casual       int
	MaxSpanDays  int
}

type AttendanceConfig struct {
	Schedule      string
	LateAfter     string
	CheckoutAt    string
	TimeZone      string
	CheckoutGrace time.Duration
}

// Load reads .env when present, then the process environment.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppEnv:    GetEnv("APP_ENV", "development"),
		Port:      GetEnv("PORT", "3000"),
		JWTSecret: GetEnv("JWT_SECRET"),
		DB: DBConfig{
			Host:        GetEnv("DB_HOST", "localhost"),
			User:        GetEnv("DB_USER", "postgres"),
			Password:    GetEnv("DB_PASSWORD"),
			Name:        GetEnv("DB_NAME", "worksync"),
			Port:        GetEnv("DB_PORT", "5432"),
			SSLMode:     GetEnv("DB_SSLMODE", "disable"),
			MaxRetries:  GetEnvInt("DB_MAX_RETRIES", 5),
			AutoMigrate: GetEnvBool("DB_AUTO_MIGRATE", false),
		},
		RedisAddr: GetEnv("REDIS_ADDR", "localhost:6379"),
		Kafka: KafkaConfig{
			Broker:        GetEnv("KAFKA_BROKER"),
			ConsumerGroup: GetEnv("KAFKA_CONSUMER_GROUP", "worksync-leave-notifications"),
		},
		SMTP: SMTPConfig{
			Host:     GetEnv("SMTP_HOST"),
			Port:     GetEnvInt("SMTP_PORT", 587),
			User:     GetEnv("SMTP_USER"),
			Password: GetEnv("SMTP_PASSWORD"),
			From:     GetEnv("SMTP_FROM", "no-reply@worksync.local"),
		},
		CORS: splitList(GetEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
		Leave: LeaveConfig{
			TotalPerYear: GetEnvInt("LEAVE_TOTAL_PER_YEAR", 25),
			Sick:         GetEnvInt("LEAVE_POLICY_SICK", 10),
			Annual:       GetEnvInt("LEAVE_POLICY_ANNUAL", 10),
			Casual:       GetEnvInt("LEAVE_POLICY_CASUAL", 5),
			MaxSpanDays:  GetEnvInt("LEAVE_MAX_SPAN_DAYS", 30),
		},
		Attendance: AttendanceConfig{
			Schedule:      GetEnv("ATTENDANCE_CRON", "0 23 * * *"),
			LateAfter:     GetEnv("ATTENDANCE_LATE_AFTER", "09:15"),
			CheckoutAt:    GetEnv("ATTENDANCE_AUTO_CHECKOUT_AT", "18:00"),
			TimeZone:      GetEnv("ATTENDANCE_TZ", "UTC"),
			CheckoutGrace: GetEnvDuration("ATTENDANCE_CHECKOUT_GRACE", 0),
		},
	}
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if (!exists || value == "") && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

func GetEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func GetEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func GetEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
