package configs

import (
	"context"
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"

	"blood_donation_backend/internals/constants"
)

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if os.Getenv("APP_ENV") == "production" {
		log.Println("🚀 Production mode, reading ENV from the system")
		return
	}
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, using system ENV")
	} else {
		log.Println("✅ .env file loaded")
	}
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if (!exists || strings.TrimSpace(value) == "") && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

func getInt(key string, def int) int {
	raw := GetEnv(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("⚠️ %s=%q is not an integer, using %d", key, raw, def)
		return def
	}
	return n
}

func getDuration(key string, def time.Duration) time.Duration {
	raw := GetEnv(key)
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("⚠️ %s=%q is not a duration, using %s", key, raw, def)
		return def
	}
	return d
}

// =======================
// TYPED CONFIG
// =======================

type DBConfig struct {
	Driver        string // postgres | sqlite
	User          string
	Password      string
	Host          string
	Port          string
	Name          string
	SSLMode       string
	Path          string // sqlite file
	LogLevel      gormLogger.LogLevel
	SlowThreshold time.Duration
}

// WorkflowConfig holds the tunables of the request workflow and the
// integrity rules.
type WorkflowConfig struct {
	// RecoveryPeriod is the minimum gap between two donations of one donor.
	RecoveryPeriod time.Duration
	// AppointmentGrace tolerates appointments submitted slightly in the past.
	AppointmentGrace time.Duration
	// LockTimeout bounds each workflow transaction.
	LockTimeout   time.Duration
	AcceptRetries int
	MatchPolicy   constants.MatchPolicy
}

func DefaultWorkflowConfig() WorkflowConfig {
	return WorkflowConfig{
		RecoveryPeriod:   90 * 24 * time.Hour,
		AppointmentGrace: time.Minute,
		LockTimeout:      3 * time.Second,
		AcceptRetries:    3,
		MatchPolicy:      constants.MatchCompatible,
	}
}

type SeedConfig struct {
	AdminName      string
	AdminUsername  string
	AdminEmail     string
	AdminPassword  string
	BloodBanksFile string
}

// MetricsConfig says where each CLI run pushes its counters. An empty
// PushURL disables pushing.
type MetricsConfig struct {
	PushURL     string
	Job         string
	PushTimeout time.Duration
}

type AppConfig struct {
	DB         DBConfig
	Workflow   WorkflowConfig
	BcryptCost int
	Seed       SeedConfig
	Metrics    MetricsConfig
}

// Load reads the typed configuration from the environment. Call LoadEnv first.
func Load() AppConfig {
	wf := DefaultWorkflowConfig()
	wf.RecoveryPeriod = time.Duration(getInt("DONOR_RECOVERY_DAYS", 90)) * 24 * time.Hour
	wf.AppointmentGrace = getDuration("APPOINTMENT_GRACE", wf.AppointmentGrace)
	wf.LockTimeout = getDuration("WORKFLOW_LOCK_TIMEOUT", wf.LockTimeout)
	wf.AcceptRetries = getInt("WORKFLOW_ACCEPT_RETRIES", wf.AcceptRetries)
	switch p := constants.MatchPolicy(GetEnv("MATCH_POLICY", string(constants.MatchCompatible))); p {
	case constants.MatchExact, constants.MatchCompatible:
		wf.MatchPolicy = p
	default:
		log.Printf("⚠️ MATCH_POLICY=%q unknown, using %s", p, constants.MatchCompatible)
	}

	cost := getInt("BCRYPT_COST", bcrypt.DefaultCost)
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	return AppConfig{
		DB: DBConfig{
			Driver:        GetEnv("DB_DRIVER", "postgres"),
			User:          GetEnv("DB_USER"),
			Password:      GetEnv("DB_PASSWORD"),
			Host:          GetEnv("DB_HOST", "localhost"),
			Port:          GetEnv("DB_PORT", "5432"),
			Name:          GetEnv("DB_NAME", "blood_donation"),
			SSLMode:       GetEnv("DB_SSLMODE", "disable"),
			Path:          GetEnv("DB_PATH", "blood_donation.db"),
			LogLevel:      parseLogLevel(GetEnv("DB_LOG_LEVEL", "warn")),
			SlowThreshold: getDuration("DB_SLOW_THRESHOLD", 200*time.Millisecond),
		},
		Workflow:   wf,
		BcryptCost: cost,
		Seed: SeedConfig{
			AdminName:      GetEnv("SEED_ADMIN_NAME", "Administrator"),
			AdminUsername:  GetEnv("SEED_ADMIN_USERNAME", "admin"),
			AdminEmail:     GetEnv("SEED_ADMIN_EMAIL", "admin@blooddonation.local"),
			AdminPassword:  GetEnv("SEED_ADMIN_PASSWORD"),
			BloodBanksFile: GetEnv("SEED_BLOOD_BANKS_FILE", "internals/seeds/blood_banks/data_blood_banks.json"),
		},
		Metrics: MetricsConfig{
			PushURL:     strings.TrimRight(GetEnv("PUSHGATEWAY_URL"), "/"),
			Job:         GetEnv("METRICS_JOB", "blood_donation"),
			PushTimeout: getDuration("PUSHGATEWAY_TIMEOUT", 5*time.Second),
		},
	}
}

func parseLogLevel(s string) gormLogger.LogLevel {
	switch strings.ToLower(s) {
	case "silent":
		return gormLogger.Silent
	case "error":
		return gormLogger.Error
	case "info":
		return gormLogger.Info
	default:
		return gormLogger.Warn
	}
}

// =======================
// GORM LOGGER CUSTOM
// =======================
type GormLogger struct {
	SlowThreshold time.Duration
	LogLevel      gormLogger.LogLevel
}

func NewGormLogger(level gormLogger.LogLevel, slow time.Duration) gormLogger.Interface {
	return &GormLogger{
		SlowThreshold: slow,
		LogLevel:      level,
	}
}

func (l *GormLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	cp := *l
	cp.LogLevel = level
	return &cp
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Info {
		log.Printf("[INFO] "+msg, data...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Warn {
		log.Printf("[WARN] "+msg, data...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Error {
		log.Printf("[ERROR] "+msg, data...)
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= gormLogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	file := utils.FileWithLineNum()

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.LogLevel >= gormLogger.Error:
		sql, rows := fc()
		log.Printf("[ERROR] %s | %v | %s | %d rows | %s", file, err, elapsed, rows, sql)
	case l.SlowThreshold > 0 && elapsed > l.SlowThreshold && l.LogLevel >= gormLogger.Warn:
		sql, rows := fc()
		log.Printf("[SLOW SQL] %s | %s | %d rows | %s", file, elapsed, rows, sql)
	case l.LogLevel >= gormLogger.Info:
		sql, rows := fc()
		log.Printf("[QUERY] %s | %s | %d rows | %s", file, elapsed, rows, sql)
	}
}
