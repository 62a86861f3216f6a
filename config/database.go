package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

func init() {
	// Load env from .env; absence is fine, real env wins either way.
	godotenv.Load()
}

// StoreConfig holds everything needed to reach the analytics database.
// Every job builds one of these up front and hands the resulting *gorm.DB
// to the components it runs; nothing reads connection state ambiently.
type StoreConfig struct {
	User     string
	Password string
	Host     string
	Port     string
	Name     string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// ConnectAttempts bounds the retry loop. These are short-lived scripts,
	// so an unreachable database is a fatal misconfiguration, not something
	// to wait out indefinitely.
	ConnectAttempts int
}

var ErrStoreConfigIncomplete = errors.New("store configuration incomplete")

// LoadStoreConfig reads the database settings from the environment.
// Required: DB_USER, DB_PASSWORD, DB_HOST, DB_PORT, DB_NAME.
func LoadStoreConfig() (*StoreConfig, error) {
	cfg := &StoreConfig{
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		Host:     os.Getenv("DB_HOST"),
		Port:     os.Getenv("DB_PORT"),
		Name:     os.Getenv("DB_NAME"),

		MaxOpenConns:    intFromEnv("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    intFromEnv("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: time.Duration(intFromEnv("DB_CONN_MAX_LIFETIME_SECONDS", 300)) * time.Second,
		ConnMaxIdleTime: time.Duration(intFromEnv("DB_CONN_MAX_IDLE_TIME_SECONDS", 60)) * time.Second,
		ConnectAttempts: intFromEnv("DB_CONNECT_ATTEMPTS", 3),
	}

	var missing []string
	for _, kv := range []struct{ key, val string }{
		{"DB_USER", cfg.User},
		{"DB_PASSWORD", cfg.Password},
		{"DB_HOST", cfg.Host},
		{"DB_PORT", cfg.Port},
		{"DB_NAME", cfg.Name},
	} {
		if strings.TrimSpace(kv.val) == "" {
			missing = append(missing, kv.key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrStoreConfigIncomplete, strings.Join(missing, ", "))
	}
	return cfg, nil
}

// ConnectDatabase opens the MySQL connection described by cfg and tunes the
// underlying pool. Retries with backoff up to cfg.ConnectAttempts.
func ConnectDatabase(cfg *StoreConfig) (*gorm.DB, error) {
	network := "tcp"
	address := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)

	// Cloud SQL Auth Proxy: DB_HOST of the form "/cloudsql/<CONNECTION_NAME>"
	// means a unix domain socket rather than tcp.
	if strings.HasPrefix(cfg.Host, "/cloudsql/") {
		network = "unix"
		address = cfg.Host
	}

	dsn := fmt.Sprintf("%s:%s@%s(%s)/%s?multiStatements=true&parseTime=true",
		cfg.User,
		cfg.Password,
		network,
		address,
		cfg.Name,
	)

	attempts := cfg.ConnectAttempts
	if attempts < 1 {
		attempts = 1
	}

	var db *gorm.DB
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		db, err = gorm.Open(mysql.Open(dsn), initConfig())
		if err == nil {
			if sqlDB, derr := db.DB(); derr == nil && sqlDB != nil {
				if cfg.MaxOpenConns > 0 {
					sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
				}
				if cfg.MaxIdleConns >= 0 {
					sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
				}
				if cfg.ConnMaxLifetime > 0 {
					sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
				}
				if cfg.ConnMaxIdleTime > 0 {
					sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
				}
			}
			return db, nil
		}

		if attempt < attempts {
			sleep := time.Second * time.Duration(1<<minInt(attempt, 4))
			log.Printf("failed to connect database (attempt=%d/%d): %v; retrying in %s", attempt, attempts, err, sleep)
			time.Sleep(sleep)
		}
	}
	return nil, fmt.Errorf("connect database after %d attempts: %w", attempts, err)
}

// CloseDatabase releases the underlying pool. Safe on a nil db.
func CloseDatabase(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil && sqlDB != nil {
		sqlDB.Close()
	}
}

func intFromEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func initConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         initLog(),
		NamingStrategy: initNamingStrategy(),
	}
}

// InitLog Connection Log Configuration
func initLog() logger.Interface {
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			Colorful:      false,
			LogLevel:      logger.Error,
			SlowThreshold: time.Second,
		},
	)
	return newLogger
}

// InitNamingStrategy Init NamingStrategy
func initNamingStrategy() *schema.NamingStrategy {
	return &schema.NamingStrategy{
		SingularTable: false,
		TablePrefix:   "",
	}
}
