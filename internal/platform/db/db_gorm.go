// Package db はユーザーストアが使用するgorm接続を提供します。
package db

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"social_backend/internal/feature/user/adapters"
	"social_backend/internal/platform/config"
)

const retryInterval = 3 * time.Second

// Opener はDSNからgorm接続を開く関数です。
type Opener func(dsn string) (*gorm.DB, error)

// BuildDSN はPostgreSQL用のkey/value形式DSNを返します。
// InstanceName が設定されている場合はホストとポートの代わりにCloud SQLのUnixソケットを使用します。
func BuildDSN(cfg config.DBConfig) string {
	host, port := cfg.Host, cfg.Port
	if cfg.InstanceName != "" {
		host, port = "/cloudsql/"+cfg.InstanceName, ""
	}

	parts := []string{
		kv("host", host),
		kv("user", cfg.User),
		kv("password", cfg.Password),
		kv("dbname", cfg.Name),
	}
	if port != "" {
		parts = append(parts, kv("port", port))
	}
	if cfg.SSLMode != "" {
		parts = append(parts, kv("sslmode", cfg.SSLMode))
	}
	return strings.Join(parts, " ")
}

// kv は空文字や空白・引用符・バックスラッシュを含む値をクォートします。
func kv(key, value string) string {
	if value != "" && !strings.ContainsAny(value, ` '\`) {
		return key + "=" + value
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return key + "='" + r.Replace(value) + "'"
}

// ConnectWithRetry は接続に成功するかタイムアウトするまで3秒間隔でopenerを呼び出します。
func ConnectWithRetry(dsn string, timeout time.Duration, opener Opener) (*gorm.DB, error) {
	return connectWithRetry(dsn, timeout, retryInterval, opener)
}

func connectWithRetry(dsn string, timeout, interval time.Duration, opener Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for attempt := 1; ; attempt++ {
		db, err := opener(dsn)
		if err == nil {
			return db, nil
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, fmt.Errorf("db connect failed after %d attempts: %w", attempt, err)
		}
		slog.Warn("db connect failed, retrying", "attempt", attempt, "error", err)
		time.Sleep(min(interval, remaining))
	}
}

// OpenDB は設定されたドライバーで接続し、必要に応じてマイグレーションを実行します。
// SQLiteは起動時に常にマイグレーションします。PostgreSQLは RunMigrations が有効な場合のみです。
func OpenDB(cfg config.DBConfig) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)

	switch cfg.Driver {
	case config.DriverPostgres:
		db, err = ConnectWithRetry(BuildDSN(cfg), cfg.ConnectWait, func(dsn string) (*gorm.DB, error) {
			return gorm.Open(postgres.Open(dsn), gormConfig())
		})
	case config.DriverSQLite:
		db, err = openSQLite(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	slog.Info("db connection successful", "driver", cfg.Driver)

	if cfg.RunMigrations || cfg.Driver == config.DriverSQLite {
		if err := Migrate(db); err != nil {
			return nil, err
		}
		slog.Info("db migrations applied")
	}
	return db, nil
}

// Migrate はusersテーブルを作成または更新します。
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&adapters.UserModel{}); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

func openSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %s: %w", path, err)
	}
	// SQLiteは書き込みが直列化されるため接続は1本。:memory: のDBも共有される
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}
}
