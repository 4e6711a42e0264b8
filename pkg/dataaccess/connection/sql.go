package connection

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	// DriverSQLite stores everything in a local sqlite file.
	DriverSQLite = "sqlite"

	// DriverMySQL stores everything in a MySQL server.
	DriverMySQL = "mysql"
)

// DefaultSQLiteDSN is used when no DSN is configured for sqlite.
const DefaultSQLiteDSN = "file:warden.db?_foreign_keys=on"

// ErrUnknownDriver is returned for a driver that is not sqlite or mysql.
var ErrUnknownDriver = errors.New("unknown sql driver")

// SQL opens relational databases through gorm.
type SQL struct {
	// Driver is DriverSQLite or DriverMySQL.
	Driver string

	// DSN is the driver specific data source name.
	DSN string

	// MaxOpenConns limits the pool. Zero keeps the driver default.
	MaxOpenConns int
}

// Connect opens the database and checks that it answers.
func (s *SQL) Connect(l *slog.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(s.Driver) {
	case DriverSQLite, "":
		dsn := s.DSN
		if dsn == "" {
			dsn = DefaultSQLiteDSN
		}
		dialector = sqlite.Open(dsn)
	case DriverMySQL:
		dialector = mysql.Open(s.DSN)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, s.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: NewGormLogger(l),
	})
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("error getting database handle: %w", err)
	}
	if s.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(s.MaxOpenConns)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	return db, nil
}

// NewGormLogger routes gorm's warnings and slow query reports to l.
func NewGormLogger(l *slog.Logger) logger.Interface {
	return logger.New(&gormWriter{l: l.With(slog.String("component", "gorm"))}, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

type gormWriter struct {
	l *slog.Logger
}

func (w *gormWriter) Printf(format string, args ...any) {
	w.l.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}
