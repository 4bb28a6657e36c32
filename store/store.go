package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kevinaaaquil/library/backend/models"
)

const pingAttempts = 10

// DB is the relational store. Every query method takes a context and returns nil, nil
// when a single-row lookup finds nothing.
type DB struct {
	Gorm *gorm.DB
}

// Open connects with the named driver ("postgres" or "sqlite") and waits for the
// database to answer a ping.
func Open(ctx context.Context, driver, dsn string, logger *slog.Logger) (*DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(slog.NewLogLogger(logger.Handler(), slog.LevelWarn), gormlogger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// one connection keeps in-memory databases shared and serializes writers
		sqlDB.SetMaxOpenConns(1)
		if err := gdb.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, err
		}
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	for i := 0; ; i++ {
		err = sqlDB.PingContext(ctx)
		if err == nil {
			break
		}
		if i+1 >= pingAttempts {
			return nil, fmt.Errorf("could not connect to db after %d attempts: %w", pingAttempts, err)
		}
		logger.Warn("database not ready, retrying", "attempt", i+1, "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	logger.Info("connected to database", "driver", driver)
	return &DB{Gorm: gdb}, nil
}

// Migrate creates or updates the schema and seeds the role table.
func (db *DB) Migrate(ctx context.Context) error {
	err := db.conn(ctx).AutoMigrate(
		&models.Role{},
		&models.Address{},
		&models.User{},
		&models.Author{},
		&models.Genre{},
		&models.Book{},
		&models.BookReservation{},
		&models.Comment{},
	)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	for _, name := range models.ValidRoles {
		role := models.Role{Name: name}
		if err := db.conn(ctx).Where(models.Role{Name: name}).FirstOrCreate(&role).Error; err != nil {
			return fmt.Errorf("seed role %s: %w", name, err)
		}
	}
	return nil
}

func (db *DB) Ping(ctx context.Context) error {
	sqlDB, err := db.Gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (db *DB) Close() error {
	sqlDB, err := db.Gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Transaction runs fn against a transaction-bound DB. Inside fn use only tx.
func (db *DB) Transaction(ctx context.Context, fn func(tx *DB) error) error {
	return db.conn(ctx).Transaction(func(t *gorm.DB) error {
		return fn(&DB{Gorm: t})
	})
}

func (db *DB) conn(ctx context.Context) *gorm.DB {
	return db.Gorm.WithContext(ctx)
}

// IsUniqueViolation reports whether err came from a unique constraint.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func first[T any](q *gorm.DB) (*T, error) {
	var v T
	err := q.First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func paginate(p models.PaginatorInput) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		offset := p.Normalize()
		return q.Offset(offset).Limit(p.PageSize)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a case-insensitive LIKE pattern matching s anywhere.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}

const likeClause = "LOWER(%s) LIKE ? ESCAPE '\\'"

func likeOn(column string) string {
	return fmt.Sprintf(likeClause, column)
}
