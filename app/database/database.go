package database

import (
	"context"
	"fmt"
	"os"

	"board/app/models"
	"board/app/repositories"
	"board/config"
	"board/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Store is an opened storage backend and the repositories built on it.
type Store interface {
	Posts() repositories.PostRepository
	Comments() repositories.CommentRepository
	Migrate(ctx context.Context) error
	Close() error
}

var (
	_ Store = (*GormStore)(nil)
	_ Store = (*BadgerStore)(nil)
)

// Open opens the backend selected by cfg.Driver.
func Open(cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := OpenPostgres(cfg.DSN)
		if err != nil {
			return nil, err
		}
		return NewGormStore(db), nil
	case config.DriverBadger, "":
		return OpenBadger(cfg.BadgerPath)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// OpenPostgres connects to PostgreSQL and verifies the connection.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := openGorm(postgres.Open(dsn))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	logger.Log.Info("Successfully connected to PostgreSQL")
	return db, nil
}

// openGorm opens dialector and pings it. The connection pool is closed again
// when the ping fails.
func openGorm(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:               logger.Gorm(),
		DisableAutomaticPing: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err = sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return db, nil
}

// GormStore serves the repositories from a relational database.
type GormStore struct {
	db       *gorm.DB
	posts    *repositories.GormPostRepository
	comments *repositories.GormCommentRepository
}

// NewGormStore builds the gorm repositories on db.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db:       db,
		posts:    repositories.NewGormPostRepository(db),
		comments: repositories.NewGormCommentRepository(db),
	}
}

// Posts returns the post repository of the store.
func (s *GormStore) Posts() repositories.PostRepository { return s.posts }

// Comments returns the comment repository of the store.
func (s *GormStore) Comments() repositories.CommentRepository { return s.comments }

// Migrate creates or updates the posts and comments tables.
func (s *GormStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&models.Post{}, &models.Comment{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// BadgerStore serves the repositories from an embedded badger database.
type BadgerStore struct {
	*repositories.BadgerStore
}

// OpenBadger opens the badger database at path, creating the directory when
// needed. An empty path keeps the data in memory.
func OpenBadger(path string) (*BadgerStore, error) {
	if path != "" {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	store, err := repositories.OpenBadger(path, logger.Badger())
	if err != nil {
		return nil, err
	}
	return &BadgerStore{store}, nil
}

// Migrate is a no-op; badger keys need no schema.
func (s *BadgerStore) Migrate(context.Context) error {
	return nil
}
