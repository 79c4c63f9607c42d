package repository

import (
	"fmt"

	"github.com/trend-social/trend-backend/internal/config"
	"github.com/trend-social/trend-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Database struct {
	*gorm.DB
}

func NewDatabase(cfg *config.DatabaseConfig) (*Database, error) {
	dsn := cfg.DSN()

	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Info),
		TranslateError: true,
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)

	return &Database{db}, nil
}

func (db *Database) AutoMigrate() error {
	return db.DB.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Block{},
		&models.Post{},
		&models.Comment{},
		&models.LikePost{},
		&models.Reaction{},
		&models.HiddenPost{},
		&models.LikeCounter{},
		&models.CommentCounter{},
		&models.Video{},
		&models.VlogComment{},
		&models.VlogLike{},
		&models.VlogReaction{},
		&models.VlogLikeCounter{},
		&models.VlogCommentCounter{},
	)
}

func (db *Database) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
