package database

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/breathfree/quit_go_server/config"
	"github.com/breathfree/quit_go_server/internal/model"
)

// NewMySQL 连接 MySQL 并设置连接池
func NewMySQL(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// Models 所有需要迁移的模型
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Membership{},
		&model.Subscription{},
		&model.PaymentOrder{},
		&model.SmokingStatus{},
		&model.QuitPlan{},
		&model.QuitStage{},
		&model.ProgressLog{},
		&model.CoachChat{},
		&model.ChatMessage{},
		&model.Feedback{},
		&model.Rating{},
	}
}

// Migrate 自动迁移表结构
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
