// Package repository 提供数据持久化层实现
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jimyag/wardrobe/internal/wardrobe/repository/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite" // 纯 Go SQLite 驱动，不需要 CGO
)

// Repository 数据库仓库
type Repository struct {
	db *gorm.DB
}

// New 创建新的 Repository 实例
func New(dbPath string) (*Repository, error) {
	// 确保数据库目录存在
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// 连接数据库（使用纯 Go SQLite 驱动，不需要 CGO）
	// 直接使用 database/sql + modernc.org/sqlite 创建连接，然后传递给 GORM。
	// busy_timeout 让拿不到锁的语句等待而不是直接返回 SQLITE_BUSY
	dsn := "file:" + dbPath + "?_pragma=busy_timeout(10000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite 同一时刻只允许一个写事务，多连接下两个
	// 先读后写的事务会互相等锁直到超时。单连接让事务排队执行
	sqlDB.SetMaxOpenConns(1)

	// 使用 GORM 的 Dialector 包装已创建的 sql.DB 连接
	db, err := gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        dsn,
		Conn:       sqlDB,
	}, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("open gorm database: %w", err)
	}

	// 自动迁移
	if err := db.AutoMigrate(
		&model.Attribute{},
		&model.EntityAttribute{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	// 创建索引（GORM 的 AutoMigrate 可能不会创建所有索引，手动确保）
	if err := createIndexes(db); err != nil {
		return nil, fmt.Errorf("create indexes: %w", err)
	}

	return &Repository{db: db}, nil
}

// DB 返回 GORM 数据库实例（用于 Repository 实现）
func (r *Repository) DB() *gorm.DB {
	return r.db
}

// WithContext 返回带上下文的数据库实例
func (r *Repository) WithContext(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

// Transaction 在一个事务中执行 fn
// fn 返回错误时整个事务回滚
func (r *Repository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

// Close 关闭数据库连接
func (r *Repository) Close() error {
	if r.db == nil {
		return nil
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// createIndexes 创建额外的索引和唯一约束
func createIndexes(db *gorm.DB) error {
	// attributes 表的唯一约束（同一分类下属性名唯一）
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_attributes_category_name
		ON attributes(category, name)
		WHERE deleted_at IS NULL
	`).Error; err != nil {
		return fmt.Errorf("create unique index on attributes: %w", err)
	}

	// entity_attributes 表的唯一约束（一个实体不能重复携带同一属性）
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_entity_attributes_unique
		ON entity_attributes(entity_type, entity_id, attribute_id)
		WHERE deleted_at IS NULL
	`).Error; err != nil {
		return fmt.Errorf("create unique index on entity_attributes: %w", err)
	}

	// 每个实体最多一个主属性
	// 业务层用事务保证先清后设，这个索引是存储层的兜底
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_entity_attributes_primary
		ON entity_attributes(entity_type, entity_id)
		WHERE is_primary AND deleted_at IS NULL
	`).Error; err != nil {
		return fmt.Errorf("create primary index on entity_attributes: %w", err)
	}

	return nil
}
