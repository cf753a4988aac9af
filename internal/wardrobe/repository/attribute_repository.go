package repository

import (
	"context"

	"github.com/jimyag/wardrobe/internal/wardrobe/repository/model"
	"gorm.io/gorm"
)

// AttributeRepository 属性目录仓库接口
type AttributeRepository interface {
	Create(ctx context.Context, attr *model.Attribute) error
	GetByID(ctx context.Context, id uint64) (*model.Attribute, error)
	GetByIDUnscoped(ctx context.Context, id uint64) (*model.Attribute, error)
	GetByCategoryAndName(ctx context.Context, category, name string) (*model.Attribute, error)
	List(ctx context.Context, category string) ([]*model.Attribute, error)
	ListByType(ctx context.Context, attrType string) ([]*model.Attribute, error)
	ListByIDs(ctx context.Context, ids []uint64) ([]*model.Attribute, error)
	ListChildren(ctx context.Context, parentID uint64) ([]*model.Attribute, error)
	Update(ctx context.Context, attr *model.Attribute) error
	UpdateHierarchy(ctx context.Context, id uint64, parentID *uint64, level int, path string) error
	Delete(ctx context.Context, id uint64) error
	Restore(ctx context.Context, id uint64) error
}

type attributeRepository struct {
	db *gorm.DB
}

// NewAttributeRepository 创建属性目录仓库
func NewAttributeRepository(db *gorm.DB) AttributeRepository {
	return &attributeRepository{db: db}
}

// Create 创建属性
func (r *attributeRepository) Create(ctx context.Context, attr *model.Attribute) error {
	return r.db.WithContext(ctx).Create(attr).Error
}

// GetByID 根据 ID 获取属性
func (r *attributeRepository) GetByID(ctx context.Context, id uint64) (*model.Attribute, error) {
	var attr model.Attribute
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&attr).Error; err != nil {
		return nil, err
	}
	return &attr, nil
}

// GetByIDUnscoped 根据 ID 获取属性，包含已软删除的行
func (r *attributeRepository) GetByIDUnscoped(ctx context.Context, id uint64) (*model.Attribute, error) {
	var attr model.Attribute
	if err := r.db.WithContext(ctx).Unscoped().Where("id = ?", id).First(&attr).Error; err != nil {
		return nil, err
	}
	return &attr, nil
}

// GetByCategoryAndName 根据分类和名称获取属性
func (r *attributeRepository) GetByCategoryAndName(ctx context.Context, category, name string) (*model.Attribute, error) {
	var attr model.Attribute
	if err := r.db.WithContext(ctx).
		Where("category = ? AND name = ?", category, name).
		First(&attr).Error; err != nil {
		return nil, err
	}
	return &attr, nil
}

// List 获取属性列表，category 为空时返回全部
// 按 sort_order 升序、display_name 升序排列
func (r *attributeRepository) List(ctx context.Context, category string) ([]*model.Attribute, error) {
	var attrs []*model.Attribute
	query := r.db.WithContext(ctx)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if err := query.
		Order("sort_order ASC").
		Order("display_name ASC").
		Find(&attrs).Error; err != nil {
		return nil, err
	}
	return attrs, nil
}

// ListByType 根据属性类型获取属性列表
func (r *attributeRepository) ListByType(ctx context.Context, attrType string) ([]*model.Attribute, error) {
	var attrs []*model.Attribute
	if err := r.db.WithContext(ctx).
		Where("type = ?", attrType).
		Order("sort_order ASC").
		Order("display_name ASC").
		Find(&attrs).Error; err != nil {
		return nil, err
	}
	return attrs, nil
}

// ListByIDs 根据 ID 列表获取属性
// 已软删除的属性不会返回，调用方需要容忍结果数量少于请求数量
func (r *attributeRepository) ListByIDs(ctx context.Context, ids []uint64) ([]*model.Attribute, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var attrs []*model.Attribute
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&attrs).Error; err != nil {
		return nil, err
	}
	return attrs, nil
}

// ListChildren 获取直接子属性
func (r *attributeRepository) ListChildren(ctx context.Context, parentID uint64) ([]*model.Attribute, error) {
	var attrs []*model.Attribute
	if err := r.db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("sort_order ASC").
		Order("display_name ASC").
		Find(&attrs).Error; err != nil {
		return nil, err
	}
	return attrs, nil
}

// Update 更新属性
func (r *attributeRepository) Update(ctx context.Context, attr *model.Attribute) error {
	return r.db.WithContext(ctx).Save(attr).Error
}

// UpdateHierarchy 只更新层级相关字段（parent_id、level、path）
// 重新挂载父节点时需要批量重算子树，避免整行 Save
func (r *attributeRepository) UpdateHierarchy(ctx context.Context, id uint64, parentID *uint64, level int, path string) error {
	return r.db.WithContext(ctx).
		Model(&model.Attribute{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"parent_id": parentID,
			"level":     level,
			"path":      path,
		}).Error
}

// Delete 软删除属性
func (r *attributeRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Attribute{}).Error
}

// Restore 恢复已软删除的属性
func (r *attributeRepository) Restore(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).
		Unscoped().
		Model(&model.Attribute{}).
		Where("id = ?", id).
		Update("deleted_at", nil).Error
}
