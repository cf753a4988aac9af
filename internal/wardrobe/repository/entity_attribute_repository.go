package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jimyag/wardrobe/internal/wardrobe/repository/model"
	"gorm.io/gorm"
)

// EntityAttributeRepository 实体属性关联仓库接口
type EntityAttributeRepository interface {
	Upsert(ctx context.Context, link *model.EntityAttribute) (*model.EntityAttribute, error)
	GetByTuple(ctx context.Context, entityType string, entityID, attributeID uint64) (*model.EntityAttribute, error)
	ListByEntity(ctx context.Context, entityType string, entityID uint64) ([]*model.EntityAttribute, error)
	ListPrimaryByEntity(ctx context.Context, entityType string, entityID uint64) ([]*model.EntityAttribute, error)
	ListByAttributeID(ctx context.Context, attributeID uint64) ([]*model.EntityAttribute, error)
	ListByUser(ctx context.Context, entityType string, userID uint64) ([]*model.EntityAttribute, error)
	DeleteByTuples(ctx context.Context, entityType string, entityID uint64, attributeIDs []uint64) (int64, error)
	DeleteByEntity(ctx context.Context, entityType string, entityID uint64) (int64, error)
	ClearPrimary(ctx context.Context, entityType string, entityID uint64) error
	MarkPrimary(ctx context.Context, entityType string, entityID, attributeID uint64) (int64, error)
	UpdateWeight(ctx context.Context, entityType string, entityID, attributeID uint64, weight int) (int64, error)
}

type entityAttributeRepository struct {
	db *gorm.DB
}

// NewEntityAttributeRepository 创建实体属性关联仓库
func NewEntityAttributeRepository(db *gorm.DB) EntityAttributeRepository {
	return &entityAttributeRepository{db: db}
}

// Upsert 按唯一元组 (entity_type, entity_id, attribute_id) 做 upsert
// 已存在时更新 value/weight/is_primary/notes/user_id/metadata，保留原 ID 和创建时间
func (r *entityAttributeRepository) Upsert(ctx context.Context, link *model.EntityAttribute) (*model.EntityAttribute, error) {
	var existing model.EntityAttribute
	err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ? AND attribute_id = ?",
			link.EntityType, link.EntityID, link.AttributeID).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
			return nil, err
		}
		return link, nil
	}
	if err != nil {
		return nil, err
	}

	existing.Value = link.Value
	existing.Weight = link.Weight
	existing.IsPrimary = link.IsPrimary
	existing.Notes = link.Notes
	existing.UserID = link.UserID
	existing.Metadata = link.Metadata
	existing.UpdatedAt = time.Now()
	if err := r.db.WithContext(ctx).Save(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

// GetByTuple 根据唯一元组获取关联
func (r *entityAttributeRepository) GetByTuple(ctx context.Context, entityType string, entityID, attributeID uint64) (*model.EntityAttribute, error) {
	var link model.EntityAttribute
	if err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ? AND attribute_id = ?",
			entityType, entityID, attributeID).
		First(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

// ListByEntity 获取实体的所有属性关联
// 按 is_primary 降序、weight 降序排列，分类内排序由服务层联表后补齐
func (r *entityAttributeRepository) ListByEntity(ctx context.Context, entityType string, entityID uint64) ([]*model.EntityAttribute, error) {
	var links []*model.EntityAttribute
	if err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("is_primary DESC").
		Order("weight DESC").
		Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

// ListPrimaryByEntity 获取实体的主属性关联
func (r *entityAttributeRepository) ListPrimaryByEntity(ctx context.Context, entityType string, entityID uint64) ([]*model.EntityAttribute, error) {
	var links []*model.EntityAttribute
	if err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ? AND is_primary = ?", entityType, entityID, true).
		Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

// ListByAttributeID 获取某个属性的全部关联
func (r *entityAttributeRepository) ListByAttributeID(ctx context.Context, attributeID uint64) ([]*model.EntityAttribute, error) {
	var links []*model.EntityAttribute
	if err := r.db.WithContext(ctx).
		Where("attribute_id = ?", attributeID).
		Order("entity_type ASC").
		Order("entity_id ASC").
		Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

// ListByUser 按冗余的 user_id 获取某用户某类实体的全部关联
func (r *entityAttributeRepository) ListByUser(ctx context.Context, entityType string, userID uint64) ([]*model.EntityAttribute, error) {
	var links []*model.EntityAttribute
	if err := r.db.WithContext(ctx).
		Where("entity_type = ? AND user_id = ?", entityType, userID).
		Order("entity_id ASC").
		Order("weight DESC").
		Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

// DeleteByTuples 按元组批量软删除，返回删除行数
func (r *entityAttributeRepository) DeleteByTuples(ctx context.Context, entityType string, entityID uint64, attributeIDs []uint64) (int64, error) {
	if len(attributeIDs) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ? AND attribute_id IN ?",
			entityType, entityID, attributeIDs).
		Delete(&model.EntityAttribute{})
	return result.RowsAffected, result.Error
}

// DeleteByEntity 删除实体的所有属性关联
// 实体被永久删除时由所属服务调用，本子系统不做自动级联
func (r *entityAttributeRepository) DeleteByEntity(ctx context.Context, entityType string, entityID uint64) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Delete(&model.EntityAttribute{})
	return result.RowsAffected, result.Error
}

// ClearPrimary 清除实体的所有主属性标记
func (r *entityAttributeRepository) ClearPrimary(ctx context.Context, entityType string, entityID uint64) error {
	return r.db.WithContext(ctx).
		Model(&model.EntityAttribute{}).
		Where("entity_type = ? AND entity_id = ? AND is_primary = ?", entityType, entityID, true).
		Update("is_primary", false).Error
}

// MarkPrimary 将指定关联标记为主属性，返回影响行数
// 调用方需要先 ClearPrimary，并把两步放在同一个事务里
func (r *entityAttributeRepository) MarkPrimary(ctx context.Context, entityType string, entityID, attributeID uint64) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.EntityAttribute{}).
		Where("entity_type = ? AND entity_id = ? AND attribute_id = ?",
			entityType, entityID, attributeID).
		Update("is_primary", true)
	return result.RowsAffected, result.Error
}

// UpdateWeight 更新单条关联的权重，返回影响行数
func (r *entityAttributeRepository) UpdateWeight(ctx context.Context, entityType string, entityID, attributeID uint64, weight int) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.EntityAttribute{}).
		Where("entity_type = ? AND entity_id = ? AND attribute_id = ?",
			entityType, entityID, attributeID).
		Update("weight", weight)
	return result.RowsAffected, result.Error
}
