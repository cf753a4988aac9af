package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EntityAttribute 实体属性关联表（多态设计，支持多实体类型）
// 两个不带数据库外键的约定：
//   - (entity_type, entity_id, attribute_id) 在未删除的行中唯一
//   - 每个 (entity_type, entity_id) 最多一行 is_primary = true
//
// 对应的部分唯一索引在 repository.createIndexes 中创建
type EntityAttribute struct {
	ID          uint64         `gorm:"primaryKey;autoIncrement:false;column:id" json:"id"`
	EntityType  string         `gorm:"type:text;not null;index:idx_entity_attributes_entity,priority:1;column:entity_type" json:"entityType"` // clothing_item, outfit, user_profile
	EntityID    uint64         `gorm:"not null;index:idx_entity_attributes_entity,priority:2;column:entity_id" json:"entityID"`               // 所属实体空间内的 ID
	AttributeID uint64         `gorm:"not null;index:idx_entity_attributes_attribute_id;column:attribute_id" json:"attributeID"`
	Value       datatypes.JSON `gorm:"column:value" json:"value,omitempty"` // 覆盖值，为空时使用属性默认值
	Weight      int            `gorm:"not null;default:0;column:weight" json:"weight"`
	IsPrimary   bool           `gorm:"not null;default:false;column:is_primary" json:"isPrimary"`
	Notes       string         `gorm:"type:text;column:notes" json:"notes,omitempty"`
	UserID      uint64         `gorm:"index:idx_entity_attributes_user_id;column:user_id" json:"userID,omitempty"` // 冗余，用于按用户快速过滤
	Metadata    datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
	CreatedAt   time.Time      `gorm:"type:datetime;not null;column:created_at" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"type:datetime;not null;column:updated_at" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"type:datetime;index:idx_entity_attributes_deleted_at;column:deleted_at" json:"deleted_at,omitempty"` // 软删除
}

// TableName 指定表名
func (EntityAttribute) TableName() string {
	return "entity_attributes"
}
