package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Attribute 属性目录表
// (category, name) 在未删除的行中唯一，唯一索引在 repository.createIndexes 中创建
type Attribute struct {
	ID          uint64         `gorm:"primaryKey;autoIncrement:false;column:id" json:"id"` // 服务层用 idgen 生成
	Name        string         `gorm:"type:text;not null;column:name" json:"name"`
	DisplayName string         `gorm:"type:text;not null;column:display_name" json:"displayName"`
	Category    string         `gorm:"type:text;not null;index:idx_attributes_category;column:category" json:"category"`
	Type        string         `gorm:"type:text;not null;column:type" json:"type"`
	Value       datatypes.JSON `gorm:"column:value" json:"value,omitempty"` // 类型相关的默认值/选项
	ParentID    *uint64        `gorm:"index:idx_attributes_parent_id;column:parent_id" json:"parentID,omitempty"`
	Level       int            `gorm:"not null;default:0;column:level" json:"level"` // 由父链推导，parent_id 变化时重算
	Path        string         `gorm:"type:text;not null;default:'';column:path" json:"path"`
	IsSystem    bool           `gorm:"not null;default:false;column:is_system" json:"isSystem"`
	SortOrder   int            `gorm:"not null;default:0;column:sort_order" json:"sortOrder"`
	Icon        string         `gorm:"type:text;column:icon" json:"icon,omitempty"`
	Color       string         `gorm:"type:text;column:color" json:"color,omitempty"`
	Enabled     bool           `gorm:"not null;default:true;column:enabled" json:"enabled"`
	Metadata    datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
	CreatedAt   time.Time      `gorm:"type:datetime;not null;column:created_at" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"type:datetime;not null;column:updated_at" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"type:datetime;index:idx_attributes_deleted_at;column:deleted_at" json:"deleted_at,omitempty"` // 软删除
}

// TableName 指定表名
func (Attribute) TableName() string {
	return "attributes"
}
