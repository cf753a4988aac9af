// Package entity 定义业务实体
package entity

import (
	"encoding/json"
	"fmt"
)

// AttributeType 属性值的类型
type AttributeType string

const (
	AttributeTypeString      AttributeType = "string"
	AttributeTypeNumber      AttributeType = "number"
	AttributeTypeSelect      AttributeType = "select"
	AttributeTypeMultiSelect AttributeType = "multi_select"
	AttributeTypeBoolean     AttributeType = "boolean"
	AttributeTypeJSON        AttributeType = "json"
)

// attributeTypes 所有合法的属性类型
var attributeTypes = map[AttributeType]bool{
	AttributeTypeString:      true,
	AttributeTypeNumber:      true,
	AttributeTypeSelect:      true,
	AttributeTypeMultiSelect: true,
	AttributeTypeBoolean:     true,
	AttributeTypeJSON:        true,
}

// Valid 判断属性类型是否合法
func (t AttributeType) Valid() bool {
	return attributeTypes[t]
}

// Attribute 属性目录条目
// category + name 在未删除的条目中唯一
type Attribute struct {
	ID          uint64          `json:"id"`
	Name        string          `json:"name"`         // 内部名称，如 red
	DisplayName string          `json:"display_name"` // 展示名称，如 红色
	Category    string          `json:"category"`     // 分类标签：color、material、style、season、occasion、clothing_type、size 等
	Type        string          `json:"type"`         // 值类型，见 AttributeType
	Value       json.RawMessage `json:"value,omitempty"`
	ParentID    *uint64         `json:"parent_id,omitempty"` // 父属性 ID，nil 表示根节点
	Level       int             `json:"level"`               // 0 = 根节点，由父链推导
	Path        string          `json:"path"`                // 物化的祖先 ID 链，如 /1/5/9/，只作为读取优化
	IsSystem    bool            `json:"is_system"`           // 系统内置属性，不允许删除
	SortOrder   int             `json:"sort_order"`
	Icon        string          `json:"icon,omitempty"`
	Color       string          `json:"color,omitempty"` // 十六进制颜色，如 #ff0000
	Enabled     bool            `json:"enabled"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
}

// AttributeTreeNode 属性树节点
type AttributeTreeNode struct {
	Attribute
	Children []*AttributeTreeNode `json:"children,omitempty"`
}

// CreateAttributeRequest 创建属性请求
type CreateAttributeRequest struct {
	Name        string          `json:"name" binding:"required"`
	DisplayName string          `json:"display_name"` // 为空时使用 Name
	Category    string          `json:"category" binding:"required"`
	Type        string          `json:"type"` // 为空时默认 string
	Value       json.RawMessage `json:"value,omitempty"`
	ParentID    *uint64         `json:"parent_id,omitempty"`
	IsSystem    bool            `json:"is_system"`
	SortOrder   int             `json:"sort_order"`
	Icon        string          `json:"icon,omitempty"`
	Color       string          `json:"color,omitempty"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
}

// IsValid 校验请求参数
func (r *CreateAttributeRequest) IsValid() error {
	if r.Type != "" && !AttributeType(r.Type).Valid() {
		return fmt.Errorf("unknown attribute type: %q", r.Type)
	}
	return nil
}

// UpdateAttributeRequest 更新属性请求
// 指针字段为 nil 表示不修改
type UpdateAttributeRequest struct {
	ID          uint64          `json:"id" binding:"required"`
	Name        *string         `json:"name,omitempty"`
	DisplayName *string         `json:"display_name,omitempty"`
	Category    *string         `json:"category,omitempty"`
	Type        *string         `json:"type,omitempty"`
	Value       json.RawMessage `json:"value,omitempty"`
	ParentID    *uint64         `json:"parent_id,omitempty"` // 重新挂载到新的父节点
	MoveToRoot  bool            `json:"move_to_root"`        // 挂载为根节点（ParentID 无法表达 置空）
	SortOrder   *int            `json:"sort_order,omitempty"`
	Icon        *string         `json:"icon,omitempty"`
	Color       *string         `json:"color,omitempty"`
	Enabled     *bool           `json:"enabled,omitempty"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
}

// IsValid 校验请求参数
func (r *UpdateAttributeRequest) IsValid() error {
	if r.Type != nil && !AttributeType(*r.Type).Valid() {
		return fmt.Errorf("unknown attribute type: %q", *r.Type)
	}
	if r.MoveToRoot && r.ParentID != nil {
		return fmt.Errorf("move_to_root and parent_id are mutually exclusive")
	}
	return nil
}

// DeleteAttributeRequest 删除属性请求（软删除）
type DeleteAttributeRequest struct {
	ID uint64 `json:"id" binding:"required"`
}

// DeleteAttributeResponse 删除属性响应
type DeleteAttributeResponse struct {
	Return bool `json:"return"`
}

// RestoreAttributeRequest 恢复已软删除的属性请求
type RestoreAttributeRequest struct {
	ID uint64 `json:"id" binding:"required"`
}

// GetAttributeRequest 获取单个属性请求
type GetAttributeRequest struct {
	ID uint64 `json:"id" binding:"required"`
}

// DescribeAttributesRequest 按分类或类型查询属性请求
// Category 和 Type 至少填一个
type DescribeAttributesRequest struct {
	Category string `json:"category,omitempty"`
	Type     string `json:"type,omitempty"`
}

// IsValid 校验请求参数
func (r *DescribeAttributesRequest) IsValid() error {
	if r.Category == "" && r.Type == "" {
		return fmt.Errorf("either category or type is required")
	}
	if r.Type != "" && !AttributeType(r.Type).Valid() {
		return fmt.Errorf("unknown attribute type: %q", r.Type)
	}
	return nil
}

// DescribeAttributesResponse 属性列表响应
type DescribeAttributesResponse struct {
	Attributes []Attribute `json:"attributes"`
}

// GetAttributeTreeRequest 获取属性树请求
// Category 为空时返回全部分类的森林
type GetAttributeTreeRequest struct {
	Category string `json:"category,omitempty"`
}

// GetAttributeTreeResponse 属性树响应
type GetAttributeTreeResponse struct {
	Roots []*AttributeTreeNode `json:"roots"`
}
