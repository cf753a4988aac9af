package entity

import (
	"encoding/json"
	"fmt"
)

// AttributeRef 关联属性的展示信息
// 属性被软删除后关联仍然存在，此时 Missing 为 true，DisplayName 为 unknown
type AttributeRef struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"display_name"`
	Category    string `json:"category,omitempty"`
	Type        string `json:"type,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Color       string `json:"color,omitempty"`
	Missing     bool   `json:"missing,omitempty"` // 属性定义已被删除
}

// EntityAttribute 实体与属性的关联（多态标签）
type EntityAttribute struct {
	ID          uint64          `json:"id"`
	EntityType  EntityType      `json:"entity_type"`
	EntityID    uint64          `json:"entity_id"`
	AttributeID uint64          `json:"attribute_id"`
	Value       json.RawMessage `json:"value,omitempty"` // 覆盖值，为空时使用属性默认值
	Weight      int             `json:"weight"`          // 0-100，排序/展示权重
	IsPrimary   bool            `json:"is_primary"`      // 每个实体最多一个主标签
	Notes       string          `json:"notes,omitempty"`
	UserID      uint64          `json:"user_id,omitempty"` // 冗余的用户 ID，用于按用户过滤
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	Attribute   *AttributeRef   `json:"attribute,omitempty"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
}

// AttributeSpec 单条属性关联的输入
type AttributeSpec struct {
	AttributeID uint64          `json:"attribute_id" binding:"required"`
	Value       json.RawMessage `json:"value,omitempty"`
	Weight      *int            `json:"weight,omitempty"` // nil 时默认 0
	IsPrimary   bool            `json:"is_primary"`
	Notes       string          `json:"notes,omitempty"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
}

// AddEntityAttributesRequest 批量为实体添加属性请求
// 对唯一元组 (entity_type, entity_id, attribute_id) 做 upsert，重复调用幂等
type AddEntityAttributesRequest struct {
	EntityType string          `json:"entity_type" binding:"required"`
	EntityID   uint64          `json:"entity_id" binding:"required"`
	UserID     uint64          `json:"user_id,omitempty"`
	Attributes []AttributeSpec `json:"attributes" binding:"required"`
}

// IsValid 校验请求参数
func (r *AddEntityAttributesRequest) IsValid() error {
	if len(r.Attributes) == 0 {
		return fmt.Errorf("attributes must not be empty")
	}
	return nil
}

// AddEntityAttributesResponse 批量添加属性响应
type AddEntityAttributesResponse struct {
	Links []EntityAttribute `json:"links"`
}

// RemoveEntityAttributesRequest 批量移除实体属性请求
// AttributeIDs 为空时移除实体的全部属性（实体被删除时由所属服务调用）
type RemoveEntityAttributesRequest struct {
	EntityType   string   `json:"entity_type" binding:"required"`
	EntityID     uint64   `json:"entity_id" binding:"required"`
	AttributeIDs []uint64 `json:"attribute_ids,omitempty"`
}

// RemoveEntityAttributesResponse 批量移除属性响应
type RemoveEntityAttributesResponse struct {
	RemovedCount int64 `json:"removed_count"`
}

// SetPrimaryAttributeRequest 设置主属性请求
type SetPrimaryAttributeRequest struct {
	EntityType  string `json:"entity_type" binding:"required"`
	EntityID    uint64 `json:"entity_id" binding:"required"`
	AttributeID uint64 `json:"attribute_id" binding:"required"`
}

// SetPrimaryAttributeResponse 设置主属性响应
type SetPrimaryAttributeResponse struct {
	Return bool `json:"return"`
}

// DescribeEntityAttributesRequest 查询实体属性请求
type DescribeEntityAttributesRequest struct {
	EntityType string `json:"entity_type" binding:"required"`
	EntityID   uint64 `json:"entity_id" binding:"required"`
	// 只返回该分类下的属性
	Category string `json:"category,omitempty"`
	// 只返回主属性
	PrimaryOnly bool `json:"primary_only"`
}

// DescribeEntityAttributesResponse 实体属性列表响应
type DescribeEntityAttributesResponse struct {
	Links []EntityAttribute `json:"links"`
}

// UpdateAttributeWeightsRequest 批量更新权重请求
// 事务内全部成功或全部失败
type UpdateAttributeWeightsRequest struct {
	EntityType string         `json:"entity_type" binding:"required"`
	EntityID   uint64         `json:"entity_id" binding:"required"`
	Weights    map[uint64]int `json:"weights" binding:"required"`
}

// IsValid 校验请求参数
func (r *UpdateAttributeWeightsRequest) IsValid() error {
	if len(r.Weights) == 0 {
		return fmt.Errorf("weights must not be empty")
	}
	return nil
}

// UpdateAttributeWeightsResponse 批量更新权重响应
type UpdateAttributeWeightsResponse struct {
	Return bool `json:"return"`
}

// HasAttributeRequest 判断实体是否携带某个属性请求
type HasAttributeRequest struct {
	EntityType  string `json:"entity_type" binding:"required"`
	EntityID    uint64 `json:"entity_id" binding:"required"`
	AttributeID uint64 `json:"attribute_id" binding:"required"`
}

// HasAttributeResponse 判断结果
type HasAttributeResponse struct {
	HasAttribute bool `json:"has_attribute"`
}

// DescribeAttributeLinksRequest 查询某个属性的全部关联请求
type DescribeAttributeLinksRequest struct {
	AttributeID uint64 `json:"attribute_id" binding:"required"`
}

// DescribeUserAttributesRequest 按用户查询属性关联请求
type DescribeUserAttributesRequest struct {
	EntityType string `json:"entity_type" binding:"required"`
	UserID     uint64 `json:"user_id" binding:"required"`
}
