// Package service 提供业务逻辑层的服务实现
package service

import (
	"encoding/json"
	"time"

	"github.com/jimyag/wardrobe/internal/wardrobe/entity"
	"github.com/jimyag/wardrobe/internal/wardrobe/repository/model"
	"github.com/jinzhu/copier"
)

// attributeModelToEntity 将 model.Attribute 转换为 entity.Attribute
func attributeModelToEntity(m *model.Attribute) (*entity.Attribute, error) {
	e := &entity.Attribute{}
	if err := copier.Copy(e, m); err != nil {
		return nil, err
	}

	// 处理 JSON 和时间字段
	e.Value = json.RawMessage(m.Value)
	e.Metadata = json.RawMessage(m.Metadata)
	e.CreatedAt = m.CreatedAt.Format(time.RFC3339)
	e.UpdatedAt = m.UpdatedAt.Format(time.RFC3339)

	return e, nil
}

// attributeModelsToEntities 批量转换属性
func attributeModelsToEntities(ms []*model.Attribute) ([]entity.Attribute, error) {
	es := make([]entity.Attribute, 0, len(ms))
	for _, m := range ms {
		e, err := attributeModelToEntity(m)
		if err != nil {
			return nil, err
		}
		es = append(es, *e)
	}
	return es, nil
}

// attributeModelToRef 将属性转换为关联里的展示信息
// attr 为 nil 表示属性定义已被删除，渲染为 unknown 标签
func attributeModelToRef(attributeID uint64, attr *model.Attribute) *entity.AttributeRef {
	if attr == nil {
		return &entity.AttributeRef{
			ID:          attributeID,
			DisplayName: "unknown",
			Missing:     true,
		}
	}
	return &entity.AttributeRef{
		ID:          attr.ID,
		Name:        attr.Name,
		DisplayName: attr.DisplayName,
		Category:    attr.Category,
		Type:        attr.Type,
		Icon:        attr.Icon,
		Color:       attr.Color,
	}
}

// linkModelToEntity 将 model.EntityAttribute 转换为 entity.EntityAttribute
// attr 是关联的属性定义，可以为 nil（悬挂关联）
func linkModelToEntity(m *model.EntityAttribute, attr *model.Attribute) (*entity.EntityAttribute, error) {
	e := &entity.EntityAttribute{}
	if err := copier.Copy(e, m); err != nil {
		return nil, err
	}

	e.EntityType = entity.EntityType(m.EntityType)
	e.Value = json.RawMessage(m.Value)
	e.Metadata = json.RawMessage(m.Metadata)
	e.Attribute = attributeModelToRef(m.AttributeID, attr)
	e.CreatedAt = m.CreatedAt.Format(time.RFC3339)
	e.UpdatedAt = m.UpdatedAt.Format(time.RFC3339)

	return e, nil
}
