package service

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jimyag/wardrobe/internal/wardrobe/repository/model"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed default_attributes.yaml
var defaultAttributesYAML []byte

// defaultAttribute 内置属性的 YAML 定义，children 递归嵌套
type defaultAttribute struct {
	Name        string             `yaml:"name"`
	DisplayName string             `yaml:"display_name"`
	Type        string             `yaml:"type"`
	Color       string             `yaml:"color"`
	Icon        string             `yaml:"icon"`
	SortOrder   int                `yaml:"sort_order"`
	Children    []defaultAttribute `yaml:"children"`
}

type defaultCategory struct {
	Category   string             `yaml:"category"`
	Attributes []defaultAttribute `yaml:"attributes"`
}

type defaultCatalog struct {
	Categories []defaultCategory `yaml:"categories"`
}

// EnsureDefaultAttributes 确保系统内置属性存在（不存在则创建）
// 按 (category, name) 幂等，已存在的条目保持用户的修改不被覆盖
func (s *AttributeService) EnsureDefaultAttributes(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	var catalog defaultCatalog
	if err := yaml.Unmarshal(defaultAttributesYAML, &catalog); err != nil {
		return fmt.Errorf("parse default attributes: %w", err)
	}

	createdCount := 0
	for _, cat := range catalog.Categories {
		for _, def := range cat.Attributes {
			created, err := s.ensureDefaultAttribute(ctx, cat.Category, def, nil)
			if err != nil {
				return fmt.Errorf("ensure default attribute %s/%s: %w", cat.Category, def.Name, err)
			}
			createdCount += created
		}
	}

	logger.Info().
		Int("categories", len(catalog.Categories)).
		Int("created", createdCount).
		Msg("Default attributes ensured")

	if createdCount > 0 {
		s.invalidate(ctx)
	}
	return nil
}

// ensureDefaultAttribute 幂等写入单个内置属性及其子树，返回新建条数
func (s *AttributeService) ensureDefaultAttribute(ctx context.Context, category string, def defaultAttribute, parent *model.Attribute) (int, error) {
	existing, err := s.attrs.GetByCategoryAndName(ctx, category, def.Name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	created := 0
	attr := existing
	if errors.Is(err, gorm.ErrRecordNotFound) {
		id, err := s.idGen.GenerateAttributeID()
		if err != nil {
			return 0, err
		}
		displayName := def.DisplayName
		if displayName == "" {
			displayName = def.Name
		}
		attrType := def.Type
		if attrType == "" {
			attrType = "string"
		}
		level := 0
		var parentID *uint64
		if parent != nil {
			level = parent.Level + 1
			parentID = &parent.ID
		}
		now := time.Now()
		attr = &model.Attribute{
			ID:          id,
			Name:        def.Name,
			DisplayName: displayName,
			Category:    category,
			Type:        attrType,
			ParentID:    parentID,
			Level:       level,
			Path:        materializePath(parent, id),
			IsSystem:    true,
			SortOrder:   def.SortOrder,
			Icon:        def.Icon,
			Color:       def.Color,
			Enabled:     true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.attrs.Create(ctx, attr); err != nil {
			return 0, err
		}
		created = 1
	}

	for _, child := range def.Children {
		n, err := s.ensureDefaultAttribute(ctx, category, child, attr)
		if err != nil {
			return created, err
		}
		created += n
	}
	return created, nil
}
