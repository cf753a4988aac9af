package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/jimyag/wardrobe/internal/wardrobe/entity"
	"github.com/jimyag/wardrobe/internal/wardrobe/repository"
	"github.com/jimyag/wardrobe/internal/wardrobe/repository/model"
	"github.com/jimyag/wardrobe/pkg/apierror"
	"github.com/jimyag/wardrobe/pkg/idgen"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// EntityAttributeService 实体属性关联服务
// 负责多态标签的增删查和主标签、权重的维护
type EntityAttributeService struct {
	repo  *repository.Repository
	links repository.EntityAttributeRepository
	attrs repository.AttributeRepository
	idGen *idgen.Generator
}

// NewEntityAttributeService 创建实体属性关联服务
func NewEntityAttributeService(repo *repository.Repository) *EntityAttributeService {
	return &EntityAttributeService{
		repo:  repo,
		links: repository.NewEntityAttributeRepository(repo.DB()),
		attrs: repository.NewAttributeRepository(repo.DB()),
		idGen: idgen.New(),
	}
}

// validateEntityType 校验实体类型是否在封闭集合内
func validateEntityType(s string) error {
	if _, err := entity.ParseEntityType(s); err != nil {
		return apierror.Newf(apierror.ErrInvalidParameter, "%s", err.Error())
	}
	return nil
}

// validateWeight 权重取值范围 0-100
func validateWeight(weight int) error {
	if weight < 0 || weight > 100 {
		return apierror.Newf(apierror.ErrInvalidParameter,
			"weight must be between 0 and 100, got %d", weight)
	}
	return nil
}

// AddAttributesToEntity 批量为实体添加属性关联
// 整批在一个事务里执行：属性校验失败或写入失败时整批回滚。
// 对已存在的元组做 upsert，重复调用幂等。
// 多条都声明 is_primary 时只保留最后一条，保证单主标签约束
func (s *EntityAttributeService) AddAttributesToEntity(ctx context.Context, req *entity.AddEntityAttributesRequest) ([]entity.EntityAttribute, error) {
	logger := zerolog.Ctx(ctx)

	if err := validateEntityType(req.EntityType); err != nil {
		return nil, err
	}
	for _, spec := range req.Attributes {
		if spec.Weight != nil {
			if err := validateWeight(*spec.Weight); err != nil {
				return nil, err
			}
		}
	}

	var saved []*model.EntityAttribute
	err := s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		links := repository.NewEntityAttributeRepository(tx)
		attrs := repository.NewAttributeRepository(tx)

		var primaryAttributeID uint64
		hasPrimary := false
		for _, spec := range req.Attributes {
			// 属性必须存在且未删除
			if _, err := attrs.GetByID(ctx, spec.AttributeID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apierror.Newf(apierror.ErrAttributeNotFound,
						"attribute %d does not exist", spec.AttributeID)
				}
				return apierror.WrapError(apierror.ErrInternalError, "Failed to load attribute", err)
			}

			id, err := s.idGen.GenerateLinkID()
			if err != nil {
				return apierror.WrapError(apierror.ErrInternalError, "Failed to generate link ID", err)
			}

			weight := 0
			if spec.Weight != nil {
				weight = *spec.Weight
			}
			now := time.Now()
			link := &model.EntityAttribute{
				ID:          id,
				EntityType:  req.EntityType,
				EntityID:    req.EntityID,
				AttributeID: spec.AttributeID,
				Value:       []byte(spec.Value),
				Weight:      weight,
				// 先全部按非主写入，声明了 is_primary 的在最后统一切换，
				// 避免批次中途出现两个主标签触发唯一索引
				IsPrimary: false,
				Notes:     spec.Notes,
				UserID:    req.UserID,
				Metadata:  []byte(spec.Metadata),
				CreatedAt: now,
				UpdatedAt: now,
			}
			result, err := links.Upsert(ctx, link)
			if err != nil {
				return apierror.WrapError(apierror.ErrInternalError, "Failed to upsert entity attribute", err)
			}
			saved = append(saved, result)

			if spec.IsPrimary {
				hasPrimary = true
				primaryAttributeID = spec.AttributeID
			}
		}

		if hasPrimary {
			if err := links.ClearPrimary(ctx, req.EntityType, req.EntityID); err != nil {
				return apierror.WrapError(apierror.ErrInternalError, "Failed to clear primary attribute", err)
			}
			if _, err := links.MarkPrimary(ctx, req.EntityType, req.EntityID, primaryAttributeID); err != nil {
				return apierror.WrapError(apierror.ErrInternalError, "Failed to mark primary attribute", err)
			}
			for _, link := range saved {
				link.IsPrimary = link.AttributeID == primaryAttributeID
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("entity_type", req.EntityType).
		Uint64("entity_id", req.EntityID).
		Int("count", len(saved)).
		Msg("Entity attributes added")

	return s.attachRefs(ctx, saved)
}

// RemoveAttributesFromEntity 批量移除实体属性关联
// AttributeIDs 为空时移除实体的全部关联。
// 未关联的属性 ID 直接跳过，返回实际删除的行数
func (s *EntityAttributeService) RemoveAttributesFromEntity(ctx context.Context, req *entity.RemoveEntityAttributesRequest) (int64, error) {
	logger := zerolog.Ctx(ctx)

	if err := validateEntityType(req.EntityType); err != nil {
		return 0, err
	}

	var removed int64
	var err error
	if len(req.AttributeIDs) == 0 {
		removed, err = s.links.DeleteByEntity(ctx, req.EntityType, req.EntityID)
	} else {
		removed, err = s.links.DeleteByTuples(ctx, req.EntityType, req.EntityID, req.AttributeIDs)
	}
	if err != nil {
		return 0, apierror.WrapError(apierror.ErrInternalError, "Failed to remove entity attributes", err)
	}

	logger.Info().
		Str("entity_type", req.EntityType).
		Uint64("entity_id", req.EntityID).
		Int64("removed", removed).
		Msg("Entity attributes removed")
	return removed, nil
}

// SetPrimaryAttribute 设置实体的主属性
// 清除旧主标签和设置新主标签在同一个事务里，保证任何时刻最多一个主标签
func (s *EntityAttributeService) SetPrimaryAttribute(ctx context.Context, req *entity.SetPrimaryAttributeRequest) error {
	if err := validateEntityType(req.EntityType); err != nil {
		return err
	}

	return s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		links := repository.NewEntityAttributeRepository(tx)

		if _, err := links.GetByTuple(ctx, req.EntityType, req.EntityID, req.AttributeID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.Newf(apierror.ErrLinkNotFound,
					"entity %s/%d has no link to attribute %d",
					req.EntityType, req.EntityID, req.AttributeID)
			}
			return apierror.WrapError(apierror.ErrInternalError, "Failed to load entity attribute", err)
		}

		if err := links.ClearPrimary(ctx, req.EntityType, req.EntityID); err != nil {
			return apierror.WrapError(apierror.ErrInternalError, "Failed to clear primary attribute", err)
		}
		rows, err := links.MarkPrimary(ctx, req.EntityType, req.EntityID, req.AttributeID)
		if err != nil {
			return apierror.WrapError(apierror.ErrInternalError, "Failed to mark primary attribute", err)
		}
		if rows == 0 {
			return apierror.Newf(apierror.ErrLinkNotFound,
				"entity %s/%d has no link to attribute %d",
				req.EntityType, req.EntityID, req.AttributeID)
		}
		return nil
	})
}

// UpdateAttributeWeights 批量更新实体属性权重
// 整批在一个事务里执行，任何一条对应的关联不存在时整批回滚
func (s *EntityAttributeService) UpdateAttributeWeights(ctx context.Context, req *entity.UpdateAttributeWeightsRequest) error {
	if err := validateEntityType(req.EntityType); err != nil {
		return err
	}
	for _, weight := range req.Weights {
		if err := validateWeight(weight); err != nil {
			return err
		}
	}

	// map 遍历顺序随机，排序后再写，保证失败时报错稳定
	attributeIDs := make([]uint64, 0, len(req.Weights))
	for id := range req.Weights {
		attributeIDs = append(attributeIDs, id)
	}
	sort.Slice(attributeIDs, func(i, j int) bool { return attributeIDs[i] < attributeIDs[j] })

	return s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		links := repository.NewEntityAttributeRepository(tx)
		for _, attributeID := range attributeIDs {
			rows, err := links.UpdateWeight(ctx, req.EntityType, req.EntityID, attributeID, req.Weights[attributeID])
			if err != nil {
				return apierror.WrapError(apierror.ErrInternalError, "Failed to update attribute weight", err)
			}
			if rows == 0 {
				return apierror.Newf(apierror.ErrLinkNotFound,
					"entity %s/%d has no link to attribute %d",
					req.EntityType, req.EntityID, attributeID)
			}
		}
		return nil
	})
}

// FindByEntity 查询实体的属性关联
// 排序规则：主标签最前，其余按 weight 降序、分类字典序、最后按属性 ID
func (s *EntityAttributeService) FindByEntity(ctx context.Context, req *entity.DescribeEntityAttributesRequest) ([]entity.EntityAttribute, error) {
	if err := validateEntityType(req.EntityType); err != nil {
		return nil, err
	}

	var links []*model.EntityAttribute
	var err error
	if req.PrimaryOnly {
		links, err = s.links.ListPrimaryByEntity(ctx, req.EntityType, req.EntityID)
	} else {
		links, err = s.links.ListByEntity(ctx, req.EntityType, req.EntityID)
	}
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to list entity attributes", err)
	}

	es, err := s.attachRefs(ctx, links)
	if err != nil {
		return nil, err
	}

	if req.Category != "" {
		filtered := make([]entity.EntityAttribute, 0, len(es))
		for _, e := range es {
			if e.Attribute != nil && e.Attribute.Category == req.Category {
				filtered = append(filtered, e)
			}
		}
		es = filtered
	}
	return es, nil
}

// FindPrimaryAttributes 查询实体的主属性关联
func (s *EntityAttributeService) FindPrimaryAttributes(ctx context.Context, entityType string, entityID uint64) ([]entity.EntityAttribute, error) {
	return s.FindByEntity(ctx, &entity.DescribeEntityAttributesRequest{
		EntityType:  entityType,
		EntityID:    entityID,
		PrimaryOnly: true,
	})
}

// HasAttribute 判断实体是否携带某个属性
func (s *EntityAttributeService) HasAttribute(ctx context.Context, req *entity.HasAttributeRequest) (bool, error) {
	if err := validateEntityType(req.EntityType); err != nil {
		return false, err
	}

	_, err := s.links.GetByTuple(ctx, req.EntityType, req.EntityID, req.AttributeID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, apierror.WrapError(apierror.ErrInternalError, "Failed to load entity attribute", err)
	}
	return true, nil
}

// FindByAttributeID 查询某个属性的全部关联，反向索引
func (s *EntityAttributeService) FindByAttributeID(ctx context.Context, attributeID uint64) ([]entity.EntityAttribute, error) {
	links, err := s.links.ListByAttributeID(ctx, attributeID)
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to list attribute links", err)
	}
	return s.attachRefs(ctx, links)
}

// FindByUser 按冗余的 user_id 查询某用户某类实体的全部关联
func (s *EntityAttributeService) FindByUser(ctx context.Context, req *entity.DescribeUserAttributesRequest) ([]entity.EntityAttribute, error) {
	if err := validateEntityType(req.EntityType); err != nil {
		return nil, err
	}

	links, err := s.links.ListByUser(ctx, req.EntityType, req.UserID)
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to list user attributes", err)
	}
	return s.attachRefs(ctx, links)
}

// attachRefs 为关联补齐属性展示信息并完成排序
// 属性定义已被软删除的关联渲染为 unknown，不因悬挂关联报错
func (s *EntityAttributeService) attachRefs(ctx context.Context, links []*model.EntityAttribute) ([]entity.EntityAttribute, error) {
	if len(links) == 0 {
		return []entity.EntityAttribute{}, nil
	}

	seen := make(map[uint64]bool, len(links))
	ids := make([]uint64, 0, len(links))
	for _, link := range links {
		if !seen[link.AttributeID] {
			seen[link.AttributeID] = true
			ids = append(ids, link.AttributeID)
		}
	}
	attrs, err := s.attrs.ListByIDs(ctx, ids)
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to load attributes", err)
	}
	byID := make(map[uint64]*model.Attribute, len(attrs))
	for _, attr := range attrs {
		byID[attr.ID] = attr
	}

	// 悬挂关联没有属性定义，分类按空串、sort_order 按 0 参与排序
	category := func(l *model.EntityAttribute) string {
		if attr := byID[l.AttributeID]; attr != nil {
			return attr.Category
		}
		return ""
	}
	sortOrder := func(l *model.EntityAttribute) int {
		if attr := byID[l.AttributeID]; attr != nil {
			return attr.SortOrder
		}
		return 0
	}
	sort.SliceStable(links, func(i, j int) bool {
		a, b := links[i], links[j]
		if a.IsPrimary != b.IsPrimary {
			return a.IsPrimary
		}
		if a.Weight != b.Weight {
			return a.Weight > b.Weight
		}
		if category(a) != category(b) {
			return category(a) < category(b)
		}
		return sortOrder(a) < sortOrder(b)
	})

	es := make([]entity.EntityAttribute, 0, len(links))
	for _, link := range links {
		e, err := linkModelToEntity(link, byID[link.AttributeID])
		if err != nil {
			return nil, err
		}
		es = append(es, *e)
	}
	return es, nil
}
