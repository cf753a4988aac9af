package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jimyag/wardrobe/internal/wardrobe/entity"
	"github.com/jimyag/wardrobe/internal/wardrobe/repository"
	"github.com/jimyag/wardrobe/internal/wardrobe/repository/model"
	"github.com/jimyag/wardrobe/pkg/apierror"
	"github.com/jimyag/wardrobe/pkg/cache"
	"github.com/jimyag/wardrobe/pkg/idgen"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// AttributeService 属性目录服务
// 目录读多写少，读取走缓存，任何写操作都会让相关缓存失效
type AttributeService struct {
	repo  *repository.Repository
	attrs repository.AttributeRepository
	cache *cache.Cache
	idGen *idgen.Generator
}

// NewAttributeService 创建属性目录服务
func NewAttributeService(repo *repository.Repository, attrCache *cache.Cache) *AttributeService {
	return &AttributeService{
		repo:  repo,
		attrs: repository.NewAttributeRepository(repo.DB()),
		cache: attrCache,
		idGen: idgen.New(),
	}
}

// 缓存键
func keyDetail(id uint64) string {
	return fmt.Sprintf("detail:%d", id)
}

func keyCategory(cat string) string {
	return "category:" + cat
}

func keyType(t string) string {
	return "type:" + t
}

func keyTree(cat string) string {
	if cat == "" {
		return "tree:all"
	}
	return "tree:" + cat
}

// Create 创建属性
// (category, name) 重复时返回 DuplicateName，父属性不存在或未启用时返回 InvalidParent。
// 重名检查和写入在同一个事务里，并发创建同名属性时落败方撞上唯一索引，
// 同样映射为 DuplicateName
func (s *AttributeService) Create(ctx context.Context, req *entity.CreateAttributeRequest) (*entity.Attribute, error) {
	logger := zerolog.Ctx(ctx)

	var created *model.Attribute
	err := s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		attrs := repository.NewAttributeRepository(tx)

		// 重名检查
		if _, err := attrs.GetByCategoryAndName(ctx, req.Category, req.Name); err == nil {
			return apierror.Newf(apierror.ErrDuplicateName,
				"attribute %q already exists in category %q", req.Name, req.Category)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.WrapError(apierror.ErrInternalError, "Failed to check attribute name", err)
		}

		// 解析父属性，计算层级和物化路径
		level := 0
		var parent *model.Attribute
		if req.ParentID != nil {
			var err error
			parent, err = attrs.GetByID(ctx, *req.ParentID)
			if err != nil || !parent.Enabled {
				return apierror.Newf(apierror.ErrInvalidParent,
					"parent attribute %d does not exist or is disabled", *req.ParentID)
			}
			level = parent.Level + 1
		}

		id, err := s.idGen.GenerateAttributeID()
		if err != nil {
			return apierror.WrapError(apierror.ErrInternalError, "Failed to generate attribute ID", err)
		}

		displayName := req.DisplayName
		if displayName == "" {
			displayName = req.Name
		}
		attrType := req.Type
		if attrType == "" {
			attrType = string(entity.AttributeTypeString)
		}

		now := time.Now()
		attr := &model.Attribute{
			ID:          id,
			Name:        req.Name,
			DisplayName: displayName,
			Category:    req.Category,
			Type:        attrType,
			Value:       []byte(req.Value),
			ParentID:    req.ParentID,
			Level:       level,
			Path:        materializePath(parent, id),
			IsSystem:    req.IsSystem,
			SortOrder:   req.SortOrder,
			Icon:        req.Icon,
			Color:       req.Color,
			Enabled:     true,
			Metadata:    []byte(req.Metadata),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := attrs.Create(ctx, attr); err != nil {
			if isUniqueViolation(err) {
				return apierror.Newf(apierror.ErrDuplicateName,
					"attribute %q already exists in category %q", req.Name, req.Category)
			}
			return apierror.WrapError(apierror.ErrInternalError, "Failed to create attribute", err)
		}

		created = attr
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info().
		Uint64("attribute_id", created.ID).
		Str("category", req.Category).
		Str("name", req.Name).
		Msg("Attribute created")

	s.invalidate(ctx)
	return attributeModelToEntity(created)
}

// Update 更新属性
// 改名走重名检查，重新挂载父节点走环检测，检查和写入在同一个事务里，
// 避免并发重挂载时 检查-使用 之间的竞态
func (s *AttributeService) Update(ctx context.Context, req *entity.UpdateAttributeRequest) (*entity.Attribute, error) {
	logger := zerolog.Ctx(ctx)

	var updated *model.Attribute
	err := s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		attrs := repository.NewAttributeRepository(tx)

		attr, err := attrs.GetByID(ctx, req.ID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.Newf(apierror.ErrAttributeNotFound, "attribute %d does not exist", req.ID)
		}
		if err != nil {
			return apierror.WrapError(apierror.ErrInternalError, "Failed to load attribute", err)
		}

		// 重名检查：name 或 category 变化时才需要
		newName := attr.Name
		if req.Name != nil {
			newName = *req.Name
		}
		newCategory := attr.Category
		if req.Category != nil {
			newCategory = *req.Category
		}
		if newName != attr.Name || newCategory != attr.Category {
			other, err := attrs.GetByCategoryAndName(ctx, newCategory, newName)
			if err == nil && other.ID != attr.ID {
				return apierror.Newf(apierror.ErrDuplicateName,
					"attribute %q already exists in category %q", newName, newCategory)
			}
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.WrapError(apierror.ErrInternalError, "Failed to check attribute name", err)
			}
		}

		// 重新挂载父节点
		var newParent *model.Attribute
		reparent := req.MoveToRoot
		if req.ParentID != nil {
			if *req.ParentID == attr.ID {
				return apierror.Newf(apierror.ErrCycleDetected,
					"attribute %d cannot be its own parent", attr.ID)
			}
			newParent, err = attrs.GetByID(ctx, *req.ParentID)
			if err != nil || !newParent.Enabled {
				return apierror.Newf(apierror.ErrInvalidParent,
					"parent attribute %d does not exist or is disabled", *req.ParentID)
			}
			if attr.ParentID == nil || *attr.ParentID != *req.ParentID {
				reparent = true
				// 环检测：新的父节点不能是当前节点的后代
				category := NewCategoryService(attrs)
				isDescendant, err := category.HasDescendant(ctx, attr.ID, *req.ParentID)
				if err != nil {
					// 检测失败按失败处理，拒绝本次重挂载
					logger.Error().Err(err).
						Uint64("attribute_id", attr.ID).
						Uint64("new_parent_id", *req.ParentID).
						Msg("Cycle check failed, rejecting reparent")
					return apierror.WrapError(apierror.ErrInternalError, "Failed to run cycle check", err)
				}
				if isDescendant {
					return apierror.Newf(apierror.ErrCycleDetected,
						"attribute %d is a descendant of attribute %d", *req.ParentID, attr.ID)
				}
			}
		}

		attr.Name = newName
		attr.Category = newCategory
		if req.DisplayName != nil {
			attr.DisplayName = *req.DisplayName
		}
		if req.Type != nil {
			attr.Type = *req.Type
		}
		if req.Value != nil {
			attr.Value = []byte(req.Value)
		}
		if req.SortOrder != nil {
			attr.SortOrder = *req.SortOrder
		}
		if req.Icon != nil {
			attr.Icon = *req.Icon
		}
		if req.Color != nil {
			attr.Color = *req.Color
		}
		if req.Enabled != nil {
			attr.Enabled = *req.Enabled
		}
		if req.Metadata != nil {
			attr.Metadata = []byte(req.Metadata)
		}

		if reparent {
			if req.MoveToRoot {
				attr.ParentID = nil
				attr.Level = 0
			} else {
				attr.ParentID = req.ParentID
				attr.Level = newParent.Level + 1
			}
			attr.Path = materializePath(newParent, attr.ID)
		}

		attr.UpdatedAt = time.Now()
		if err := attrs.Update(ctx, attr); err != nil {
			return apierror.WrapError(apierror.ErrInternalError, "Failed to update attribute", err)
		}

		// 层级变化时重算整个子树的 level/path
		if reparent {
			if err := recomputeSubtree(ctx, attrs, attr); err != nil {
				return apierror.WrapError(apierror.ErrInternalError, "Failed to recompute subtree", err)
			}
		}

		updated = attr
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return attributeModelToEntity(updated)
}

// Delete 软删除属性
// 系统内置属性受保护，不允许删除。
// 引用该属性的实体关联会变成悬挂关联，读取时渲染为 unknown 标签
func (s *AttributeService) Delete(ctx context.Context, id uint64) error {
	logger := zerolog.Ctx(ctx)

	attr, err := s.attrs.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierror.Newf(apierror.ErrAttributeNotFound, "attribute %d does not exist", id)
	}
	if err != nil {
		return apierror.WrapError(apierror.ErrInternalError, "Failed to load attribute", err)
	}
	if attr.IsSystem {
		return apierror.Newf(apierror.ErrSystemAttributeProtected,
			"attribute %d (%s/%s) is a system attribute", id, attr.Category, attr.Name)
	}

	if err := s.attrs.Delete(ctx, id); err != nil {
		return apierror.WrapError(apierror.ErrInternalError, "Failed to delete attribute", err)
	}

	logger.Info().
		Uint64("attribute_id", id).
		Str("category", attr.Category).
		Str("name", attr.Name).
		Msg("Attribute deleted")

	s.invalidate(ctx)
	return nil
}

// Restore 恢复已软删除的属性
func (s *AttributeService) Restore(ctx context.Context, id uint64) (*entity.Attribute, error) {
	attr, err := s.attrs.GetByIDUnscoped(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.Newf(apierror.ErrAttributeNotFound, "attribute %d does not exist", id)
	}
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to load attribute", err)
	}

	if attr.DeletedAt.Valid {
		if err := s.attrs.Restore(ctx, id); err != nil {
			return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to restore attribute", err)
		}
		attr.DeletedAt = gorm.DeletedAt{}
		s.invalidate(ctx)
	}
	return attributeModelToEntity(attr)
}

// GetByID 根据 ID 获取属性
func (s *AttributeService) GetByID(ctx context.Context, id uint64) (*entity.Attribute, error) {
	var cached entity.Attribute
	if found, err := s.cache.Get(ctx, keyDetail(id), &cached); err == nil && found {
		return &cached, nil
	}

	attr, err := s.attrs.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.Newf(apierror.ErrAttributeNotFound, "attribute %d does not exist", id)
	}
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to load attribute", err)
	}

	e, err := attributeModelToEntity(attr)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, keyDetail(id), e)
	return e, nil
}

// FindByCategory 按分类获取属性列表
func (s *AttributeService) FindByCategory(ctx context.Context, category string) ([]entity.Attribute, error) {
	var cached []entity.Attribute
	if found, err := s.cache.Get(ctx, keyCategory(category), &cached); err == nil && found {
		return cached, nil
	}

	attrs, err := s.attrs.List(ctx, category)
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to list attributes", err)
	}
	es, err := attributeModelsToEntities(attrs)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, keyCategory(category), es)
	return es, nil
}

// FindByType 按值类型获取属性列表
func (s *AttributeService) FindByType(ctx context.Context, attrType string) ([]entity.Attribute, error) {
	var cached []entity.Attribute
	if found, err := s.cache.Get(ctx, keyType(attrType), &cached); err == nil && found {
		return cached, nil
	}

	attrs, err := s.attrs.ListByType(ctx, attrType)
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to list attributes", err)
	}
	es, err := attributeModelsToEntities(attrs)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, keyType(attrType), es)
	return es, nil
}

// GetTree 获取属性树，category 为空时返回全部分类的森林
func (s *AttributeService) GetTree(ctx context.Context, category string) ([]*entity.AttributeTreeNode, error) {
	var cached []*entity.AttributeTreeNode
	if found, err := s.cache.Get(ctx, keyTree(category), &cached); err == nil && found {
		return cached, nil
	}

	attrs, err := s.attrs.List(ctx, category)
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to list attributes", err)
	}

	categorySvc := NewCategoryService(s.attrs)
	roots, err := categorySvc.BuildTree(attrs)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, keyTree(category), roots)
	return roots, nil
}

// isUniqueViolation 判断是否唯一索引冲突
// 纯 Go 的 sqlite 驱动没有类型化的约束错误，只能按错误文本匹配
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// materializePath 计算物化的祖先 ID 链
// path 只是读取优化，永远从 parent_id 链推导，不作为事实来源
func materializePath(parent *model.Attribute, id uint64) string {
	if parent == nil {
		return fmt.Sprintf("/%d/", id)
	}
	return fmt.Sprintf("%s%d/", parent.Path, id)
}

// recomputeSubtree 重算 parent 下整个子树的 level 和 path
func recomputeSubtree(ctx context.Context, attrs repository.AttributeRepository, parent *model.Attribute) error {
	children, err := attrs.ListChildren(ctx, parent.ID)
	if err != nil {
		return err
	}
	for _, child := range children {
		child.Level = parent.Level + 1
		child.Path = fmt.Sprintf("%s%d/", parent.Path, child.ID)
		if err := attrs.UpdateHierarchy(ctx, child.ID, child.ParentID, child.Level, child.Path); err != nil {
			return err
		}
		if err := recomputeSubtree(ctx, attrs, child); err != nil {
			return err
		}
	}
	return nil
}

// cacheSet 写缓存，失败只记日志不影响主流程
func (s *AttributeService) cacheSet(ctx context.Context, key string, value any) {
	if err := s.cache.Set(ctx, key, value); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("Failed to set attribute cache")
	}
}

// invalidate 让目录缓存失效，任何目录写操作之后调用
// 重挂载会连带改变整个子树的 level/path，详情键也必须整体清掉，
// 所以这里统一按前缀全量失效，目录写入频率低，重建成本可以接受
func (s *AttributeService) invalidate(ctx context.Context) {
	logger := zerolog.Ctx(ctx)
	for _, prefix := range []string{"detail:", "category:", "type:", "tree:"} {
		if err := s.cache.DeletePrefix(ctx, prefix); err != nil {
			logger.Error().Err(err).Str("prefix", prefix).Msg("Failed to invalidate attribute cache")
		}
	}
}
