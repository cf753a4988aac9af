package service

import (
	"context"

	"github.com/jimyag/wardrobe/internal/wardrobe/entity"
	"github.com/jimyag/wardrobe/internal/wardrobe/repository"
	"github.com/jimyag/wardrobe/internal/wardrobe/repository/model"
)

// CategoryService 分类树逻辑
// 负责把扁平的属性列表组装成森林，以及重新挂载父节点前的环检测
type CategoryService struct {
	attrs repository.AttributeRepository
}

// NewCategoryService 创建分类树服务
func NewCategoryService(attrs repository.AttributeRepository) *CategoryService {
	return &CategoryService{attrs: attrs}
}

// HasDescendant 判断 targetID 是否是 ancestorID 的后代
// 把 X 挂到 Y 下面之前必须检查 HasDescendant(X, Y)，为 true 说明会成环
//
// 复杂度是 O(子树大小)，目录规模在几十到几百个节点，可以接受。
// 读取失败时返回错误，调用方必须把错误当成检测失败拒绝操作，
// 绝不能把 检查失败 当成 没有环
func (s *CategoryService) HasDescendant(ctx context.Context, ancestorID, targetID uint64) (bool, error) {
	children, err := s.attrs.ListChildren(ctx, ancestorID)
	if err != nil {
		return false, err
	}
	for _, child := range children {
		if child.ID == targetID {
			return true, nil
		}
		found, err := s.HasDescendant(ctx, child.ID, targetID)
		if err != nil {
			return false, err
		}
		if found {
			return true, nil
		}
	}
	return false, nil
}

// BuildTree 把扁平的属性列表组装成森林
// 单次线性遍历：先按 parent_id 分桶，再从根节点（parent_id 为空）开始组装。
// parent_id 指向不存在属性的孤儿节点不会出现在结果里，也不会报错
func (s *CategoryService) BuildTree(attrs []*model.Attribute) ([]*entity.AttributeTreeNode, error) {
	byParent := make(map[uint64][]*model.Attribute, len(attrs))
	var rootModels []*model.Attribute
	for _, a := range attrs {
		if a.ParentID == nil {
			rootModels = append(rootModels, a)
			continue
		}
		byParent[*a.ParentID] = append(byParent[*a.ParentID], a)
	}

	roots := make([]*entity.AttributeTreeNode, 0, len(rootModels))
	for _, m := range rootModels {
		node, err := buildSubtree(m, byParent)
		if err != nil {
			return nil, err
		}
		roots = append(roots, node)
	}
	return roots, nil
}

// buildSubtree 递归组装子树
// 输入列表已经按 sort_order、display_name 排序，分桶保持了这个顺序
func buildSubtree(m *model.Attribute, byParent map[uint64][]*model.Attribute) (*entity.AttributeTreeNode, error) {
	e, err := attributeModelToEntity(m)
	if err != nil {
		return nil, err
	}
	node := &entity.AttributeTreeNode{Attribute: *e}
	for _, child := range byParent[m.ID] {
		childNode, err := buildSubtree(child, byParent)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, childNode)
	}
	return node, nil
}
