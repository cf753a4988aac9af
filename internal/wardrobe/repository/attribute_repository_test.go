package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jimyag/wardrobe/internal/wardrobe/repository/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *Repository {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	repo, err := New(dbPath)
	require.NoError(t, err)

	// 使用 t.Cleanup 确保在测试真正结束时清理，支持并发测试
	t.Cleanup(func() {
		_ = repo.Close()
		_ = os.RemoveAll(tmpDir)
	})

	return repo
}

func newTestAttribute(id uint64, category, name string) *model.Attribute {
	return &model.Attribute{
		ID:          id,
		Name:        name,
		DisplayName: name,
		Category:    category,
		Type:        "select",
		Path:        "/",
		Enabled:     true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

func TestAttributeRepository(t *testing.T) {
	t.Parallel()

	repo := setupTestDB(t)

	attrRepo := NewAttributeRepository(repo.DB())
	ctx := context.Background()

	t.Run("Create and GetByID", func(t *testing.T) {
		attr := newTestAttribute(1, "color", "red")
		attr.Color = "#ff0000"
		attr.SortOrder = 3

		err := attrRepo.Create(ctx, attr)
		require.NoError(t, err)

		got, err := attrRepo.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "red", got.Name)
		assert.Equal(t, "color", got.Category)
		assert.Equal(t, "#ff0000", got.Color)
		assert.Equal(t, 3, got.SortOrder)
	})

	t.Run("duplicate category name rejected by unique index", func(t *testing.T) {
		require.NoError(t, attrRepo.Create(ctx, newTestAttribute(10, "material", "cotton")))

		// 同一分类下重名应该触发唯一索引冲突
		err := attrRepo.Create(ctx, newTestAttribute(11, "material", "cotton"))
		assert.Error(t, err)

		// 不同分类下同名没有问题
		err = attrRepo.Create(ctx, newTestAttribute(12, "style", "cotton"))
		assert.NoError(t, err)
	})

	t.Run("GetByCategoryAndName", func(t *testing.T) {
		require.NoError(t, attrRepo.Create(ctx, newTestAttribute(20, "season", "summer")))

		got, err := attrRepo.GetByCategoryAndName(ctx, "season", "summer")
		require.NoError(t, err)
		assert.Equal(t, uint64(20), got.ID)

		_, err = attrRepo.GetByCategoryAndName(ctx, "season", "nonexistent")
		assert.Error(t, err)
	})

	t.Run("List ordering", func(t *testing.T) {
		a := newTestAttribute(30, "occasion", "work")
		a.SortOrder = 2
		b := newTestAttribute(31, "occasion", "casual")
		b.SortOrder = 1
		c := newTestAttribute(32, "occasion", "formal")
		c.SortOrder = 1

		require.NoError(t, attrRepo.Create(ctx, a))
		require.NoError(t, attrRepo.Create(ctx, b))
		require.NoError(t, attrRepo.Create(ctx, c))

		// sort_order 升序，相同时 display_name 升序
		got, err := attrRepo.List(ctx, "occasion")
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "casual", got[0].Name)
		assert.Equal(t, "formal", got[1].Name)
		assert.Equal(t, "work", got[2].Name)
	})

	t.Run("ListChildren", func(t *testing.T) {
		root := newTestAttribute(40, "clothing_type", "tops")
		require.NoError(t, attrRepo.Create(ctx, root))

		child := newTestAttribute(41, "clothing_type", "t-shirt")
		parentID := uint64(40)
		child.ParentID = &parentID
		child.Level = 1
		require.NoError(t, attrRepo.Create(ctx, child))

		children, err := attrRepo.ListChildren(ctx, 40)
		require.NoError(t, err)
		require.Len(t, children, 1)
		assert.Equal(t, uint64(41), children[0].ID)
	})

	t.Run("UpdateHierarchy", func(t *testing.T) {
		require.NoError(t, attrRepo.Create(ctx, newTestAttribute(50, "size", "xl")))

		parentID := uint64(40)
		require.NoError(t, attrRepo.UpdateHierarchy(ctx, 50, &parentID, 1, "/40/50/"))

		got, err := attrRepo.GetByID(ctx, 50)
		require.NoError(t, err)
		require.NotNil(t, got.ParentID)
		assert.Equal(t, uint64(40), *got.ParentID)
		assert.Equal(t, 1, got.Level)
		assert.Equal(t, "/40/50/", got.Path)

		// 挂回根节点
		require.NoError(t, attrRepo.UpdateHierarchy(ctx, 50, nil, 0, "/50/"))
		got, err = attrRepo.GetByID(ctx, 50)
		require.NoError(t, err)
		assert.Nil(t, got.ParentID)
	})

	t.Run("Delete and Restore", func(t *testing.T) {
		require.NoError(t, attrRepo.Create(ctx, newTestAttribute(60, "color", "blue")))

		// 软删除后常规查询不可见
		require.NoError(t, attrRepo.Delete(ctx, 60))
		_, err := attrRepo.GetByID(ctx, 60)
		assert.Error(t, err)

		// Unscoped 查询可见
		got, err := attrRepo.GetByIDUnscoped(ctx, 60)
		require.NoError(t, err)
		assert.True(t, got.DeletedAt.Valid)

		// 软删除后同名属性可以重新创建（唯一索引只约束未删除的行）
		require.NoError(t, attrRepo.Create(ctx, newTestAttribute(61, "color", "blue")))
		require.NoError(t, attrRepo.Delete(ctx, 61))

		// 恢复
		require.NoError(t, attrRepo.Restore(ctx, 60))
		got, err = attrRepo.GetByID(ctx, 60)
		require.NoError(t, err)
		assert.Equal(t, "blue", got.Name)
	})

	t.Run("ListByIDs skips deleted", func(t *testing.T) {
		require.NoError(t, attrRepo.Create(ctx, newTestAttribute(70, "color", "green")))
		require.NoError(t, attrRepo.Create(ctx, newTestAttribute(71, "color", "yellow")))
		require.NoError(t, attrRepo.Delete(ctx, 71))

		got, err := attrRepo.ListByIDs(ctx, []uint64{70, 71})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, uint64(70), got[0].ID)
	})
}
