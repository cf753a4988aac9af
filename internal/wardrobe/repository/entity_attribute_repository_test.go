package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jimyag/wardrobe/internal/wardrobe/repository/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestLink(id uint64, entityType string, entityID, attributeID uint64) *model.EntityAttribute {
	return &model.EntityAttribute{
		ID:          id,
		EntityType:  entityType,
		EntityID:    entityID,
		AttributeID: attributeID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

func TestEntityAttributeRepository(t *testing.T) {
	t.Parallel()

	repo := setupTestDB(t)

	linkRepo := NewEntityAttributeRepository(repo.DB())
	ctx := context.Background()

	t.Run("Upsert creates then updates", func(t *testing.T) {
		link := newTestLink(1, "clothing_item", 42, 100)
		link.Weight = 10

		got, err := linkRepo.Upsert(ctx, link)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), got.ID)

		// 再次 upsert 相同元组，更新字段而不新建行
		again := newTestLink(2, "clothing_item", 42, 100)
		again.Weight = 50
		again.Notes = "favorite"

		got, err = linkRepo.Upsert(ctx, again)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), got.ID, "existing row ID must be preserved")
		assert.Equal(t, 50, got.Weight)
		assert.Equal(t, "favorite", got.Notes)

		links, err := linkRepo.ListByEntity(ctx, "clothing_item", 42)
		require.NoError(t, err)
		assert.Len(t, links, 1)
	})

	t.Run("GetByTuple", func(t *testing.T) {
		_, err := linkRepo.Upsert(ctx, newTestLink(10, "outfit", 7, 200))
		require.NoError(t, err)

		got, err := linkRepo.GetByTuple(ctx, "outfit", 7, 200)
		require.NoError(t, err)
		assert.Equal(t, uint64(10), got.ID)

		_, err = linkRepo.GetByTuple(ctx, "outfit", 7, 999)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("ListByEntity ordering", func(t *testing.T) {
		low := newTestLink(20, "clothing_item", 8, 201)
		low.Weight = 10
		high := newTestLink(21, "clothing_item", 8, 202)
		high.Weight = 90
		primary := newTestLink(22, "clothing_item", 8, 203)
		primary.Weight = 5
		primary.IsPrimary = true

		for _, l := range []*model.EntityAttribute{low, high, primary} {
			_, err := linkRepo.Upsert(ctx, l)
			require.NoError(t, err)
		}

		// 主属性优先，其余按权重降序
		links, err := linkRepo.ListByEntity(ctx, "clothing_item", 8)
		require.NoError(t, err)
		require.Len(t, links, 3)
		assert.Equal(t, uint64(203), links[0].AttributeID)
		assert.Equal(t, uint64(202), links[1].AttributeID)
		assert.Equal(t, uint64(201), links[2].AttributeID)
	})

	t.Run("ClearPrimary and MarkPrimary", func(t *testing.T) {
		a := newTestLink(30, "clothing_item", 9, 300)
		a.IsPrimary = true
		b := newTestLink(31, "clothing_item", 9, 301)

		_, err := linkRepo.Upsert(ctx, a)
		require.NoError(t, err)
		_, err = linkRepo.Upsert(ctx, b)
		require.NoError(t, err)

		// 先清后设，放在同一个事务里
		err = repo.Transaction(ctx, func(tx *gorm.DB) error {
			txRepo := NewEntityAttributeRepository(tx)
			if err := txRepo.ClearPrimary(ctx, "clothing_item", 9); err != nil {
				return err
			}
			rows, err := txRepo.MarkPrimary(ctx, "clothing_item", 9, 301)
			if err != nil {
				return err
			}
			require.Equal(t, int64(1), rows)
			return nil
		})
		require.NoError(t, err)

		primaries, err := linkRepo.ListPrimaryByEntity(ctx, "clothing_item", 9)
		require.NoError(t, err)
		require.Len(t, primaries, 1)
		assert.Equal(t, uint64(301), primaries[0].AttributeID)
	})

	t.Run("two primaries rejected by partial index", func(t *testing.T) {
		a := newTestLink(40, "outfit", 11, 400)
		a.IsPrimary = true
		_, err := linkRepo.Upsert(ctx, a)
		require.NoError(t, err)

		// 直接插入第二个主属性应该被兜底索引拒绝
		b := newTestLink(41, "outfit", 11, 401)
		b.IsPrimary = true
		_, err = linkRepo.Upsert(ctx, b)
		assert.Error(t, err)
	})

	t.Run("DeleteByTuples", func(t *testing.T) {
		_, err := linkRepo.Upsert(ctx, newTestLink(50, "clothing_item", 12, 500))
		require.NoError(t, err)
		_, err = linkRepo.Upsert(ctx, newTestLink(51, "clothing_item", 12, 501))
		require.NoError(t, err)

		count, err := linkRepo.DeleteByTuples(ctx, "clothing_item", 12, []uint64{500, 501, 999})
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)

		links, err := linkRepo.ListByEntity(ctx, "clothing_item", 12)
		require.NoError(t, err)
		assert.Len(t, links, 0)

		// 空的 ID 列表直接返回 0
		count, err = linkRepo.DeleteByTuples(ctx, "clothing_item", 12, nil)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("DeleteByEntity", func(t *testing.T) {
		_, err := linkRepo.Upsert(ctx, newTestLink(60, "user_profile", 13, 600))
		require.NoError(t, err)
		_, err = linkRepo.Upsert(ctx, newTestLink(61, "user_profile", 13, 601))
		require.NoError(t, err)

		count, err := linkRepo.DeleteByEntity(ctx, "user_profile", 13)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("UpdateWeight", func(t *testing.T) {
		_, err := linkRepo.Upsert(ctx, newTestLink(70, "clothing_item", 14, 700))
		require.NoError(t, err)

		rows, err := linkRepo.UpdateWeight(ctx, "clothing_item", 14, 700, 77)
		require.NoError(t, err)
		assert.Equal(t, int64(1), rows)

		got, err := linkRepo.GetByTuple(ctx, "clothing_item", 14, 700)
		require.NoError(t, err)
		assert.Equal(t, 77, got.Weight)

		// 不存在的元组影响行数为 0
		rows, err = linkRepo.UpdateWeight(ctx, "clothing_item", 14, 999, 10)
		require.NoError(t, err)
		assert.Zero(t, rows)
	})

	t.Run("ListByUser", func(t *testing.T) {
		a := newTestLink(80, "clothing_item", 15, 800)
		a.UserID = 1000
		b := newTestLink(81, "clothing_item", 16, 801)
		b.UserID = 1000
		c := newTestLink(82, "clothing_item", 17, 802)
		c.UserID = 2000

		for _, l := range []*model.EntityAttribute{a, b, c} {
			_, err := linkRepo.Upsert(ctx, l)
			require.NoError(t, err)
		}

		links, err := linkRepo.ListByUser(ctx, "clothing_item", 1000)
		require.NoError(t, err)
		assert.Len(t, links, 2)
	})
}
