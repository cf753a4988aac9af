package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/jimyag/wardrobe/internal/wardrobe/entity"
	"github.com/jimyag/wardrobe/internal/wardrobe/metrics"
	"github.com/jimyag/wardrobe/internal/wardrobe/service"
	"github.com/jimyag/wardrobe/pkg/ginx"
	"github.com/rs/zerolog"
)

// EntityAttributeServiceInterface 定义实体属性关联服务的接口
type EntityAttributeServiceInterface interface {
	AddAttributesToEntity(ctx context.Context, req *entity.AddEntityAttributesRequest) ([]entity.EntityAttribute, error)
	RemoveAttributesFromEntity(ctx context.Context, req *entity.RemoveEntityAttributesRequest) (int64, error)
	SetPrimaryAttribute(ctx context.Context, req *entity.SetPrimaryAttributeRequest) error
	UpdateAttributeWeights(ctx context.Context, req *entity.UpdateAttributeWeightsRequest) error
	FindByEntity(ctx context.Context, req *entity.DescribeEntityAttributesRequest) ([]entity.EntityAttribute, error)
	HasAttribute(ctx context.Context, req *entity.HasAttributeRequest) (bool, error)
	FindByAttributeID(ctx context.Context, attributeID uint64) ([]entity.EntityAttribute, error)
	FindByUser(ctx context.Context, req *entity.DescribeUserAttributesRequest) ([]entity.EntityAttribute, error)
}

type EntityAttribute struct {
	entityAttributeService EntityAttributeServiceInterface
	metrics                *metrics.Metrics
}

func NewEntityAttribute(entityAttributeService *service.EntityAttributeService, m *metrics.Metrics) *EntityAttribute {
	return &EntityAttribute{
		entityAttributeService: entityAttributeService,
		metrics:                m,
	}
}

func (e *EntityAttribute) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/add-entity-attributes", ginx.Adapt5(e.AddEntityAttributes))
	router.POST("/remove-entity-attributes", ginx.Adapt5(e.RemoveEntityAttributes))
	router.POST("/set-primary-attribute", ginx.Adapt5(e.SetPrimaryAttribute))
	router.POST("/update-attribute-weights", ginx.Adapt5(e.UpdateAttributeWeights))
	router.POST("/describe-entity-attributes", ginx.Adapt5(e.DescribeEntityAttributes))
	router.POST("/has-attribute", ginx.Adapt5(e.HasAttribute))
	router.POST("/describe-attribute-links", ginx.Adapt5(e.DescribeAttributeLinks))
	router.POST("/describe-user-attributes", ginx.Adapt5(e.DescribeUserAttributes))
}

func (e *EntityAttribute) AddEntityAttributes(ctx *gin.Context, req *entity.AddEntityAttributesRequest) (*entity.AddEntityAttributesResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().
		Str("entity_type", req.EntityType).
		Uint64("entity_id", req.EntityID).
		Int("count", len(req.Attributes)).
		Msg("AddEntityAttributes called")

	links, err := e.entityAttributeService.AddAttributesToEntity(ctx, req)
	if err != nil {
		logger.Error().
			Err(err).
			Str("entity_type", req.EntityType).
			Uint64("entity_id", req.EntityID).
			Msg("Failed to add entity attributes")
		return nil, err
	}

	e.metrics.LinkWritesTotal.WithLabelValues("add").Inc()
	return &entity.AddEntityAttributesResponse{Links: links}, nil
}

func (e *EntityAttribute) RemoveEntityAttributes(ctx *gin.Context, req *entity.RemoveEntityAttributesRequest) (*entity.RemoveEntityAttributesResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().
		Str("entity_type", req.EntityType).
		Uint64("entity_id", req.EntityID).
		Int("count", len(req.AttributeIDs)).
		Msg("RemoveEntityAttributes called")

	removed, err := e.entityAttributeService.RemoveAttributesFromEntity(ctx, req)
	if err != nil {
		logger.Error().
			Err(err).
			Str("entity_type", req.EntityType).
			Uint64("entity_id", req.EntityID).
			Msg("Failed to remove entity attributes")
		return nil, err
	}

	e.metrics.LinkWritesTotal.WithLabelValues("remove").Inc()
	return &entity.RemoveEntityAttributesResponse{RemovedCount: removed}, nil
}

func (e *EntityAttribute) SetPrimaryAttribute(ctx *gin.Context, req *entity.SetPrimaryAttributeRequest) (*entity.SetPrimaryAttributeResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().
		Str("entity_type", req.EntityType).
		Uint64("entity_id", req.EntityID).
		Uint64("attribute_id", req.AttributeID).
		Msg("SetPrimaryAttribute called")

	if err := e.entityAttributeService.SetPrimaryAttribute(ctx, req); err != nil {
		logger.Error().
			Err(err).
			Str("entity_type", req.EntityType).
			Uint64("entity_id", req.EntityID).
			Uint64("attribute_id", req.AttributeID).
			Msg("Failed to set primary attribute")
		return nil, err
	}

	e.metrics.LinkWritesTotal.WithLabelValues("set_primary").Inc()
	return &entity.SetPrimaryAttributeResponse{Return: true}, nil
}

func (e *EntityAttribute) UpdateAttributeWeights(ctx *gin.Context, req *entity.UpdateAttributeWeightsRequest) (*entity.UpdateAttributeWeightsResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().
		Str("entity_type", req.EntityType).
		Uint64("entity_id", req.EntityID).
		Int("count", len(req.Weights)).
		Msg("UpdateAttributeWeights called")

	if err := e.entityAttributeService.UpdateAttributeWeights(ctx, req); err != nil {
		logger.Error().
			Err(err).
			Str("entity_type", req.EntityType).
			Uint64("entity_id", req.EntityID).
			Msg("Failed to update attribute weights")
		return nil, err
	}

	e.metrics.LinkWritesTotal.WithLabelValues("update_weights").Inc()
	return &entity.UpdateAttributeWeightsResponse{Return: true}, nil
}

func (e *EntityAttribute) DescribeEntityAttributes(ctx *gin.Context, req *entity.DescribeEntityAttributesRequest) (*entity.DescribeEntityAttributesResponse, error) {
	logger := zerolog.Ctx(ctx)

	links, err := e.entityAttributeService.FindByEntity(ctx, req)
	if err != nil {
		logger.Error().
			Err(err).
			Str("entity_type", req.EntityType).
			Uint64("entity_id", req.EntityID).
			Msg("Failed to describe entity attributes")
		return nil, err
	}
	return &entity.DescribeEntityAttributesResponse{Links: links}, nil
}

func (e *EntityAttribute) HasAttribute(ctx *gin.Context, req *entity.HasAttributeRequest) (*entity.HasAttributeResponse, error) {
	logger := zerolog.Ctx(ctx)

	has, err := e.entityAttributeService.HasAttribute(ctx, req)
	if err != nil {
		logger.Error().
			Err(err).
			Str("entity_type", req.EntityType).
			Uint64("entity_id", req.EntityID).
			Uint64("attribute_id", req.AttributeID).
			Msg("Failed to check attribute")
		return nil, err
	}
	return &entity.HasAttributeResponse{HasAttribute: has}, nil
}

func (e *EntityAttribute) DescribeAttributeLinks(ctx *gin.Context, req *entity.DescribeAttributeLinksRequest) (*entity.DescribeEntityAttributesResponse, error) {
	logger := zerolog.Ctx(ctx)

	links, err := e.entityAttributeService.FindByAttributeID(ctx, req.AttributeID)
	if err != nil {
		logger.Error().
			Err(err).
			Uint64("attribute_id", req.AttributeID).
			Msg("Failed to describe attribute links")
		return nil, err
	}
	return &entity.DescribeEntityAttributesResponse{Links: links}, nil
}

func (e *EntityAttribute) DescribeUserAttributes(ctx *gin.Context, req *entity.DescribeUserAttributesRequest) (*entity.DescribeEntityAttributesResponse, error) {
	logger := zerolog.Ctx(ctx)

	links, err := e.entityAttributeService.FindByUser(ctx, req)
	if err != nil {
		logger.Error().
			Err(err).
			Str("entity_type", req.EntityType).
			Uint64("user_id", req.UserID).
			Msg("Failed to describe user attributes")
		return nil, err
	}
	return &entity.DescribeEntityAttributesResponse{Links: links}, nil
}
