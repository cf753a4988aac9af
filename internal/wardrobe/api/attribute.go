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

// AttributeServiceInterface 定义属性目录服务的接口
type AttributeServiceInterface interface {
	Create(ctx context.Context, req *entity.CreateAttributeRequest) (*entity.Attribute, error)
	Update(ctx context.Context, req *entity.UpdateAttributeRequest) (*entity.Attribute, error)
	Delete(ctx context.Context, id uint64) error
	Restore(ctx context.Context, id uint64) (*entity.Attribute, error)
	GetByID(ctx context.Context, id uint64) (*entity.Attribute, error)
	FindByCategory(ctx context.Context, category string) ([]entity.Attribute, error)
	FindByType(ctx context.Context, attrType string) ([]entity.Attribute, error)
	GetTree(ctx context.Context, category string) ([]*entity.AttributeTreeNode, error)
}

type Attribute struct {
	attributeService AttributeServiceInterface
	metrics          *metrics.Metrics
}

func NewAttribute(attributeService *service.AttributeService, m *metrics.Metrics) *Attribute {
	return &Attribute{
		attributeService: attributeService,
		metrics:          m,
	}
}

func (a *Attribute) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/create-attribute", ginx.Adapt5(a.CreateAttribute))
	router.POST("/update-attribute", ginx.Adapt5(a.UpdateAttribute))
	router.POST("/delete-attribute", ginx.Adapt5(a.DeleteAttribute))
	router.POST("/restore-attribute", ginx.Adapt5(a.RestoreAttribute))
	router.POST("/get-attribute", ginx.Adapt5(a.GetAttribute))
	router.POST("/describe-attributes", ginx.Adapt5(a.DescribeAttributes))
	router.POST("/get-attribute-tree", ginx.Adapt5(a.GetAttributeTree))
}

func (a *Attribute) CreateAttribute(ctx *gin.Context, req *entity.CreateAttributeRequest) (*entity.Attribute, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().
		Str("category", req.Category).
		Str("name", req.Name).
		Msg("CreateAttribute called")

	attr, err := a.attributeService.Create(ctx, req)
	if err != nil {
		logger.Error().
			Err(err).
			Str("category", req.Category).
			Str("name", req.Name).
			Msg("Failed to create attribute")
		return nil, err
	}

	a.metrics.AttributeWritesTotal.WithLabelValues("create").Inc()
	return attr, nil
}

func (a *Attribute) UpdateAttribute(ctx *gin.Context, req *entity.UpdateAttributeRequest) (*entity.Attribute, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().
		Uint64("attribute_id", req.ID).
		Msg("UpdateAttribute called")

	attr, err := a.attributeService.Update(ctx, req)
	if err != nil {
		logger.Error().
			Err(err).
			Uint64("attribute_id", req.ID).
			Msg("Failed to update attribute")
		return nil, err
	}

	a.metrics.AttributeWritesTotal.WithLabelValues("update").Inc()
	return attr, nil
}

func (a *Attribute) DeleteAttribute(ctx *gin.Context, req *entity.DeleteAttributeRequest) (*entity.DeleteAttributeResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().
		Uint64("attribute_id", req.ID).
		Msg("DeleteAttribute called")

	if err := a.attributeService.Delete(ctx, req.ID); err != nil {
		logger.Error().
			Err(err).
			Uint64("attribute_id", req.ID).
			Msg("Failed to delete attribute")
		return nil, err
	}

	a.metrics.AttributeWritesTotal.WithLabelValues("delete").Inc()
	return &entity.DeleteAttributeResponse{Return: true}, nil
}

func (a *Attribute) RestoreAttribute(ctx *gin.Context, req *entity.RestoreAttributeRequest) (*entity.Attribute, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().
		Uint64("attribute_id", req.ID).
		Msg("RestoreAttribute called")

	attr, err := a.attributeService.Restore(ctx, req.ID)
	if err != nil {
		logger.Error().
			Err(err).
			Uint64("attribute_id", req.ID).
			Msg("Failed to restore attribute")
		return nil, err
	}

	a.metrics.AttributeWritesTotal.WithLabelValues("restore").Inc()
	return attr, nil
}

func (a *Attribute) GetAttribute(ctx *gin.Context, req *entity.GetAttributeRequest) (*entity.Attribute, error) {
	logger := zerolog.Ctx(ctx)

	attr, err := a.attributeService.GetByID(ctx, req.ID)
	if err != nil {
		logger.Error().
			Err(err).
			Uint64("attribute_id", req.ID).
			Msg("Failed to get attribute")
		return nil, err
	}
	return attr, nil
}

func (a *Attribute) DescribeAttributes(ctx *gin.Context, req *entity.DescribeAttributesRequest) (*entity.DescribeAttributesResponse, error) {
	logger := zerolog.Ctx(ctx)

	var attrs []entity.Attribute
	var err error
	if req.Category != "" {
		attrs, err = a.attributeService.FindByCategory(ctx, req.Category)
	} else {
		attrs, err = a.attributeService.FindByType(ctx, req.Type)
	}
	if err != nil {
		logger.Error().
			Err(err).
			Str("category", req.Category).
			Str("type", req.Type).
			Msg("Failed to describe attributes")
		return nil, err
	}
	return &entity.DescribeAttributesResponse{Attributes: attrs}, nil
}

func (a *Attribute) GetAttributeTree(ctx *gin.Context, req *entity.GetAttributeTreeRequest) (*entity.GetAttributeTreeResponse, error) {
	logger := zerolog.Ctx(ctx)

	roots, err := a.attributeService.GetTree(ctx, req.Category)
	if err != nil {
		logger.Error().
			Err(err).
			Str("category", req.Category).
			Msg("Failed to get attribute tree")
		return nil, err
	}
	return &entity.GetAttributeTreeResponse{Roots: roots}, nil
}
