// Package api 提供 HTTP API 层
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jimyag/wardrobe/internal/wardrobe/metrics"
	"github.com/jimyag/wardrobe/internal/wardrobe/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type API struct {
	engine  *gin.Engine
	server  *http.Server
	metrics *metrics.Metrics

	attribute       *Attribute
	entityAttribute *EntityAttribute
}

func New(address string, m *metrics.Metrics, attributeService *service.AttributeService, entityAttributeService *service.EntityAttributeService) (*API, error) {
	engine := gin.Default()
	api := &API{
		engine:          engine,
		metrics:         m,
		attribute:       NewAttribute(attributeService, m),
		entityAttribute: NewEntityAttribute(entityAttributeService, m),
	}
	engine.Use(api.metricsMiddleware())

	group := engine.Group("/api")
	api.attribute.RegisterRoutes(group)
	api.entityAttribute.RegisterRoutes(group)

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	engine.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api.server = &http.Server{
		Addr:    address,
		Handler: engine,
	}
	return api, nil
}

// metricsMiddleware 按路由记录请求量和耗时
func (a *API) metricsMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		path := ctx.FullPath()
		if path == "" {
			path = ctx.Request.URL.Path
		}
		a.metrics.RecordHTTPRequest(path, strconv.Itoa(ctx.Writer.Status()), time.Since(start))
	}
}

func (a *API) Run(ctx context.Context) error {
	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *API) Shutdown(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}

// Name 实现 grace.Grace 接口
func (a *API) Name() string {
	return "wardrobe-api"
}
