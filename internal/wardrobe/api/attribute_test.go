package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jimyag/wardrobe/internal/wardrobe/entity"
	"github.com/jimyag/wardrobe/internal/wardrobe/metrics"
	"github.com/jimyag/wardrobe/pkg/apierror"
	"github.com/jimyag/wardrobe/pkg/ginx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAttributeService 是 AttributeService 的 mock 实现
type MockAttributeService struct {
	mock.Mock
}

func (m *MockAttributeService) Create(ctx context.Context, req *entity.CreateAttributeRequest) (*entity.Attribute, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Attribute), args.Error(1)
}

func (m *MockAttributeService) Update(ctx context.Context, req *entity.UpdateAttributeRequest) (*entity.Attribute, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Attribute), args.Error(1)
}

func (m *MockAttributeService) Delete(ctx context.Context, id uint64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAttributeService) Restore(ctx context.Context, id uint64) (*entity.Attribute, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Attribute), args.Error(1)
}

func (m *MockAttributeService) GetByID(ctx context.Context, id uint64) (*entity.Attribute, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Attribute), args.Error(1)
}

func (m *MockAttributeService) FindByCategory(ctx context.Context, category string) ([]entity.Attribute, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Attribute), args.Error(1)
}

func (m *MockAttributeService) FindByType(ctx context.Context, attrType string) ([]entity.Attribute, error) {
	args := m.Called(ctx, attrType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Attribute), args.Error(1)
}

func (m *MockAttributeService) GetTree(ctx context.Context, category string) ([]*entity.AttributeTreeNode, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.AttributeTreeNode), args.Error(1)
}

func newTestMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}

func TestAttribute_CreateAttribute(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		name         string
		req          *entity.CreateAttributeRequest
		mockSetup    func(*MockAttributeService)
		expectStatus int
	}{
		{
			name: "successful create",
			req: &entity.CreateAttributeRequest{
				Name:     "red",
				Category: "color",
			},
			mockSetup: func(m *MockAttributeService) {
				m.On("Create", mock.Anything, mock.AnythingOfType("*entity.CreateAttributeRequest")).
					Return(&entity.Attribute{
						ID:          1,
						Name:        "red",
						DisplayName: "红色",
						Category:    "color",
						Type:        "string",
						Path:        "/1/",
						Enabled:     true,
						CreatedAt:   "2024-01-01T00:00:00Z",
						UpdatedAt:   "2024-01-01T00:00:00Z",
					}, nil)
			},
			expectStatus: http.StatusOK,
		},
		{
			name: "duplicate name maps to conflict",
			req: &entity.CreateAttributeRequest{
				Name:     "red",
				Category: "color",
			},
			mockSetup: func(m *MockAttributeService) {
				m.On("Create", mock.Anything, mock.AnythingOfType("*entity.CreateAttributeRequest")).
					Return(nil, apierror.Newf(apierror.ErrDuplicateName,
						"attribute %q already exists in category %q", "red", "color"))
			},
			expectStatus: http.StatusConflict,
		},
		{
			name: "unknown attribute type rejected before service",
			req: &entity.CreateAttributeRequest{
				Name:     "red",
				Category: "color",
				Type:     "hologram",
			},
			mockSetup:    func(m *MockAttributeService) {},
			expectStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range testcases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			mockService := new(MockAttributeService)
			tc.mockSetup(mockService)

			attributeAPI := &Attribute{
				attributeService: mockService,
				metrics:          newTestMetrics(),
			}

			reqBody, err := json.Marshal(tc.req)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/api/create-attribute", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			gin.SetMode(gin.TestMode)
			router := gin.New()
			router.POST("/api/create-attribute", ginx.Adapt5(attributeAPI.CreateAttribute))
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.expectStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestAttribute_DeleteAttribute(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		name         string
		req          *entity.DeleteAttributeRequest
		mockSetup    func(*MockAttributeService)
		expectStatus int
	}{
		{
			name: "successful delete",
			req:  &entity.DeleteAttributeRequest{ID: 1},
			mockSetup: func(m *MockAttributeService) {
				m.On("Delete", mock.Anything, uint64(1)).Return(nil)
			},
			expectStatus: http.StatusOK,
		},
		{
			name: "system attribute maps to forbidden",
			req:  &entity.DeleteAttributeRequest{ID: 2},
			mockSetup: func(m *MockAttributeService) {
				m.On("Delete", mock.Anything, uint64(2)).
					Return(apierror.Newf(apierror.ErrSystemAttributeProtected,
						"attribute %d is a system attribute", 2))
			},
			expectStatus: http.StatusForbidden,
		},
		{
			name: "missing attribute maps to not found",
			req:  &entity.DeleteAttributeRequest{ID: 3},
			mockSetup: func(m *MockAttributeService) {
				m.On("Delete", mock.Anything, uint64(3)).
					Return(apierror.Newf(apierror.ErrAttributeNotFound,
						"attribute %d does not exist", 3))
			},
			expectStatus: http.StatusNotFound,
		},
	}

	for _, tc := range testcases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			mockService := new(MockAttributeService)
			tc.mockSetup(mockService)

			attributeAPI := &Attribute{
				attributeService: mockService,
				metrics:          newTestMetrics(),
			}

			reqBody, err := json.Marshal(tc.req)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/api/delete-attribute", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			gin.SetMode(gin.TestMode)
			router := gin.New()
			router.POST("/api/delete-attribute", ginx.Adapt5(attributeAPI.DeleteAttribute))
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.expectStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestAttribute_DescribeAttributes(t *testing.T) {
	t.Parallel()

	t.Run("query by category", func(t *testing.T) {
		t.Parallel()

		mockService := new(MockAttributeService)
		mockService.On("FindByCategory", mock.Anything, "color").
			Return([]entity.Attribute{{ID: 1, Name: "red", Category: "color"}}, nil)

		attributeAPI := &Attribute{
			attributeService: mockService,
			metrics:          newTestMetrics(),
		}

		reqBody, err := json.Marshal(&entity.DescribeAttributesRequest{Category: "color"})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/api/describe-attributes", bytes.NewReader(reqBody))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		gin.SetMode(gin.TestMode)
		router := gin.New()
		router.POST("/api/describe-attributes", ginx.Adapt5(attributeAPI.DescribeAttributes))
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp entity.DescribeAttributesResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Attributes, 1)
		assert.Equal(t, "red", resp.Attributes[0].Name)
		mockService.AssertExpectations(t)
	})

	t.Run("neither category nor type rejected", func(t *testing.T) {
		t.Parallel()

		mockService := new(MockAttributeService)
		attributeAPI := &Attribute{
			attributeService: mockService,
			metrics:          newTestMetrics(),
		}

		req := httptest.NewRequest(http.MethodPost, "/api/describe-attributes", bytes.NewReader([]byte(`{}`)))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		gin.SetMode(gin.TestMode)
		router := gin.New()
		router.POST("/api/describe-attributes", ginx.Adapt5(attributeAPI.DescribeAttributes))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertExpectations(t)
	})
}
