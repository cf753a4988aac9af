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
	"github.com/jimyag/wardrobe/pkg/apierror"
	"github.com/jimyag/wardrobe/pkg/ginx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockEntityAttributeService 是 EntityAttributeService 的 mock 实现
type MockEntityAttributeService struct {
	mock.Mock
}

func (m *MockEntityAttributeService) AddAttributesToEntity(ctx context.Context, req *entity.AddEntityAttributesRequest) ([]entity.EntityAttribute, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.EntityAttribute), args.Error(1)
}

func (m *MockEntityAttributeService) RemoveAttributesFromEntity(ctx context.Context, req *entity.RemoveEntityAttributesRequest) (int64, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEntityAttributeService) SetPrimaryAttribute(ctx context.Context, req *entity.SetPrimaryAttributeRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockEntityAttributeService) UpdateAttributeWeights(ctx context.Context, req *entity.UpdateAttributeWeightsRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockEntityAttributeService) FindByEntity(ctx context.Context, req *entity.DescribeEntityAttributesRequest) ([]entity.EntityAttribute, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.EntityAttribute), args.Error(1)
}

func (m *MockEntityAttributeService) HasAttribute(ctx context.Context, req *entity.HasAttributeRequest) (bool, error) {
	args := m.Called(ctx, req)
	return args.Bool(0), args.Error(1)
}

func (m *MockEntityAttributeService) FindByAttributeID(ctx context.Context, attributeID uint64) ([]entity.EntityAttribute, error) {
	args := m.Called(ctx, attributeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.EntityAttribute), args.Error(1)
}

func (m *MockEntityAttributeService) FindByUser(ctx context.Context, req *entity.DescribeUserAttributesRequest) ([]entity.EntityAttribute, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.EntityAttribute), args.Error(1)
}

func TestEntityAttribute_AddEntityAttributes(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		name         string
		req          *entity.AddEntityAttributesRequest
		mockSetup    func(*MockEntityAttributeService)
		expectStatus int
	}{
		{
			name: "successful add",
			req: &entity.AddEntityAttributesRequest{
				EntityType: "clothing_item",
				EntityID:   100,
				Attributes: []entity.AttributeSpec{{AttributeID: 1}},
			},
			mockSetup: func(m *MockEntityAttributeService) {
				m.On("AddAttributesToEntity", mock.Anything, mock.AnythingOfType("*entity.AddEntityAttributesRequest")).
					Return([]entity.EntityAttribute{
						{ID: 10, EntityType: "clothing_item", EntityID: 100, AttributeID: 1},
					}, nil)
			},
			expectStatus: http.StatusOK,
		},
		{
			name: "missing attribute maps to not found",
			req: &entity.AddEntityAttributesRequest{
				EntityType: "clothing_item",
				EntityID:   100,
				Attributes: []entity.AttributeSpec{{AttributeID: 999}},
			},
			mockSetup: func(m *MockEntityAttributeService) {
				m.On("AddAttributesToEntity", mock.Anything, mock.AnythingOfType("*entity.AddEntityAttributesRequest")).
					Return(nil, apierror.Newf(apierror.ErrAttributeNotFound,
						"attribute %d does not exist", 999))
			},
			expectStatus: http.StatusNotFound,
		},
		{
			name: "empty attributes rejected before service",
			req: &entity.AddEntityAttributesRequest{
				EntityType: "clothing_item",
				EntityID:   100,
				Attributes: []entity.AttributeSpec{},
			},
			mockSetup:    func(m *MockEntityAttributeService) {},
			expectStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range testcases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			mockService := new(MockEntityAttributeService)
			tc.mockSetup(mockService)

			entityAttributeAPI := &EntityAttribute{
				entityAttributeService: mockService,
				metrics:                newTestMetrics(),
			}

			reqBody, err := json.Marshal(tc.req)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/api/add-entity-attributes", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			gin.SetMode(gin.TestMode)
			router := gin.New()
			router.POST("/api/add-entity-attributes", ginx.Adapt5(entityAttributeAPI.AddEntityAttributes))
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.expectStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestEntityAttribute_SetPrimaryAttribute(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		name         string
		req          *entity.SetPrimaryAttributeRequest
		mockSetup    func(*MockEntityAttributeService)
		expectStatus int
	}{
		{
			name: "successful set primary",
			req: &entity.SetPrimaryAttributeRequest{
				EntityType:  "clothing_item",
				EntityID:    1,
				AttributeID: 5,
			},
			mockSetup: func(m *MockEntityAttributeService) {
				m.On("SetPrimaryAttribute", mock.Anything, mock.AnythingOfType("*entity.SetPrimaryAttributeRequest")).
					Return(nil)
			},
			expectStatus: http.StatusOK,
		},
		{
			name: "unlinked attribute maps to not found",
			req: &entity.SetPrimaryAttributeRequest{
				EntityType:  "clothing_item",
				EntityID:    1,
				AttributeID: 6,
			},
			mockSetup: func(m *MockEntityAttributeService) {
				m.On("SetPrimaryAttribute", mock.Anything, mock.AnythingOfType("*entity.SetPrimaryAttributeRequest")).
					Return(apierror.Newf(apierror.ErrLinkNotFound,
						"entity %s/%d has no link to attribute %d", "clothing_item", 1, 6))
			},
			expectStatus: http.StatusNotFound,
		},
	}

	for _, tc := range testcases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			mockService := new(MockEntityAttributeService)
			tc.mockSetup(mockService)

			entityAttributeAPI := &EntityAttribute{
				entityAttributeService: mockService,
				metrics:                newTestMetrics(),
			}

			reqBody, err := json.Marshal(tc.req)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/api/set-primary-attribute", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			gin.SetMode(gin.TestMode)
			router := gin.New()
			router.POST("/api/set-primary-attribute", ginx.Adapt5(entityAttributeAPI.SetPrimaryAttribute))
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.expectStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestEntityAttribute_DescribeEntityAttributes(t *testing.T) {
	t.Parallel()

	mockService := new(MockEntityAttributeService)
	mockService.On("FindByEntity", mock.Anything, mock.AnythingOfType("*entity.DescribeEntityAttributesRequest")).
		Return([]entity.EntityAttribute{
			{
				ID: 10, EntityType: "clothing_item", EntityID: 1, AttributeID: 2,
				IsPrimary: true,
				Attribute: &entity.AttributeRef{ID: 2, Name: "red", DisplayName: "红色"},
			},
		}, nil)

	entityAttributeAPI := &EntityAttribute{
		entityAttributeService: mockService,
		metrics:                newTestMetrics(),
	}

	reqBody, err := json.Marshal(&entity.DescribeEntityAttributesRequest{
		EntityType: "clothing_item",
		EntityID:   1,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/describe-entity-attributes", bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/describe-entity-attributes", ginx.Adapt5(entityAttributeAPI.DescribeEntityAttributes))
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp entity.DescribeEntityAttributesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Links, 1)
	assert.True(t, resp.Links[0].IsPrimary)
	require.NotNil(t, resp.Links[0].Attribute)
	assert.Equal(t, "红色", resp.Links[0].Attribute.DisplayName)
	mockService.AssertExpectations(t)
}
