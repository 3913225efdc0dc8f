package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gym_backend/internal/middleware"
	"gym_backend/internal/models"
	"gym_backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeSettingsService struct {
	updated     models.Config
	updateItems []models.SettingItem
	updateErr   error
	lastRole    string
	lastGym     string
	lastBranch  string
}

func (f *fakeSettingsService) GetAll(ctx context.Context, role, gymID, branchID string) map[models.SettingCategory]*models.EffectiveConfig {
	out := map[models.SettingCategory]*models.EffectiveConfig{}
	for _, c := range models.KnownCategories() {
		out[c] = f.GetByCategory(ctx, c, role, gymID, branchID)
	}
	return out
}

func (f *fakeSettingsService) GetByCategory(_ context.Context, category models.SettingCategory, role, gymID, branchID string) *models.EffectiveConfig {
	f.lastRole, f.lastGym, f.lastBranch = role, gymID, branchID
	return &models.EffectiveConfig{
		Category: category,
		Config:   models.DefaultConfigFor(category),
		IsActive: true,
		Source:   models.SourceDefault,
	}
}

func (f *fakeSettingsService) Update(_ context.Context, _ models.SettingCategory, config models.Config, role, gymID, branchID string) (*models.UpdateResult, error) {
	f.lastRole, f.lastGym, f.lastBranch = role, gymID, branchID
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updated = config
	return &models.UpdateResult{Success: true, Message: "Settings updated successfully"}, nil
}

func (f *fakeSettingsService) UpdateItems(_ context.Context, _ models.SettingCategory, items []models.SettingItem, role, gymID, branchID string) (*models.UpdateResult, error) {
	f.lastRole, f.lastGym, f.lastBranch = role, gymID, branchID
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updateItems = items
	return &models.UpdateResult{Success: true, Message: "Settings updated successfully"}, nil
}

func (f *fakeSettingsService) Test(ctx context.Context, category models.SettingCategory, config models.Config) (*models.UpdateResult, error) {
	return services.NewSettingsService(nil, nil, nil).Test(ctx, category, config)
}

func newSettingsEngine(svc services.SettingsService, session models.Session) *gin.Engine {
	r := gin.New()
	h := NewSettingsHandler(svc)
	g := r.Group("/settings", func(c *gin.Context) {
		c.Set(middleware.ContextUserID, session.UserID)
		c.Set(middleware.ContextUserRole, session.Role)
		c.Set(middleware.ContextGymID, session.GymID)
		c.Set(middleware.ContextBranchID, session.BranchID)
		c.Next()
	})
	g.GET("", h.GetSettings)
	g.GET("/:category", h.GetSettingByCategory)
	g.GET("/:category/items", h.GetSettingItems)
	g.POST("/:category", h.UpdateSettings)
	g.POST("/:category/test", h.TestSettings)
	return r
}

func serve(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetSettings_PassesSessionScope(t *testing.T) {
	svc := &fakeSettingsService{}
	r := newSettingsEngine(svc, models.Session{UserID: 3, Role: models.RoleStaff, GymID: "G1", BranchID: "B1"})

	w := serve(r, http.MethodGet, "/settings", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"email"`)
	assert.Equal(t, models.RoleStaff, svc.lastRole)
	assert.Equal(t, "G1", svc.lastGym)
	assert.Equal(t, "B1", svc.lastBranch)
}

func TestGetSettingByCategory_RestrictedForStaff(t *testing.T) {
	staff := newSettingsEngine(&fakeSettingsService{}, models.Session{Role: models.RoleStaff, GymID: "G1"})
	assert.Equal(t, http.StatusForbidden, serve(staff, http.MethodGet, "/settings/security", "").Code)
	assert.Equal(t, http.StatusForbidden, serve(staff, http.MethodGet, "/settings/security/items", "").Code)
	assert.Equal(t, http.StatusOK, serve(staff, http.MethodGet, "/settings/email", "").Code)

	admin := newSettingsEngine(&fakeSettingsService{}, models.Session{Role: models.RoleAdmin, GymID: "G1"})
	w := serve(admin, http.MethodGet, "/settings/security", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"source":"default"`)
}

func TestGetSettingItems(t *testing.T) {
	r := newSettingsEngine(&fakeSettingsService{}, models.Session{Role: models.RoleAdmin, GymID: "G1"})

	w := serve(r, http.MethodGet, "/settings/ai/items", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `{"category":"ai","key":"model","value":"gpt-4"}`)
}

func TestUpdateSettings(t *testing.T) {
	t.Run("config body", func(t *testing.T) {
		svc := &fakeSettingsService{}
		r := newSettingsEngine(svc, models.Session{Role: models.RoleAdmin, GymID: "G1"})

		w := serve(r, http.MethodPost, "/settings/email", `{"config":{"host":"smtp.example.com"}}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true,"message":"Settings updated successfully"}`, w.Body.String())
		assert.Equal(t, "smtp.example.com", svc.updated["host"])
	})

	t.Run("items body", func(t *testing.T) {
		svc := &fakeSettingsService{}
		r := newSettingsEngine(svc, models.Session{Role: models.RoleAdmin, GymID: "G1"})

		w := serve(r, http.MethodPost, "/settings/email", `{"items":[{"category":"email","key":"port","value":465}]}`)
		require.Equal(t, http.StatusOK, w.Code)
		require.Len(t, svc.updateItems, 1)
		assert.Equal(t, "port", svc.updateItems[0].Key)
	})

	t.Run("neither or both", func(t *testing.T) {
		r := newSettingsEngine(&fakeSettingsService{}, models.Session{Role: models.RoleAdmin, GymID: "G1"})
		assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodPost, "/settings/email", `{}`).Code)
		assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodPost, "/settings/email", `{"config":{},"items":[]}`).Code)
		assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodPost, "/settings/email", `not json`).Code)
	})

	t.Run("service errors", func(t *testing.T) {
		cases := map[error]int{
			services.ErrPermissionDenied:      http.StatusForbidden,
			services.ErrInvalidSensitiveValue: http.StatusBadRequest,
			errors.New("db down"):             http.StatusInternalServerError,
		}
		for svcErr, status := range cases {
			r := newSettingsEngine(&fakeSettingsService{updateErr: svcErr}, models.Session{Role: models.RoleStaff})
			w := serve(r, http.MethodPost, "/settings/sms", `{"config":{"provider":"twilio"}}`)
			assert.Equal(t, status, w.Code, svcErr.Error())
		}
	})
}

func TestTestSettings(t *testing.T) {
	r := newSettingsEngine(&fakeSettingsService{}, models.Session{Role: models.RoleAdmin, GymID: "G1"})

	w := serve(r, http.MethodPost, "/settings/sms/test", `{"config":{"provider":"twilio"}}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"SMS configuration test successful"}`, w.Body.String())

	w = serve(r, http.MethodPost, "/settings/whatsapp/test", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = serve(r, http.MethodPost, "/settings/ai/test", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
