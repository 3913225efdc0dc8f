package handlers

import (
	"errors"
	"net/http"
	"strings"

	"gym_backend/internal/middleware"
	"gym_backend/internal/models"
	"gym_backend/internal/services"
	"gym_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// UpdateSettingsRequest carries either a whole config object or dashboard
// key/value pairs to merge onto the current config. Exactly one must be set.
type UpdateSettingsRequest struct {
	Config models.Config        `json:"config"`
	Items  []models.SettingItem `json:"items"`
}

// TestSettingsRequest carries the unsaved config to check.
type TestSettingsRequest struct {
	Config models.Config `json:"config"`
}

// SettingsHandler holds the settings service.
type SettingsHandler struct {
	settingsService services.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(ss services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: ss}
}

// GetSettings resolves every category for the caller's scope.
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	session := middleware.SessionFromContext(c)
	c.JSON(http.StatusOK, h.settingsService.GetAll(c.Request.Context(), session.Role, session.GymID, session.BranchID))
}

// GetSettingByCategory resolves one category for the caller's scope.
func (h *SettingsHandler) GetSettingByCategory(c *gin.Context) {
	category, ok := h.readableCategory(c)
	if !ok {
		return
	}
	session := middleware.SessionFromContext(c)
	c.JSON(http.StatusOK, h.settingsService.GetByCategory(c.Request.Context(), category, session.Role, session.GymID, session.BranchID))
}

// GetSettingItems returns the resolved category as {category, key, value} pairs.
func (h *SettingsHandler) GetSettingItems(c *gin.Context) {
	category, ok := h.readableCategory(c)
	if !ok {
		return
	}
	session := middleware.SessionFromContext(c)
	effective := h.settingsService.GetByCategory(c.Request.Context(), category, session.Role, session.GymID, session.BranchID)
	c.JSON(http.StatusOK, gin.H{
		"category":  category,
		"is_active": effective.IsActive,
		"source":    effective.Source,
		"items":     services.TransformDatabaseToFrontend(effective),
	})
}

// UpdateSettings saves the caller's scope-level config for a category.
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	category, ok := categoryParam(c)
	if !ok {
		return
	}

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateSettings: Failed to bind JSON")
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	if (req.Config == nil) == (req.Items == nil) {
		utils.RespondValidationFailed(c, "provide exactly one of config or items")
		return
	}

	session := middleware.SessionFromContext(c)
	var (
		result *models.UpdateResult
		err    error
	)
	if req.Items != nil {
		result, err = h.settingsService.UpdateItems(c.Request.Context(), category, req.Items, session.Role, session.GymID, session.BranchID)
	} else {
		result, err = h.settingsService.Update(c.Request.Context(), category, req.Config, session.Role, session.GymID, session.BranchID)
	}
	if err != nil {
		utils.LogError(err, "UpdateSettings: Error from settingsService")
		respondSettingsError(c, err, "Failed to update settings.")
		return
	}
	c.JSON(http.StatusOK, result)
}

// TestSettings checks provider credentials for a category without saving them.
func (h *SettingsHandler) TestSettings(c *gin.Context) {
	category, ok := categoryParam(c)
	if !ok {
		return
	}

	var req TestSettingsRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondValidationFailed(c, err.Error())
			return
		}
	}

	result, err := h.settingsService.Test(c.Request.Context(), category, req.Config)
	if err != nil {
		utils.LogError(err, "TestSettings: Error from settingsService.Test")
		respondSettingsError(c, err, "Failed to test settings.")
		return
	}
	c.JSON(http.StatusOK, result)
}

func categoryParam(c *gin.Context) (models.SettingCategory, bool) {
	category := strings.TrimSpace(c.Param("category"))
	if category == "" {
		utils.RespondValidationFailed(c, services.ErrCategoryRequired.Error())
		return "", false
	}
	return models.SettingCategory(category), true
}

// readableCategory additionally keeps restricted categories away from non-administrators.
func (h *SettingsHandler) readableCategory(c *gin.Context) (models.SettingCategory, bool) {
	category, ok := categoryParam(c)
	if !ok {
		return "", false
	}
	if models.IsRestrictedCategory(category) {
		role := middleware.SessionFromContext(c).Role
		if role != models.RoleAdmin && role != models.RoleSuperAdmin {
			utils.RespondForbidden(c, "Insufficient role to view "+string(category)+" settings")
			return "", false
		}
	}
	return category, true
}

func respondSettingsError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrPermissionDenied):
		utils.RespondForbidden(c, err.Error())
	case errors.Is(err, services.ErrCategoryRequired),
		errors.Is(err, services.ErrInvalidSensitiveValue),
		errors.Is(err, services.ErrUnsupportedCategory):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, err.Error(), ""))
	default:
		utils.RespondInternalError(c, fallback)
	}
}
