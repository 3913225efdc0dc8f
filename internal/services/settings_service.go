package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gym_backend/internal/metrics"
	"gym_backend/internal/models"
	"gym_backend/internal/repositories"
	"gym_backend/pkg/utils"
)

// --- Custom Service Errors for Settings ---
var (
	ErrPermissionDenied      = errors.New("permission denied")
	ErrCategoryRequired      = errors.New("category is required")
	ErrUnsupportedCategory   = errors.New("connection test not supported for this category")
	ErrInvalidSensitiveValue = errors.New("sensitive fields must be strings")
)

// FieldCipher encrypts and decrypts single configuration values.
// *utils.SecretCipher satisfies it.
type FieldCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// SettingsService resolves per-tenant configuration and accepts role-gated writes.
// Reads never fail: anything that cannot be resolved comes back as the category default.
type SettingsService interface {
	GetAll(ctx context.Context, role, gymID, branchID string) map[models.SettingCategory]*models.EffectiveConfig
	GetByCategory(ctx context.Context, category models.SettingCategory, role, gymID, branchID string) *models.EffectiveConfig
	Update(ctx context.Context, category models.SettingCategory, config models.Config, role, gymID, branchID string) (*models.UpdateResult, error)
	UpdateItems(ctx context.Context, category models.SettingCategory, items []models.SettingItem, role, gymID, branchID string) (*models.UpdateResult, error)
	Test(ctx context.Context, category models.SettingCategory, config models.Config) (*models.UpdateResult, error)
}

type settingsService struct {
	repo    repositories.SettingsRepository
	cipher  FieldCipher
	metrics *metrics.Collector
}

// NewSettingsService creates a new instance of SettingsService. m may be nil.
func NewSettingsService(repo repositories.SettingsRepository, cipher FieldCipher, m *metrics.Collector) SettingsService {
	return &settingsService{
		repo:    repo,
		cipher:  cipher,
		metrics: m,
	}
}

// GetAll resolves every known category for the caller.
func (s *settingsService) GetAll(ctx context.Context, role, gymID, branchID string) map[models.SettingCategory]*models.EffectiveConfig {
	all := make(map[models.SettingCategory]*models.EffectiveConfig, len(models.KnownCategories()))
	for _, category := range models.KnownCategories() {
		all[category] = s.GetByCategory(ctx, category, role, gymID, branchID)
	}
	return all
}

// GetByCategory resolves branch > gym > global > default for the caller.
// Store failures are logged and served as the category default.
func (s *settingsService) GetByCategory(ctx context.Context, category models.SettingCategory, role, gymID, branchID string) *models.EffectiveConfig {
	gymID, branchID = normalizeScope(gymID, branchID)
	resolved, err := s.resolve(ctx, category, role, gymID, branchID)
	if err != nil {
		return s.fallback(category)
	}
	return resolved.config
}

// resolution is a resolved config plus the sensitive fields that are still ciphertext.
type resolution struct {
	config      *models.EffectiveConfig
	undecrypted map[string]string
}

// resolve walks the scope chain and returns store errors instead of defaults.
//
// super_admin always reads the global record. An admin with a gym reads the
// gym record, else global. Any other caller carrying both a branch and a gym
// reads branch, then gym, then global. Everyone else reads global.
func (s *settingsService) resolve(ctx context.Context, category models.SettingCategory, role, gymID, branchID string) (*resolution, error) {
	if role == models.RoleSuperAdmin {
		gymID, branchID = "", ""
	}

	switch {
	case role == models.RoleAdmin && gymID != "":
		record, err := s.repo.FindOne(ctx, category, &gymID, nil)
		if found, err := s.checkLookup(err, category, "find_gym", gymID, ""); err != nil {
			return nil, err
		} else if found {
			return s.effective(record, models.SourceGym), nil
		}

	case branchID != "" && gymID != "":
		record, err := s.repo.FindByBranch(ctx, category, branchID, gymID)
		if found, err := s.checkLookup(err, category, "find_branch", gymID, branchID); err != nil {
			return nil, err
		} else if found {
			return s.effective(record, models.SourceBranch), nil
		}

		record, err = s.repo.FindOne(ctx, category, &gymID, nil)
		if found, err := s.checkLookup(err, category, "find_gym", gymID, branchID); err != nil {
			return nil, err
		} else if found {
			return s.effective(record, models.SourceGym), nil
		}
	}

	record, err := s.repo.FindOne(ctx, category, nil, nil)
	found, err := s.checkLookup(err, category, "find_global", "", "")
	if err != nil {
		return nil, err
	}
	if !found {
		return &resolution{config: s.fallback(category)}, nil
	}
	return s.effective(record, models.SourceGlobal), nil
}

// checkLookup classifies a store result. ErrNotFound is a miss; any other
// error is logged, counted and returned.
func (s *settingsService) checkLookup(err error, category models.SettingCategory, operation, gymID, branchID string) (bool, error) {
	if err == nil {
		return true, nil
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return false, nil
	}
	s.metrics.RecordStoreError(operation)
	utils.LogWarn(err, "Settings lookup failed", map[string]interface{}{
		"category":  category,
		"operation": operation,
		"gym_id":    gymID,
		"branch_id": branchID,
	})
	return false, err
}

func (s *settingsService) fallback(category models.SettingCategory) *models.EffectiveConfig {
	s.metrics.RecordResolution(categoryLabel(category), string(models.SourceDefault))
	return &models.EffectiveConfig{
		Category: category,
		Config:   models.DefaultConfigFor(category),
		IsActive: false,
		Source:   models.SourceDefault,
	}
}

func (s *settingsService) effective(record *models.SettingRecord, source models.ConfigSource) *resolution {
	s.metrics.RecordResolution(categoryLabel(record.Category), string(source))
	createdAt, updatedAt := record.CreatedAt, record.UpdatedAt
	cfg, undecrypted := s.decryptSensitive(record.Category, record.Config)
	return &resolution{
		config: &models.EffectiveConfig{
			ID:          record.ID,
			Category:    record.Category,
			GymScope:    record.GymScope,
			BranchScope: record.BranchScope,
			Config:      cfg,
			IsActive:    record.IsActive,
			Source:      source,
			CreatedAt:   &createdAt,
			UpdatedAt:   &updatedAt,
		},
		undecrypted: undecrypted,
	}
}

// decryptSensitive returns a copy of cfg with sensitive values decrypted.
// Only values containing ':' are attempted; failures leave the stored value in
// place and are reported in the second result.
func (s *settingsService) decryptSensitive(category models.SettingCategory, cfg models.Config) (models.Config, map[string]string) {
	out := cfg.Clone()
	var undecrypted map[string]string
	for field, raw := range cfg {
		if !models.IsSensitiveField(field) {
			continue
		}
		value, ok := raw.(string)
		if !ok || value == "" || !utils.LooksEncrypted(value) {
			continue
		}
		plain, err := s.cipher.Decrypt(value)
		if err != nil {
			s.metrics.RecordDecryptFailure(categoryLabel(category))
			utils.LogWarn(err, "Failed to decrypt settings field", map[string]interface{}{
				"category": category,
				"field":    field,
			})
			if undecrypted == nil {
				undecrypted = make(map[string]string)
			}
			undecrypted[field] = value
			continue
		}
		out[field] = plain
	}
	return out, undecrypted
}

// categoryLabel keeps metric label cardinality bounded to the registered categories.
func categoryLabel(category models.SettingCategory) string {
	if models.IsKnownCategory(category) {
		return string(category)
	}
	return "other"
}

// normalizeScope trims scope ids so blank ids mean no scope everywhere.
func normalizeScope(gymID, branchID string) (string, string) {
	return strings.TrimSpace(gymID), strings.TrimSpace(branchID)
}

// authorizeWrite enforces who may write which scope. It runs before any store access.
func authorizeWrite(role, gymID, branchID string) error {
	switch role {
	case models.RoleSuperAdmin:
		if gymID != "" || branchID != "" {
			return fmt.Errorf("%w: super admin can only modify global settings", ErrPermissionDenied)
		}
	case models.RoleAdmin:
		if gymID == "" {
			return fmt.Errorf("%w: admin must belong to a gym", ErrPermissionDenied)
		}
		if branchID != "" {
			return fmt.Errorf("%w: admin can only modify gym-level settings", ErrPermissionDenied)
		}
	default:
		return fmt.Errorf("%w: only admin and super admin can modify settings", ErrPermissionDenied)
	}
	return nil
}

// Update validates the caller, encrypts sensitive fields and upserts the record
// for the caller's own scope.
func (s *settingsService) Update(ctx context.Context, category models.SettingCategory, config models.Config, role, gymID, branchID string) (*models.UpdateResult, error) {
	if strings.TrimSpace(string(category)) == "" {
		return nil, ErrCategoryRequired
	}
	gymID, branchID = normalizeScope(gymID, branchID)
	if err := authorizeWrite(role, gymID, branchID); err != nil {
		s.metrics.RecordWrite(categoryLabel(category), "denied")
		return nil, err
	}
	return s.save(ctx, category, config, role, gymID, nil)
}

// UpdateItems merges dashboard key/value pairs onto the caller's current
// effective config and saves the result. A failed read aborts the write.
func (s *settingsService) UpdateItems(ctx context.Context, category models.SettingCategory, items []models.SettingItem, role, gymID, branchID string) (*models.UpdateResult, error) {
	if strings.TrimSpace(string(category)) == "" {
		return nil, ErrCategoryRequired
	}
	gymID, branchID = normalizeScope(gymID, branchID)
	if err := authorizeWrite(role, gymID, branchID); err != nil {
		s.metrics.RecordWrite(categoryLabel(category), "denied")
		return nil, err
	}

	current, err := s.resolve(ctx, category, role, gymID, branchID)
	if err != nil {
		s.metrics.RecordWrite(categoryLabel(category), "error")
		return nil, fmt.Errorf("failed to load current %s settings: %w", category, err)
	}
	merged := TransformFrontendToDatabase(category, items, current.config.Config)

	// Values that could not be decrypted are written back as stored.
	keep := make(map[string]string, len(current.undecrypted))
	for field, stored := range current.undecrypted {
		if v, ok := merged[field].(string); ok && v == stored {
			keep[field] = stored
		}
	}
	return s.save(ctx, category, merged, role, gymID, keep)
}

// save encrypts and upserts config for an already authorized caller.
// Fields in keep hold ciphertext that is persisted without re-encryption.
func (s *settingsService) save(ctx context.Context, category models.SettingCategory, config models.Config, role, gymID string, keep map[string]string) (*models.UpdateResult, error) {
	var targetGym *string
	if role == models.RoleAdmin {
		targetGym = &gymID
	}

	stored, err := s.encryptSensitive(config, keep)
	if err != nil {
		s.metrics.RecordWrite(categoryLabel(category), "error")
		return nil, err
	}

	isActive := true
	if v, ok := config["is_active"].(bool); ok {
		isActive = v
	}

	saved, err := s.repo.Upsert(ctx, &models.SettingRecord{
		Category: category,
		GymScope: targetGym,
		Config:   stored,
		IsActive: isActive,
	})
	if err != nil {
		s.metrics.RecordWrite(categoryLabel(category), "error")
		return nil, fmt.Errorf("failed to save %s settings: %w", category, err)
	}

	s.metrics.RecordWrite(categoryLabel(category), "ok")
	utils.LogInfo("Settings updated", map[string]interface{}{
		"category":  category,
		"record_id": saved.ID,
		"gym_id":    utils.StringValue(targetGym),
		"is_active": saved.IsActive,
	})
	return &models.UpdateResult{Success: true, Message: fmt.Sprintf("%s settings updated successfully", category)}, nil
}

func (s *settingsService) encryptSensitive(config models.Config, keep map[string]string) (models.Config, error) {
	out := config.Clone()
	for field, raw := range config {
		if !models.IsSensitiveField(field) || raw == nil {
			continue
		}
		value, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrInvalidSensitiveValue, field)
		}
		if value == "" {
			continue
		}
		if stored, ok := keep[field]; ok && stored == value {
			continue
		}
		encrypted, err := s.cipher.Encrypt(value)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt %s: %w", field, err)
		}
		out[field] = encrypted
	}
	return out, nil
}

// Test checks provider credentials before they are saved. Provider calls are
// not wired yet, so supported categories report success without contacting anyone.
func (s *settingsService) Test(ctx context.Context, category models.SettingCategory, config models.Config) (*models.UpdateResult, error) {
	switch category {
	case models.CategoryEmail:
		return &models.UpdateResult{Success: true, Message: "Email configuration test successful"}, nil
	case models.CategorySMS:
		return &models.UpdateResult{Success: true, Message: "SMS configuration test successful"}, nil
	case models.CategoryWhatsApp:
		return &models.UpdateResult{Success: true, Message: "WhatsApp configuration test successful"}, nil
	case "":
		return nil, ErrCategoryRequired
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCategory, category)
	}
}
