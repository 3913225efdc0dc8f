package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gym_backend/internal/models"

	"github.com/google/uuid"
)

// SettingsRepository persists settings records keyed by (category, gym scope, branch scope).
type SettingsRepository interface {
	// FindOne matches the triple exactly; nil scopes match NULL columns.
	FindOne(ctx context.Context, category models.SettingCategory, gymScope, branchScope *string) (*models.SettingRecord, error)
	// FindByBranch returns the branch record for branchID that belongs to gymID or to no gym.
	FindByBranch(ctx context.Context, category models.SettingCategory, branchID, gymID string) (*models.SettingRecord, error)
	// Upsert inserts the record or, when the triple already exists, replaces its config and active flag.
	Upsert(ctx context.Context, record *models.SettingRecord) (*models.SettingRecord, error)
}

type settingsRepository struct {
	db SQLExecutor
}

// NewSettingsRepository creates a Postgres-backed SettingsRepository.
func NewSettingsRepository(db SQLExecutor) SettingsRepository {
	return &settingsRepository{db: db}
}

const settingColumns = `id, category, gym_scope, branch_scope, config, is_active, created_at, updated_at`

func (r *settingsRepository) FindOne(ctx context.Context, category models.SettingCategory, gymScope, branchScope *string) (*models.SettingRecord, error) {
	query := `SELECT ` + settingColumns + ` FROM settings
	          WHERE category = $1
	            AND gym_scope IS NOT DISTINCT FROM $2::text
	            AND branch_scope IS NOT DISTINCT FROM $3::text
	          LIMIT 1`

	record, err := scanSetting(r.db.QueryRowContext(ctx, query, string(category), gymScope, branchScope))
	if err != nil {
		return nil, wrapDBError(err, fmt.Sprintf("finding %s setting", category))
	}
	return record, nil
}

func (r *settingsRepository) FindByBranch(ctx context.Context, category models.SettingCategory, branchID, gymID string) (*models.SettingRecord, error) {
	// A record tied to the caller's gym is preferred over an unowned one.
	query := `SELECT ` + settingColumns + ` FROM settings
	          WHERE category = $1
	            AND branch_scope = $2
	            AND (gym_scope = $3 OR gym_scope IS NULL)
	          ORDER BY gym_scope NULLS LAST
	          LIMIT 1`

	record, err := scanSetting(r.db.QueryRowContext(ctx, query, string(category), branchID, gymID))
	if err != nil {
		return nil, wrapDBError(err, fmt.Sprintf("finding %s branch setting", category))
	}
	return record, nil
}

func (r *settingsRepository) Upsert(ctx context.Context, record *models.SettingRecord) (*models.SettingRecord, error) {
	configJSON, err := json.Marshal(record.Config)
	if err != nil {
		return nil, fmt.Errorf("encoding %s config: %w", record.Category, err)
	}

	id := record.ID
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now().UTC()

	// The unique constraint treats NULL scopes as equal, so concurrent writers
	// for the same triple converge on one row.
	query := `INSERT INTO settings (id, category, gym_scope, branch_scope, config, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
	          ON CONFLICT (category, gym_scope, branch_scope)
	          DO UPDATE SET config = EXCLUDED.config, is_active = EXCLUDED.is_active, updated_at = EXCLUDED.updated_at
	          RETURNING ` + settingColumns

	saved, err := scanSetting(r.db.QueryRowContext(ctx, query,
		id, string(record.Category), record.GymScope, record.BranchScope, configJSON, record.IsActive, now))
	if err != nil {
		return nil, wrapDBError(err, fmt.Sprintf("upserting %s setting", record.Category))
	}
	return saved, nil
}

func scanSetting(row scanner) (*models.SettingRecord, error) {
	var (
		record     models.SettingRecord
		category   string
		configJSON []byte
	)
	if err := row.Scan(&record.ID, &category, &record.GymScope, &record.BranchScope,
		&configJSON, &record.IsActive, &record.CreatedAt, &record.UpdatedAt); err != nil {
		return nil, err
	}
	record.Category = models.SettingCategory(category)

	record.Config = models.Config{}
	if len(configJSON) > 0 {
		if err := json.Unmarshal(configJSON, &record.Config); err != nil {
			return nil, fmt.Errorf("decoding %s config: %w", category, err)
		}
	}
	return &record, nil
}
