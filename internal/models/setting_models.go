package models

import (
	"time"
)

// SettingCategory names a group of related configuration stored as one record per scope.
type SettingCategory string

const (
	CategoryPaymentGateways SettingCategory = "payment-gateways"
	CategorySMS             SettingCategory = "sms"
	CategoryEmail           SettingCategory = "email"
	CategoryWhatsApp        SettingCategory = "whatsapp"
	CategoryAI              SettingCategory = "ai"
)

// KnownCategories returns the registered categories in display order.
func KnownCategories() []SettingCategory {
	return []SettingCategory{
		CategoryPaymentGateways,
		CategorySMS,
		CategoryEmail,
		CategoryWhatsApp,
		CategoryAI,
	}
}

// IsKnownCategory reports whether c has a default table entry.
func IsKnownCategory(c SettingCategory) bool {
	_, ok := defaultConfigs[c]
	return ok
}

// restrictedCategories may only be viewed by admin and super_admin callers.
var restrictedCategories = map[SettingCategory]bool{
	"security": true,
	"api":      true,
	"system":   true,
}

// IsRestrictedCategory reports whether reading c requires an administrative role.
func IsRestrictedCategory(c SettingCategory) bool {
	return restrictedCategories[c]
}

// Config is the JSON object stored per setting record. Keys vary per category.
type Config map[string]interface{}

// Clone returns a shallow copy of the config.
func (c Config) Clone() Config {
	out := make(Config, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Sensitive configuration keys are encrypted at rest.
const (
	FieldAPIKey        = "api_key"
	FieldAPISecret     = "api_secret"
	FieldWebhookSecret = "webhook_secret"
	FieldMerchantKey   = "merchant_key"
	FieldPassword      = "password"
)

// SensitiveFields lists the config keys whose values are encrypted before persisting.
func SensitiveFields() []string {
	return []string{FieldAPIKey, FieldAPISecret, FieldWebhookSecret, FieldMerchantKey, FieldPassword}
}

// IsSensitiveField reports whether key holds a secret.
func IsSensitiveField(key string) bool {
	for _, f := range SensitiveFields() {
		if f == key {
			return true
		}
	}
	return false
}

// defaultConfigs is read-only; DefaultConfigFor hands out copies.
var defaultConfigs = map[SettingCategory]Config{
	CategoryPaymentGateways: {
		"provider":     "razorpay",
		"is_test_mode": true,
		"api_key":      "",
		"api_secret":   "",
	},
	CategorySMS: {
		"provider":  "twilio",
		"sender_id": "",
		"api_key":   "",
	},
	CategoryEmail: {
		"provider":   "smtp",
		"host":       "",
		"port":       587,
		"username":   "",
		"password":   "",
		"from_email": "",
		"from_name":  "",
	},
	CategoryWhatsApp: {
		"provider":    "twilio",
		"account_sid": "",
		"auth_token":  "",
		"from_number": "",
	},
	CategoryAI: {
		"provider": "openai",
		"api_key":  "",
		"model":    "gpt-4",
	},
}

// DefaultConfigFor returns a fresh copy of the hardcoded defaults for c.
// Unknown categories get an empty config.
func DefaultConfigFor(c SettingCategory) Config {
	if cfg, ok := defaultConfigs[c]; ok {
		return cfg.Clone()
	}
	return Config{}
}

// SettingRecord is a persisted settings row. A nil GymScope means global;
// a nil BranchScope means not branch specific.
type SettingRecord struct {
	ID          string          `json:"id" db:"id"`
	Category    SettingCategory `json:"category" db:"category"`
	GymScope    *string         `json:"gym_id" db:"gym_scope"`
	BranchScope *string         `json:"branch_id" db:"branch_scope"`
	Config      Config          `json:"config" db:"config"`
	IsActive    bool            `json:"is_active" db:"is_active"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// ConfigSource tells which level of the hierarchy produced an EffectiveConfig.
type ConfigSource string

const (
	SourceBranch  ConfigSource = "branch"
	SourceGym     ConfigSource = "gym"
	SourceGlobal  ConfigSource = "global"
	SourceDefault ConfigSource = "default"
)

// EffectiveConfig is the result of resolving scope precedence for one category.
// It is either a decrypted record or the default table entry.
type EffectiveConfig struct {
	ID          string          `json:"id,omitempty"`
	Category    SettingCategory `json:"category"`
	GymScope    *string         `json:"gym_id,omitempty"`
	BranchScope *string         `json:"branch_id,omitempty"`
	Config      Config          `json:"config"`
	IsActive    bool            `json:"is_active"`
	Source      ConfigSource    `json:"source"`
	CreatedAt   *time.Time      `json:"created_at,omitempty"`
	UpdatedAt   *time.Time      `json:"updated_at,omitempty"`
}

// SettingItem is the flattened {category, key, value} shape the dashboard edits.
type SettingItem struct {
	Category SettingCategory `json:"category"`
	Key      string          `json:"key" binding:"required"`
	Value    interface{}     `json:"value"`
}

// UpdateResult is returned by write and connectivity-test operations.
type UpdateResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Caller roles.
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleStaff      = "staff"
	RoleTrainer    = "trainer"
	RoleMember     = "member"
)
