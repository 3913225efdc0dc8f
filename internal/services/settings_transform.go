package services

import (
	"sort"

	"gym_backend/internal/models"
)

// TransformDatabaseToFrontend flattens a config object into the {category, key, value}
// pairs the dashboard edits. Keys are sorted so the output is stable.
func TransformDatabaseToFrontend(cfg *models.EffectiveConfig) []models.SettingItem {
	if cfg == nil {
		return []models.SettingItem{}
	}
	keys := make([]string, 0, len(cfg.Config))
	for k := range cfg.Config {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	items := make([]models.SettingItem, 0, len(keys))
	for _, k := range keys {
		items = append(items, models.SettingItem{Category: cfg.Category, Key: k, Value: cfg.Config[k]})
	}
	return items
}

// TransformFrontendToDatabase folds pairs back into a config object on top of
// existing. Keys absent from items keep their existing values; pairs tagged
// with another category are ignored, untagged pairs are accepted.
func TransformFrontendToDatabase(category models.SettingCategory, items []models.SettingItem, existing models.Config) models.Config {
	out := existing.Clone()
	for _, item := range items {
		if item.Key == "" {
			continue
		}
		if item.Category != "" && item.Category != category {
			continue
		}
		out[item.Key] = item.Value
	}
	return out
}
