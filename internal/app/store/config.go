package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/samber/lo"
)

const (
	secretConfigKey = "dashscopeApiKey"
	maskedSecret    = "***"
	apiKeyEnvVar    = "DASHSCOPE_API_KEY"
)

// deniedConfigKeys are legacy/internal names stripped from every read and
// write regardless of what the client sends.
var deniedConfigKeys = []string{"aliyunApiKey", "openaiApiKey", "DOUYIN_API_KEY"}

// defaultConfig is the fixed skeleton a fresh config file starts from.
func defaultConfig() map[string]any {
	return map[string]any{
		"dashscopeApiKey": "",
		"maxHistoryItems": 100,
		"autoSaveHistory": true,
		"theme":           "light",
		"language":        "zh-CN",
	}
}

// ConfigStore persists application settings as a single JSON object file.
// The API key is write-only from the client's perspective: reads mask it,
// and writing the mask back preserves the stored value.
type ConfigStore struct {
	mu       sync.Mutex
	filePath string
	getenv   func(string) string
}

// NewConfigStore creates a config store over filePath.
func NewConfigStore(filePath string) *ConfigStore {
	return &ConfigStore{
		filePath: filePath,
		getenv:   os.Getenv,
	}
}

// Get returns the stored config with internal keys stripped and the API key
// masked when one is configured.
func (s *ConfigStore) Get() (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	config, err := s.load()
	if err != nil {
		return nil, err
	}

	return maskSecret(stripDeniedKeys(config)), nil
}

// Update merges updates into the stored config. The masked placeholder is a
// no-op for the API key, and denied keys are dropped from both sides before
// the merge. Returns the new config, masked the same way Get masks it.
func (s *ConfigStore) Update(updates map[string]any) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load()
	if err != nil {
		return nil, err
	}
	current = stripDeniedKeys(current)

	updates = stripDeniedKeys(updates)
	if v, ok := updates[secretConfigKey]; ok && v == maskedSecret {
		delete(updates, secretConfigKey)
	}

	merged := lo.Assign(current, updates)
	if err := s.save(merged); err != nil {
		return nil, err
	}

	return maskSecret(merged), nil
}

// EffectiveAPIKey returns the configured STT API key, falling back to the
// DASHSCOPE_API_KEY environment variable when the config holds none.
func (s *ConfigStore) EffectiveAPIKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	config, err := s.load()
	if err == nil {
		if key, ok := config[secretConfigKey].(string); ok && key != "" {
			return key
		}
	}
	return s.getenv(apiKeyEnvVar)
}

func (s *ConfigStore) load() (map[string]any, error) {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var config map[string]any
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	// Fill in any defaults a hand-edited file lost.
	return lo.Assign(defaultConfig(), config), nil
}

func (s *ConfigStore) save(config map[string]any) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.filePath), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := os.WriteFile(s.filePath, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func stripDeniedKeys(config map[string]any) map[string]any {
	return lo.OmitByKeys(config, deniedConfigKeys)
}

func maskSecret(config map[string]any) map[string]any {
	if key, ok := config[secretConfigKey].(string); ok && key != "" {
		masked := lo.Assign(config)
		masked[secretConfigKey] = maskedSecret
		return masked
	}
	return config
}
