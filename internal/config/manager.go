package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/nsilverman/compete/internal/i18n"
	"github.com/nsilverman/compete/internal/models"
	"github.com/nsilverman/compete/internal/validator"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Defaults for a freshly created configuration
const (
	DefaultLocale        = "en"
	DefaultSweepSchedule = "@every 1m"
	DefaultLogLevel      = "info"
)

// Manager manages application configuration
type Manager struct {
	configPath string
	config     *models.Config
	mu         sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configPath string) (*Manager, error) {
	// Ensure the config directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	return &Manager{configPath: configPath}, nil
}

// Load loads the configuration from disk
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return err
	}

	var config models.Config
	if err := json.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := m.validate(&config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	m.config = &config
	return nil
}

// Save saves the configuration to disk
func (m *Manager) Save() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saveInternal()
}

// saveInternal saves without locking (must be called with lock held)
func (m *Manager) saveInternal() error {
	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}

	// Write atomically by writing to a temp file and renaming
	tempPath := m.configPath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}

	if err := os.Rename(tempPath, m.configPath); err != nil {
		if removeErr := os.Remove(tempPath); removeErr != nil {
			log.Warnf("Failed to remove temp file: %v", removeErr)
		}
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	return nil
}

// CreateDefault creates and saves a default configuration
func (m *Manager) CreateDefault() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.config = &models.Config{
		Version: "1.0",
		Settings: models.Settings{
			DefaultLocale: DefaultLocale,
			SweepSchedule: DefaultSweepSchedule,
			LogLevel:      DefaultLogLevel,
		},
		Messages: map[string]map[string]string{},
	}

	return m.saveInternal()
}

// Get returns a copy of the current configuration
func (m *Manager) Get() *models.Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	configCopy := *m.config
	configCopy.Messages = m.messagesCopy()
	return &configCopy
}

// GetSettings returns the current settings
func (m *Manager) GetSettings() models.Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.Settings
}

// GetMessages returns a copy of the message overrides
func (m *Manager) GetMessages() map[string]map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.messagesCopy()
}

func (m *Manager) messagesCopy() map[string]map[string]string {
	out := make(map[string]map[string]string, len(m.config.Messages))
	for locale, messages := range m.config.Messages {
		inner := make(map[string]string, len(messages))
		for k, v := range messages {
			inner[k] = v
		}
		out[locale] = inner
	}
	return out
}

// UpdateSettings validates and saves new settings
func (m *Manager) UpdateSettings(settings models.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := validateSettings(settings); err != nil {
		return err
	}

	m.config.Settings = settings
	return m.saveInternal()
}

// validate validates the configuration
func (m *Manager) validate(config *models.Config) error {
	if config.Version == "" {
		return fmt.Errorf("version is required")
	}

	if err := validateSettings(config.Settings); err != nil {
		return err
	}

	// Message overrides must target a supported locale
	if _, err := i18n.NewCatalog(config.Settings.DefaultLocale, config.Messages); err != nil {
		return err
	}

	return nil
}

func validateSettings(settings models.Settings) error {
	if err := validator.Struct(&settings); err != nil {
		return err
	}

	if _, err := cron.ParseStandard(settings.SweepSchedule); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", settings.SweepSchedule, err)
	}

	supported := false
	for _, locale := range i18n.SupportedLocales() {
		if locale == settings.DefaultLocale {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("unsupported default locale: %s", settings.DefaultLocale)
	}

	return nil
}
