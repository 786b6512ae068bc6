package repos

import (
	"strings"

	"github.com/twangodev/gemote/internal/reconcile"
	"github.com/twangodev/gemote/internal/ui"
)

const (
	configurationDryRunKeyConstant      = "dry_run"
	configurationRecursiveKeyConstant   = "recursive"
	configurationMaxDepthKeyConstant    = "max_depth"
	configurationConcurrencyKeyConstant = "concurrency"
	configurationOutputKeyConstant      = "output"
	configurationForceKeyConstant       = "force"
	configurationKeySeparatorConstant   = "."
)

// SyncConfiguration describes configuration values for the sync command.
type SyncConfiguration struct {
	DryRun      bool   `mapstructure:"dry_run"`
	Recursive   bool   `mapstructure:"recursive"`
	MaxDepth    int    `mapstructure:"max_depth"`
	Concurrency int    `mapstructure:"concurrency"`
	Output      string `mapstructure:"output"`
}

// SaveConfiguration describes configuration values for the save command.
type SaveConfiguration struct {
	Recursive bool `mapstructure:"recursive"`
	Force     bool `mapstructure:"force"`
}

// DefaultSyncConfiguration returns baseline values for the sync command.
func DefaultSyncConfiguration() SyncConfiguration {
	return SyncConfiguration{
		MaxDepth:    reconcile.DefaultMaxDepthConstant,
		Concurrency: reconcile.DefaultConcurrencyConstant,
		Output:      string(ui.OutputFormatText),
	}
}

// DefaultSaveConfiguration returns baseline values for the save command.
func DefaultSaveConfiguration() SaveConfiguration {
	return SaveConfiguration{}
}

// DefaultConfigurationValues produces Viper defaults for the sync and save sections.
func DefaultConfigurationValues(syncKey string, saveKey string) map[string]any {
	syncDefaults := DefaultSyncConfiguration()
	saveDefaults := DefaultSaveConfiguration()
	return map[string]any{
		configurationKey(syncKey, configurationDryRunKeyConstant):      syncDefaults.DryRun,
		configurationKey(syncKey, configurationRecursiveKeyConstant):   syncDefaults.Recursive,
		configurationKey(syncKey, configurationMaxDepthKeyConstant):    syncDefaults.MaxDepth,
		configurationKey(syncKey, configurationConcurrencyKeyConstant): syncDefaults.Concurrency,
		configurationKey(syncKey, configurationOutputKeyConstant):      syncDefaults.Output,
		configurationKey(saveKey, configurationRecursiveKeyConstant):   saveDefaults.Recursive,
		configurationKey(saveKey, configurationForceKeyConstant):       saveDefaults.Force,
	}
}

func (configuration SyncConfiguration) sanitize() SyncConfiguration {
	sanitized := configuration
	if sanitized.MaxDepth <= 0 {
		sanitized.MaxDepth = reconcile.DefaultMaxDepthConstant
	}
	if sanitized.Concurrency <= 0 {
		sanitized.Concurrency = reconcile.DefaultConcurrencyConstant
	}
	sanitized.Output = strings.TrimSpace(sanitized.Output)
	return sanitized
}

func configurationKey(sectionKey string, fieldKey string) string {
	if len(sectionKey) == 0 {
		return fieldKey
	}
	return sectionKey + configurationKeySeparatorConstant + fieldKey
}
