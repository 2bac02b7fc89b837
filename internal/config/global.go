package config

import "sync"

// Global configuration singleton, initialized on first use. The CLI
// replaces it when an explicit --config path is given.
var (
	globalConfig     *Config      //nolint:gochecknoglobals // singleton pattern for configuration
	globalConfigMu   sync.RWMutex //nolint:gochecknoglobals // protects globalConfig
	globalConfigInit bool         //nolint:gochecknoglobals // tracks if global config has been initialized
)

// InitGlobalConfig initializes the global configuration from the default
// path if it has not been initialized yet.
func InitGlobalConfig() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	if globalConfigInit {
		return
	}
	globalConfig = New()
	globalConfigInit = true
}

// SetGlobalConfig replaces the global configuration.
func SetGlobalConfig(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
	globalConfigInit = true
}

// GetGlobalConfig returns the global configuration, initializing it if
// needed.
func GetGlobalConfig() *Config {
	InitGlobalConfig()
	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ResetGlobalConfigForTest resets the global config for testing purposes.
func ResetGlobalConfigForTest() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigInit = false
}
