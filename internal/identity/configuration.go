package identity

import (
	"fmt"
	"strings"

	"github.com/temirov/gitidentity/internal/lookup"
	flagutils "github.com/temirov/gitidentity/internal/utils/flags"
)

// Backend selects how the working tree is located and configured.
type Backend string

// Supported backends.
const (
	BackendCLI   Backend = "cli"
	BackendGoGit Backend = "go-git"
)

const (
	lookupPathConfigKeySuffixConstant  = ".lookup_path"
	homeRootConfigKeySuffixConstant    = ".home_root"
	setNameConfigKeySuffixConstant     = ".set_name"
	backendConfigKeySuffixConstant     = ".backend"
	dryRunConfigKeySuffixConstant      = ".dry_run"
	unsupportedBackendTemplateConstant = "unsupported backend: %w"
)

// SupportedBackends lists the accepted backend names in display order.
func SupportedBackends() []string {
	return []string{string(BackendCLI), string(BackendGoGit)}
}

// UnmarshalText parses a backend name case-insensitively.
func (backend *Backend) UnmarshalText(text []byte) error {
	if len(strings.TrimSpace(string(text))) == 0 {
		*backend = BackendCLI
		return nil
	}
	parsedBackend, parseError := flagutils.ParseChoice(string(text), SupportedBackends())
	if parseError != nil {
		return fmt.Errorf(unsupportedBackendTemplateConstant, parseError)
	}
	*backend = Backend(parsedBackend)
	return nil
}

// CommandConfiguration captures the identity settings shared by apply and doctor.
type CommandConfiguration struct {
	LookupPath string  `mapstructure:"lookup_path"`
	HomeRoot   string  `mapstructure:"home_root"`
	SetName    bool    `mapstructure:"set_name"`
	Backend    Backend `mapstructure:"backend"`
	DryRun     bool    `mapstructure:"dry_run"`
}

// DefaultCommandConfiguration provides baseline identity settings.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		LookupPath: lookup.DefaultLookupPath,
		HomeRoot:   lookup.DefaultHomeRoot,
		SetName:    false,
		Backend:    BackendCLI,
		DryRun:     false,
	}
}

// DefaultConfigurationValues returns the defaults keyed beneath configurationKey for the configuration loader.
func DefaultConfigurationValues(configurationKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		configurationKey + lookupPathConfigKeySuffixConstant: defaults.LookupPath,
		configurationKey + homeRootConfigKeySuffixConstant:   defaults.HomeRoot,
		configurationKey + setNameConfigKeySuffixConstant:    defaults.SetName,
		configurationKey + backendConfigKeySuffixConstant:    string(defaults.Backend),
		configurationKey + dryRunConfigKeySuffixConstant:     defaults.DryRun,
	}
}

// Sanitize trims values and fills empty ones from the defaults.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := configuration

	sanitized.LookupPath = strings.TrimSpace(configuration.LookupPath)
	if len(sanitized.LookupPath) == 0 {
		sanitized.LookupPath = defaults.LookupPath
	}

	sanitized.HomeRoot = strings.TrimSpace(configuration.HomeRoot)
	if len(sanitized.HomeRoot) == 0 {
		sanitized.HomeRoot = defaults.HomeRoot
	}

	if len(strings.TrimSpace(string(configuration.Backend))) == 0 {
		sanitized.Backend = defaults.Backend
	}

	return sanitized
}
