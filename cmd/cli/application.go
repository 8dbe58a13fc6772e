package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/gitidentity/internal/identity"
	"github.com/temirov/gitidentity/internal/lookup"
	"github.com/temirov/gitidentity/internal/utils"
	flagutils "github.com/temirov/gitidentity/internal/utils/flags"
	pathutils "github.com/temirov/gitidentity/internal/utils/path"
)

const (
	applicationNameConstant                        = "gitidentity"
	applicationShortDescriptionConstant            = "Apply a per-directory commit identity to the current git repository"
	applicationLongDescriptionConstant             = "gitidentity resolves the current user and working tree root, looks up the first entry whose directory prefix under the user's home begins that root, and writes its email (optionally the directory as user.name) into the repository's local git configuration."
	configFileFlagNameConstant                     = "config"
	configFileFlagUsageConstant                    = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                       = "log-level"
	logLevelFlagUsageConstant                      = "Override the configured log level."
	logFormatFlagNameConstant                      = "log-format"
	logFormatFlagUsageConstant                     = "Override the configured log format."
	noColorFlagNameConstant                        = "no-color"
	noColorFlagUsageConstant                       = "Disable colored status output."
	lookupFlagNameConstant                         = "lookup"
	lookupFlagUsageConstant                        = "Path to the lookup table (JSON, YAML, or TOML), relative to the current directory."
	setNameFlagNameConstant                        = "set-name"
	setNameFlagUsageConstant                       = "Also set user.name to the matched entry directory."
	homeRootFlagNameConstant                       = "home-root"
	homeRootFlagUsageConstant                      = "Directory containing per-user home directories."
	backendFlagNameConstant                        = "backend"
	backendFlagUsageConstant                       = "Git access backend."
	dryRunFlagNameConstant                         = "dry-run"
	dryRunFlagUsageConstant                        = "Report the matching identity without changing git configuration."
	commonConfigurationKeyConstant                 = "common"
	commonLogLevelConfigKeyConstant                = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant               = commonConfigurationKeyConstant + ".log_format"
	commonNoColorConfigKeyConstant                 = commonConfigurationKeyConstant + ".no_color"
	identityConfigurationKeyConstant               = "identity"
	environmentPrefixConstant                      = "GITIDENTITY"
	configurationSearchPathEnvironmentNameConstant = environmentPrefixConstant + "_CONFIG_SEARCH_PATH"
	configurationNameConstant                      = "config"
	configurationTypeConstant                      = "yaml"
	configurationInitializedMessageConstant        = "configuration initialized"
	configurationLogLevelFieldConstant             = "log_level"
	configurationLogFormatFieldConstant            = "log_format"
	configurationFileFieldConstant                 = "config_file"
	configurationLookupPathFieldConstant           = "lookup_path"
	configurationBackendFieldConstant              = "backend"
	configurationLoadErrorTemplateConstant         = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant            = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant                = "unable to flush logger: %w"
	lookupPathErrorTemplateConstant                = "unable to resolve lookup path: %w"
	loggerNotInitializedMessageConstant            = "logger not initialized"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common   ApplicationCommonConfiguration `mapstructure:"common"`
	Identity identity.CommandConfiguration  `mapstructure:"identity"`
}

// ApplicationCommonConfiguration stores logging and output configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	NoColor   bool   `mapstructure:"no_color"`
}

// ApplicationDependencies overrides collaborators that otherwise default to the operating system.
type ApplicationDependencies struct {
	CommandExecutor          identity.CommandExecutor
	WorkingDirectoryProvider pathutils.WorkingDirectoryProvider
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand            *cobra.Command
	configurationLoader    *utils.ConfigurationLoader
	loggerFactory          *utils.LoggerFactory
	logger                 *zap.Logger
	consoleLogger          *zap.Logger
	configuration          ApplicationConfiguration
	configurationMetadata  utils.LoadedConfiguration
	lookupLoader           *lookup.Loader
	configurationFilePath  string
	logLevelFlagValue      string
	logFormatFlagValue     string
	noColorFlagValue       bool
	lookupFlagValue        string
	setNameFlagValue       bool
	homeRootFlagValue      string
	backendFlagValue       string
	dryRunFlagValue        bool
	commandContextAccessor utils.CommandContextAccessor
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	return NewApplicationWithDependencies(ApplicationDependencies{})
}

// NewApplicationWithDependencies assembles the CLI with the provided collaborators.
func NewApplicationWithDependencies(dependencies ApplicationDependencies) *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		resolveConfigurationSearchPaths(),
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader:    configurationLoader,
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		consoleLogger:          zap.NewNop(),
		lookupLoader:           lookup.NewLoader(lookup.LoaderDependencies{WorkingDirectoryProvider: dependencies.WorkingDirectoryProvider}),
		commandContextAccessor: utils.NewCommandContextAccessor(),
	}

	applyBuilder := identity.CommandBuilder{
		LoggerProvider:        application.diagnosticLogger,
		ConsoleLoggerProvider: application.humanReadableLogger,
		ColorOutputProvider:   application.colorOutputEnabled,
		ConfigurationProvider: application.identityConfiguration,
		Executor:              dependencies.CommandExecutor,
		Loader:                application.lookupLoader,
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			if application.logger == nil {
				return errors.New(loggerNotInitializedMessageConstant)
			}
			return applyBuilder.Run(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	persistentFlags := cobraCommand.PersistentFlags()
	persistentFlags.StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	persistentFlags.StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	flagutils.AddChoiceFlag(persistentFlags, &application.logFormatFlagValue, logFormatFlagNameConstant, string(utils.LogFormatStructured), utils.SupportedLogFormats(), logFormatFlagUsageConstant)
	persistentFlags.BoolVar(&application.noColorFlagValue, noColorFlagNameConstant, false, noColorFlagUsageConstant)
	persistentFlags.StringVar(&application.lookupFlagValue, lookupFlagNameConstant, "", lookupFlagUsageConstant)
	persistentFlags.BoolVar(&application.setNameFlagValue, setNameFlagNameConstant, false, setNameFlagUsageConstant)
	persistentFlags.StringVar(&application.homeRootFlagValue, homeRootFlagNameConstant, "", homeRootFlagUsageConstant)
	flagutils.AddChoiceFlag(persistentFlags, &application.backendFlagValue, backendFlagNameConstant, string(identity.BackendCLI), identity.SupportedBackends(), backendFlagUsageConstant)
	persistentFlags.BoolVar(&application.dryRunFlagValue, dryRunFlagNameConstant, false, dryRunFlagUsageConstant)

	applyCommand, applyBuildError := applyBuilder.Build()
	if applyBuildError == nil {
		cobraCommand.AddCommand(applyCommand)
	}

	lookupBuilder := lookup.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		LookupPathProvider: func() string {
			return application.configuration.Identity.LookupPath
		},
		Loader: application.lookupLoader,
	}
	lookupCommand, lookupBuildError := lookupBuilder.Build()
	if lookupBuildError == nil {
		cobraCommand.AddCommand(lookupCommand)
	}

	doctorBuilder := identity.DoctorCommandBuilder{
		LoggerProvider:        application.diagnosticLogger,
		ConsoleLoggerProvider: application.humanReadableLogger,
		ColorOutputProvider:   application.colorOutputEnabled,
		ConfigurationProvider: application.identityConfiguration,
		Executor:              dependencies.CommandExecutor,
		Loader:                application.lookupLoader,
	}
	doctorCommand, doctorBuildError := doctorBuilder.Build()
	if doctorBuildError == nil {
		cobraCommand.AddCommand(doctorCommand)
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// ExecuteWithArguments runs the command hierarchy with explicit arguments.
func (application *Application) ExecuteWithArguments(arguments []string) error {
	application.rootCommand.SetArgs(arguments)
	return application.Execute()
}

// RootCommand exposes the Cobra root command for output redirection.
func (application *Application) RootCommand() *cobra.Command {
	return application.rootCommand
}

// Configuration returns the configuration resolved by the last initialization.
func (application *Application) Configuration() ApplicationConfiguration {
	return application.configuration
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatStructured),
		commonNoColorConfigKeyConstant:   false,
	}
	for configurationKey, configurationValue := range identity.DefaultConfigurationValues(identityConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration
	application.applyFlagOverrides(command)
	application.configuration.Identity = application.configuration.Identity.Sanitize()

	loggerOutputs, loggerCreationError := application.loggerFactory.CreateLoggerOutputs(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = loggerOutputs.DiagnosticLogger
	application.consoleLogger = loggerOutputs.ConsoleLogger

	lookupPath, lookupPathError := application.lookupLoader.ResolvePath(application.configuration.Identity.LookupPath)
	if lookupPathError != nil {
		return fmt.Errorf(lookupPathErrorTemplateConstant, lookupPathError)
	}

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
		zap.String(configurationLookupPathFieldConstant, lookupPath),
		zap.String(configurationBackendFieldConstant, string(application.configuration.Identity.Backend)),
	)

	if command != nil {
		updatedContext := application.commandContextAccessor.WithConfigurationFilePath(
			command.Context(),
			application.configurationMetadata.ConfigFileUsed,
		)
		updatedContext = application.commandContextAccessor.WithLookupFilePath(updatedContext, lookupPath)
		command.SetContext(updatedContext)
		if rootCommand := command.Root(); rootCommand != nil {
			rootCommand.SetContext(updatedContext)
		}
	}

	return nil
}

func (application *Application) applyFlagOverrides(command *cobra.Command) {
	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}
	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}
	if application.persistentFlagChanged(command, noColorFlagNameConstant) {
		application.configuration.Common.NoColor = application.noColorFlagValue
	}
	if application.persistentFlagChanged(command, lookupFlagNameConstant) {
		application.configuration.Identity.LookupPath = application.lookupFlagValue
	}
	if application.persistentFlagChanged(command, setNameFlagNameConstant) {
		application.configuration.Identity.SetName = application.setNameFlagValue
	}
	if application.persistentFlagChanged(command, homeRootFlagNameConstant) {
		application.configuration.Identity.HomeRoot = application.homeRootFlagValue
	}
	if application.persistentFlagChanged(command, backendFlagNameConstant) {
		application.configuration.Identity.Backend = identity.Backend(application.backendFlagValue)
	}
	if application.persistentFlagChanged(command, dryRunFlagNameConstant) {
		application.configuration.Identity.DryRun = application.dryRunFlagValue
	}
}

func (application *Application) identityConfiguration() identity.CommandConfiguration {
	return application.configuration.Identity
}

func (application *Application) diagnosticLogger() *zap.Logger {
	return application.logger
}

func (application *Application) humanReadableLogger() *zap.Logger {
	return application.consoleLogger
}

func (application *Application) colorOutputEnabled() bool {
	return !application.configuration.Common.NoColor
}

func (application *Application) flushLogger() error {
	if syncError := application.syncLoggerInstance(application.logger); syncError != nil {
		return syncError
	}
	return application.syncLoggerInstance(application.consoleLogger)
}

func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}

func resolveConfigurationSearchPaths() []string {
	if overridePath := strings.TrimSpace(os.Getenv(configurationSearchPathEnvironmentNameConstant)); len(overridePath) > 0 {
		return []string{overridePath}
	}
	return utils.DefaultSearchPaths(applicationNameConstant)
}
