package identity

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gitidentity/internal/lookup"
	"github.com/temirov/gitidentity/internal/ui"
	"github.com/temirov/gitidentity/internal/utils"
)

const (
	applyCommandUseConstant              = "apply"
	applyCommandShortConstant            = "Apply the matching lookup identity to the current repository"
	applyCommandLongConstant             = "apply resolves the current user and working tree root, finds the first lookup entry whose directory prefix begins the root, and writes its email (and, when enabled, the directory as user.name) into the repository's local git configuration."
	applyCommandExampleConstant          = "gitidentity apply --lookup ~/.config/gitidentity/lookup.json --set-name"
	emailUpdatedTemplateConstant         = "Git config user.email updated to %s"
	nameUpdatedTemplateConstant          = "Git config user.name updated to %s"
	emailDryRunTemplateConstant          = "Would update git config user.email to %s"
	nameDryRunTemplateConstant           = "Would update git config user.name to %s"
	noMatchMessageConstant               = "Directory doesnt match any known entries. Leaving git config email as default"
	applyCompletedLogMessageConstant     = "identity run completed"
	logFieldMatchedConstant              = "matched"
	logFieldEmailAppliedConstant         = "email_applied"
	logFieldNameAppliedConstant          = "name_applied"
	logFieldDryRunConstant               = "dry_run"
	logFieldBackendConstant              = "backend"
	logFieldConfiguredLookupPathConstant = "configured_lookup_path"
)

// LoggerProvider yields a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the apply command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConsoleLoggerProvider LoggerProvider
	ColorOutputProvider   func() bool
	ConfigurationProvider func() CommandConfiguration
	Executor              CommandExecutor
	Loader                *lookup.Loader
}

// Build constructs the apply command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     applyCommandUseConstant,
		Short:   applyCommandShortConstant,
		Long:    applyCommandLongConstant,
		Example: applyCommandExampleConstant,
		Args:    cobra.NoArgs,
		RunE:    builder.Run,
	}
	return command, nil
}

// Run executes the identity pipeline; it also serves as the root command action.
func (builder *CommandBuilder) Run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()
	logger := builder.resolveLogger()

	service, serviceError := builder.buildService(configuration, logger)
	if serviceError != nil {
		return serviceError
	}

	lookupPath := configuration.LookupPath
	accessor := utils.NewCommandContextAccessor()
	if contextLookupPath, exists := accessor.LookupFilePath(command.Context()); exists && len(strings.TrimSpace(contextLookupPath)) > 0 {
		lookupPath = contextLookupPath
	}

	outcome, applyError := service.Apply(command.Context(), Options{
		LookupPath: lookupPath,
		HomeRoot:   configuration.HomeRoot,
		SetName:    configuration.SetName,
		DryRun:     configuration.DryRun,
	})
	if applyError != nil {
		return applyError
	}

	logger.Debug(
		applyCompletedLogMessageConstant,
		zap.Bool(logFieldMatchedConstant, outcome.Matched),
		zap.Bool(logFieldEmailAppliedConstant, outcome.EmailApplied),
		zap.Bool(logFieldNameAppliedConstant, outcome.NameApplied),
		zap.Bool(logFieldDryRunConstant, outcome.DryRun),
		zap.String(logFieldBackendConstant, string(configuration.Backend)),
		zap.String(logFieldConfiguredLookupPathConstant, lookupPath),
	)

	builder.report(ui.NewStatusReporter(command.OutOrStdout(), builder.colorEnabled()), outcome, configuration.SetName)
	return nil
}

func (builder *CommandBuilder) report(reporter *ui.StatusReporter, outcome Outcome, setName bool) {
	if !outcome.Matched {
		reporter.Notice(noMatchMessageConstant)
		return
	}
	if outcome.DryRun {
		reporter.Notice(fmt.Sprintf(emailDryRunTemplateConstant, outcome.Entry.Email))
		if setName {
			reporter.Notice(fmt.Sprintf(nameDryRunTemplateConstant, outcome.Entry.Directory))
		}
		return
	}
	if outcome.EmailApplied {
		reporter.Success(fmt.Sprintf(emailUpdatedTemplateConstant, outcome.Entry.Email))
	}
	if outcome.NameApplied {
		reporter.Success(fmt.Sprintf(nameUpdatedTemplateConstant, outcome.Entry.Directory))
	}
}

func (builder *CommandBuilder) buildService(configuration CommandConfiguration, logger *zap.Logger) (*Service, error) {
	executor, executorError := ResolveCommandExecutor(builder.Executor, logger, builder.resolveConsoleLogger())
	if executorError != nil {
		return nil, executorError
	}

	backends, backendsError := ResolveBackends(configuration.Backend, executor, logger)
	if backendsError != nil {
		return nil, backendsError
	}

	return NewService(ServiceDependencies{
		UserNameResolver: backends.Shell,
		WorkspaceLocator: backends.WorkspaceLocator,
		ConfigApplier:    backends.ConfigApplier,
		TableLoader:      ResolveTableLoader(builder.Loader),
		Logger:           logger,
	})
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) colorEnabled() bool {
	if builder.ColorOutputProvider == nil {
		return false
	}
	return builder.ColorOutputProvider()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	return resolveLoggerFrom(builder.LoggerProvider)
}

func (builder *CommandBuilder) resolveConsoleLogger() *zap.Logger {
	return resolveLoggerFrom(builder.ConsoleLoggerProvider)
}

func resolveLoggerFrom(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
