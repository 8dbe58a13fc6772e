package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gitidentity/internal/lookup"
	"github.com/temirov/gitidentity/internal/ui"
	"github.com/temirov/gitidentity/internal/utils"
)

const (
	doctorCommandUseConstant           = "doctor"
	doctorCommandShortConstant         = "Check that gitidentity can run in the current directory"
	doctorCommandLongConstant          = "doctor verifies that git and whoami run, that the current directory is inside a working tree, and that the lookup table parses. It prints one line per check and fails when any check fails."
	doctorChecksFailedMessageConstant  = "doctor checks failed"
	doctorChecksFailedTemplateConstant = "%w: %d of %d"
	doctorCheckGitConstant             = "git"
	doctorCheckUserConstant            = "user"
	doctorCheckWorkingTreeConstant     = "working tree"
	doctorCheckLookupConstant          = "lookup"
	doctorLookupDetailTemplateConstant = "%s (%d entries)"
	doctorCheckLogMessageConstant      = "doctor check finished"
	logFieldCheckNameConstant          = "check"
	logFieldCheckPassedConstant        = "passed"
)

// ErrDoctorChecksFailed indicates that at least one doctor check failed.
var ErrDoctorChecksFailed = errors.New(doctorChecksFailedMessageConstant)

// DoctorCheck is the outcome of a single diagnostic.
type DoctorCheck struct {
	Name   string
	Passed bool
	Detail string
}

// DoctorCommandBuilder assembles the doctor command.
type DoctorCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConsoleLoggerProvider LoggerProvider
	ColorOutputProvider   func() bool
	ConfigurationProvider func() CommandConfiguration
	Executor              CommandExecutor
	Loader                *lookup.Loader
}

// Build constructs the doctor command.
func (builder *DoctorCommandBuilder) Build() (*cobra.Command, error) {
	return &cobra.Command{
		Use:   doctorCommandUseConstant,
		Short: doctorCommandShortConstant,
		Long:  doctorCommandLongConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}, nil
}

func (builder *DoctorCommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := CommandConfiguration{}
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}
	configuration = configuration.Sanitize()
	logger := resolveLoggerFrom(builder.LoggerProvider)

	executor, executorError := ResolveCommandExecutor(builder.Executor, logger, resolveLoggerFrom(builder.ConsoleLoggerProvider))
	if executorError != nil {
		return executorError
	}
	backends, backendsError := ResolveBackends(configuration.Backend, executor, logger)
	if backendsError != nil {
		return backendsError
	}

	lookupPath := configuration.LookupPath
	accessor := utils.NewCommandContextAccessor()
	if contextLookupPath, exists := accessor.LookupFilePath(command.Context()); exists && len(strings.TrimSpace(contextLookupPath)) > 0 {
		lookupPath = contextLookupPath
	}

	checks := RunDoctorChecks(command.Context(), backends, ResolveTableLoader(builder.Loader), lookupPath)

	colorEnabled := builder.ColorOutputProvider != nil && builder.ColorOutputProvider()
	reporter := ui.NewStatusReporter(command.OutOrStdout(), colorEnabled)
	failedChecks := 0
	for _, check := range checks {
		logger.Debug(doctorCheckLogMessageConstant, zap.String(logFieldCheckNameConstant, check.Name), zap.Bool(logFieldCheckPassedConstant, check.Passed))
		reporter.Check(check.Name, check.Passed, check.Detail)
		if !check.Passed {
			failedChecks++
		}
	}

	if failedChecks > 0 {
		return fmt.Errorf(doctorChecksFailedTemplateConstant, ErrDoctorChecksFailed, failedChecks, len(checks))
	}
	return nil
}

// RunDoctorChecks runs every diagnostic and returns their outcomes in display order.
func RunDoctorChecks(executionContext context.Context, backends Backends, loader *lookup.Loader, lookupPath string) []DoctorCheck {
	checks := make([]DoctorCheck, 0, 4)

	gitVersion, gitVersionError := backends.Shell.GitVersion(executionContext)
	checks = append(checks, newDoctorCheck(doctorCheckGitConstant, gitVersion, gitVersionError))

	userName, userNameError := backends.Shell.ResolveUserName(executionContext)
	checks = append(checks, newDoctorCheck(doctorCheckUserConstant, userName, userNameError))

	workspaceRoot, workspaceRootError := backends.WorkspaceLocator.LocateWorkspaceRoot(executionContext, "")
	checks = append(checks, newDoctorCheck(doctorCheckWorkingTreeConstant, workspaceRoot, workspaceRootError))

	lookupDetail := ""
	table, loadError := loader.Load(lookupPath)
	if loadError == nil {
		resolvedPath, resolveError := loader.ResolvePath(lookupPath)
		if resolveError != nil {
			resolvedPath = lookupPath
		}
		lookupDetail = fmt.Sprintf(doctorLookupDetailTemplateConstant, resolvedPath, len(table))
	}
	checks = append(checks, newDoctorCheck(doctorCheckLookupConstant, lookupDetail, loadError))

	return checks
}

func newDoctorCheck(name string, detail string, checkError error) DoctorCheck {
	if checkError != nil {
		return DoctorCheck{Name: name, Passed: false, Detail: checkError.Error()}
	}
	return DoctorCheck{Name: name, Passed: true, Detail: detail}
}
