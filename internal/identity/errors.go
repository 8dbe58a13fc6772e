package identity

import (
	"errors"
	"fmt"
)

// Step names a stage of the apply pipeline.
type Step string

// Pipeline steps in execution order.
const (
	StepResolveUser     Step = "resolve_user"
	StepLocateWorkspace Step = "locate_workspace"
	StepLoadLookup      Step = "load_lookup"
	StepApplyEmail      Step = "apply_email"
	StepApplyName       Step = "apply_name"
)

const (
	userNameUnavailableMessageConstant       = "unable to determine current user"
	workspaceRootUnavailableMessageConstant  = "unable to determine working tree root"
	configurationUpdateFailedMessageConstant = "unable to update git configuration"
	gitUnavailableMessageConstant            = "git is not available"
	userNameResolverMissingMessageConstant   = "user name resolver not configured"
	workspaceLocatorMissingMessageConstant   = "workspace locator not configured"
	configApplierMissingMessageConstant      = "configuration applier not configured"
	tableLoaderMissingMessageConstant        = "lookup loader not configured"
	commandExecutorMissingMessageConstant    = "command executor not configured"
	stepErrorTemplateConstant                = "%s: %v"
	unexpectedStandardErrorTemplateConstant  = "%w: unexpected output on standard error: %s"
	emptyOutputTemplateConstant              = "%w: command produced no output"
	commandFailureTemplateConstant           = "%w: %w"
)

// ErrUserNameUnavailable indicates whoami failed or produced no usable output.
var ErrUserNameUnavailable = errors.New(userNameUnavailableMessageConstant)

// ErrWorkspaceRootUnavailable indicates the working tree root could not be determined.
var ErrWorkspaceRootUnavailable = errors.New(workspaceRootUnavailableMessageConstant)

// ErrGitUnavailable indicates git --version could not be run.
var ErrGitUnavailable = errors.New(gitUnavailableMessageConstant)

// ErrConfigurationUpdateFailed indicates git rejected a configuration write.
var ErrConfigurationUpdateFailed = errors.New(configurationUpdateFailedMessageConstant)

// StepError reports the pipeline step at which an apply run stopped.
type StepError struct {
	Step Step
	Err  error
}

// Error describes the failed step.
func (stepError StepError) Error() string {
	return fmt.Sprintf(stepErrorTemplateConstant, stepError.Step, stepError.Err)
}

// Unwrap exposes the underlying failure.
func (stepError StepError) Unwrap() error {
	return stepError.Err
}

// ErrUserNameResolverNotConfigured indicates the service was built without a user name resolver.
var ErrUserNameResolverNotConfigured = errors.New(userNameResolverMissingMessageConstant)

// ErrWorkspaceLocatorNotConfigured indicates the service was built without a workspace locator.
var ErrWorkspaceLocatorNotConfigured = errors.New(workspaceLocatorMissingMessageConstant)

// ErrConfigApplierNotConfigured indicates the service was built without a configuration applier.
var ErrConfigApplierNotConfigured = errors.New(configApplierMissingMessageConstant)

// ErrTableLoaderNotConfigured indicates the service was built without a lookup loader.
var ErrTableLoaderNotConfigured = errors.New(tableLoaderMissingMessageConstant)

// ErrCommandExecutorNotConfigured indicates a shell-backed component was built without an executor.
var ErrCommandExecutorNotConfigured = errors.New(commandExecutorMissingMessageConstant)
