package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/temirov/gitidentity/internal/execshell"
)

const (
	gitRevParseSubcommandConstant     = "rev-parse"
	gitShowTopLevelFlagConstant       = "--show-toplevel"
	gitConfigSubcommandConstant       = "config"
	gitLocalScopeFlagConstant         = "--local"
	gitVersionFlagConstant            = "--version"
	lineFeedConstant                  = "\n"
	carriageReturnConstant            = "\r"
	gitTerminalPromptVariableConstant = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptDisabledConstant = "0"
)

// CommandExecutor runs the external commands the shell backend depends on.
type CommandExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteWhoAmI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// UserNameResolver reports the name of the invoking system user.
type UserNameResolver interface {
	ResolveUserName(executionContext context.Context) (string, error)
}

// WorkspaceLocator reports the root of the working tree containing workingDirectory.
type WorkspaceLocator interface {
	LocateWorkspaceRoot(executionContext context.Context, workingDirectory string) (string, error)
}

// ConfigApplier writes a key into the local configuration of the repository at workspaceRoot.
type ConfigApplier interface {
	SetLocal(executionContext context.Context, workspaceRoot string, key string, value string) error
}

// ShellBackend implements the pipeline steps by running whoami and git.
type ShellBackend struct {
	executor CommandExecutor
}

// NewShellBackend constructs a ShellBackend around executor.
func NewShellBackend(executor CommandExecutor) (*ShellBackend, error) {
	if executor == nil {
		return nil, ErrCommandExecutorNotConfigured
	}
	return &ShellBackend{executor: executor}, nil
}

// ResolveUserName runs whoami.
func (backend *ShellBackend) ResolveUserName(executionContext context.Context) (string, error) {
	result, executionError := backend.executor.ExecuteWhoAmI(executionContext, execshell.CommandDetails{})
	return firstLineOfOutput(result, executionError, ErrUserNameUnavailable)
}

// LocateWorkspaceRoot runs git rev-parse --show-toplevel from workingDirectory.
func (backend *ShellBackend) LocateWorkspaceRoot(executionContext context.Context, workingDirectory string) (string, error) {
	result, executionError := backend.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            []string{gitRevParseSubcommandConstant, gitShowTopLevelFlagConstant},
		WorkingDirectory:     strings.TrimSpace(workingDirectory),
		EnvironmentVariables: gitEnvironment(),
	})
	return firstLineOfOutput(result, executionError, ErrWorkspaceRootUnavailable)
}

// SetLocal runs git config --local key value inside workspaceRoot.
func (backend *ShellBackend) SetLocal(executionContext context.Context, workspaceRoot string, key string, value string) error {
	result, executionError := backend.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            []string{gitConfigSubcommandConstant, gitLocalScopeFlagConstant, key, value},
		WorkingDirectory:     workspaceRoot,
		EnvironmentVariables: gitEnvironment(),
	})
	if executionError != nil {
		return fmt.Errorf(commandFailureTemplateConstant, ErrConfigurationUpdateFailed, executionError)
	}
	if standardError := strings.TrimSpace(result.StandardError); len(standardError) > 0 {
		return fmt.Errorf(unexpectedStandardErrorTemplateConstant, ErrConfigurationUpdateFailed, standardError)
	}
	return nil
}

// GitVersion runs git --version and returns its first line.
func (backend *ShellBackend) GitVersion(executionContext context.Context) (string, error) {
	result, executionError := backend.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments: []string{gitVersionFlagConstant},
	})
	return firstLineOfOutput(result, executionError, ErrGitUnavailable)
}

// firstLineOfOutput keeps standard output up to the first line feed and rejects runs that wrote to standard error.
func firstLineOfOutput(result execshell.ExecutionResult, executionError error, sentinel error) (string, error) {
	if executionError != nil {
		return "", fmt.Errorf(commandFailureTemplateConstant, sentinel, executionError)
	}
	if standardError := strings.TrimSpace(result.StandardError); len(standardError) > 0 {
		return "", fmt.Errorf(unexpectedStandardErrorTemplateConstant, sentinel, standardError)
	}
	firstLine, _, _ := strings.Cut(result.StandardOutput, lineFeedConstant)
	firstLine = strings.TrimSuffix(firstLine, carriageReturnConstant)
	if len(firstLine) == 0 {
		return "", fmt.Errorf(emptyOutputTemplateConstant, sentinel)
	}
	return firstLine, nil
}

func gitEnvironment() map[string]string {
	return map[string]string{gitTerminalPromptVariableConstant: gitTerminalPromptDisabledConstant}
}
