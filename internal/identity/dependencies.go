package identity

import (
	"go.uber.org/zap"

	"github.com/temirov/gitidentity/internal/execshell"
	"github.com/temirov/gitidentity/internal/gitrepo"
	"github.com/temirov/gitidentity/internal/lookup"
	"github.com/temirov/gitidentity/internal/ui"
)

// Backends bundles the step implementations selected for a run.
type Backends struct {
	Shell            *ShellBackend
	WorkspaceLocator WorkspaceLocator
	ConfigApplier    ConfigApplier
}

// ResolveCommandExecutor returns the provided executor or constructs a shell-backed default
// that mirrors command events to consoleLogger.
func ResolveCommandExecutor(existing CommandExecutor, logger *zap.Logger, consoleLogger *zap.Logger) (CommandExecutor, error) {
	if existing != nil {
		return existing, nil
	}

	commandRunner := execshell.NewOSCommandRunner()
	shellExecutor, creationError := execshell.NewShellExecutorWithObserver(logger, commandRunner, ui.NewConsoleCommandEventLogger(consoleLogger))
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

// ResolveBackends selects the workspace locator and configuration applier for backend.
// User name resolution always runs whoami through the shell backend.
func ResolveBackends(backend Backend, executor CommandExecutor, logger *zap.Logger) (Backends, error) {
	shellBackend, shellBackendError := NewShellBackend(executor)
	if shellBackendError != nil {
		return Backends{}, shellBackendError
	}

	switch backend {
	case BackendGoGit:
		repository := gitrepo.NewGoGitRepository(logger)
		return Backends{Shell: shellBackend, WorkspaceLocator: repository, ConfigApplier: repository}, nil
	default:
		return Backends{Shell: shellBackend, WorkspaceLocator: shellBackend, ConfigApplier: shellBackend}, nil
	}
}

// ResolveTableLoader returns the provided loader or a default filesystem loader.
func ResolveTableLoader(existing *lookup.Loader) *lookup.Loader {
	if existing != nil {
		return existing
	}
	return lookup.NewLoader(lookup.LoaderDependencies{})
}
