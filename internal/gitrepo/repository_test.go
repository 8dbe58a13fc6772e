package gitrepo_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/gitidentity/internal/gitrepo"
)

const (
	testEmailConstant = "a@co.com"
	testNameConstant  = "work"
)

func TestGoGitRepositoryLocateWorkspaceRoot(testInstance *testing.T) {
	repositoryRoot := testInstance.TempDir()
	_, initError := git.PlainInit(repositoryRoot, false)
	require.NoError(testInstance, initError)

	nestedDirectory := filepath.Join(repositoryRoot, "cmd", "api")
	require.NoError(testInstance, os.MkdirAll(nestedDirectory, 0o755))

	testCases := []struct {
		name             string
		workingDirectory string
	}{
		{name: "RepositoryRoot", workingDirectory: repositoryRoot},
		{name: "NestedDirectory", workingDirectory: nestedDirectory},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observerCore, observedLogs := observer.New(zapcore.DebugLevel)
			repository := gitrepo.NewGoGitRepository(zap.New(observerCore))

			workspaceRoot, locateError := repository.LocateWorkspaceRoot(context.Background(), testCase.workingDirectory)
			require.NoError(testInstance, locateError)
			require.Equal(testInstance, repositoryRoot, workspaceRoot)
			require.Equal(testInstance, 1, observedLogs.Len())
		})
	}
}

func TestGoGitRepositoryLocateWorkspaceRootOutsideRepository(testInstance *testing.T) {
	repository := gitrepo.NewGoGitRepository(nil)
	_, locateError := repository.LocateWorkspaceRoot(context.Background(), testInstance.TempDir())
	require.ErrorIs(testInstance, locateError, git.ErrRepositoryNotExists)
}

func TestGoGitRepositorySetLocal(testInstance *testing.T) {
	repositoryRoot := testInstance.TempDir()
	_, initError := git.PlainInit(repositoryRoot, false)
	require.NoError(testInstance, initError)

	repository := gitrepo.NewGoGitRepository(zap.NewNop())
	require.NoError(testInstance, repository.SetLocal(context.Background(), repositoryRoot, "user.email", "old@co.com"))
	require.NoError(testInstance, repository.SetLocal(context.Background(), repositoryRoot, "user.email", testEmailConstant))
	require.NoError(testInstance, repository.SetLocal(context.Background(), repositoryRoot, "user.name", testNameConstant))
	require.NoError(testInstance, repository.SetLocal(context.Background(), repositoryRoot, "includeIf.gitdir:~/work/.path", "~/.gitconfig-work"))

	reopened, openError := git.PlainOpen(repositoryRoot)
	require.NoError(testInstance, openError)
	configuration, configurationError := reopened.Config()
	require.NoError(testInstance, configurationError)

	require.Equal(testInstance, testEmailConstant, configuration.User.Email)
	require.Equal(testInstance, testNameConstant, configuration.User.Name)
	require.Equal(testInstance, testEmailConstant, configuration.Raw.Section("user").Option("email"))
	require.Equal(testInstance, "~/.gitconfig-work", configuration.Raw.Section("includeIf").Subsection("gitdir:~/work/").Option("path"))
}

func TestGoGitRepositorySetLocalRejectsInvalidKeys(testInstance *testing.T) {
	repository := gitrepo.NewGoGitRepository(zap.NewNop())
	for _, invalidKey := range []string{"", "email", ".email", "user."} {
		setError := repository.SetLocal(context.Background(), testInstance.TempDir(), invalidKey, testEmailConstant)
		require.ErrorIs(testInstance, setError, gitrepo.ErrInvalidConfigurationKey, invalidKey)
	}
}

func TestGoGitRepositoryHonorsCancelledContext(testInstance *testing.T) {
	cancelledContext, cancel := context.WithCancel(context.Background())
	cancel()

	repository := gitrepo.NewGoGitRepository(zap.NewNop())
	_, locateError := repository.LocateWorkspaceRoot(cancelledContext, testInstance.TempDir())
	require.ErrorIs(testInstance, locateError, context.Canceled)
	require.ErrorIs(testInstance, repository.SetLocal(cancelledContext, testInstance.TempDir(), "user.email", testEmailConstant), context.Canceled)
}
