package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitidentity/internal/identity"
)

func TestApplicationFlagOverridesTakePriority(testInstance *testing.T) {
	testInstance.Setenv(configurationSearchPathEnvironmentNameConstant, testInstance.TempDir())

	application := NewApplicationWithDependencies(ApplicationDependencies{
		WorkingDirectoryProvider: func() (string, error) { return "/srv/identities", nil },
	})
	rootCommand := application.rootCommand
	rootCommand.SetContext(context.Background())

	persistentFlags := rootCommand.PersistentFlags()
	require.NoError(testInstance, persistentFlags.Set(lookupFlagNameConstant, "team.toml"))
	require.NoError(testInstance, persistentFlags.Set(setNameFlagNameConstant, "true"))
	require.NoError(testInstance, persistentFlags.Set(homeRootFlagNameConstant, "/Users"))
	require.NoError(testInstance, persistentFlags.Set(backendFlagNameConstant, "go-git"))
	require.NoError(testInstance, persistentFlags.Set(dryRunFlagNameConstant, "true"))
	require.NoError(testInstance, persistentFlags.Set(logLevelFlagNameConstant, "error"))

	require.NoError(testInstance, application.initializeConfiguration(rootCommand))

	require.Equal(testInstance, identity.CommandConfiguration{
		LookupPath: "team.toml",
		HomeRoot:   "/Users",
		SetName:    true,
		Backend:    identity.BackendGoGit,
		DryRun:     true,
	}, application.configuration.Identity)
	require.Equal(testInstance, "error", application.configuration.Common.LogLevel)

	lookupPath, lookupPathAvailable := application.commandContextAccessor.LookupFilePath(rootCommand.Context())
	require.True(testInstance, lookupPathAvailable)
	require.Equal(testInstance, "/srv/identities/team.toml", lookupPath)
}

func TestApplicationDefaultsWithoutFlags(testInstance *testing.T) {
	testInstance.Setenv(configurationSearchPathEnvironmentNameConstant, testInstance.TempDir())

	application := NewApplication()
	rootCommand := application.rootCommand
	rootCommand.SetContext(context.Background())

	require.NoError(testInstance, application.initializeConfiguration(rootCommand))
	require.Equal(testInstance, identity.DefaultCommandConfiguration(), application.configuration.Identity)
	require.True(testInstance, application.colorOutputEnabled())
	require.False(testInstance, application.persistentFlagChanged(rootCommand, setNameFlagNameConstant))
}

func TestApplicationRejectsUnknownLogLevel(testInstance *testing.T) {
	testInstance.Setenv(configurationSearchPathEnvironmentNameConstant, testInstance.TempDir())

	application := NewApplication()
	rootCommand := application.rootCommand
	rootCommand.SetContext(context.Background())
	require.NoError(testInstance, rootCommand.PersistentFlags().Set(logLevelFlagNameConstant, "verbose"))

	require.ErrorContains(testInstance, application.initializeConfiguration(rootCommand), "unsupported log level")
}
