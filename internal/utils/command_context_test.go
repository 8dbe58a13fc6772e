package utils_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitidentity/internal/utils"
)

func TestCommandContextAccessorRoundTripsValues(testInstance *testing.T) {
	accessor := utils.NewCommandContextAccessor()

	executionContext := accessor.WithConfigurationFilePath(context.Background(), "/etc/gitidentity/config.yaml")
	executionContext = accessor.WithLookupFilePath(executionContext, "/home/alice/githydra/lookup.json")

	configurationFilePath, configurationAvailable := accessor.ConfigurationFilePath(executionContext)
	require.True(testInstance, configurationAvailable)
	require.Equal(testInstance, "/etc/gitidentity/config.yaml", configurationFilePath)

	lookupFilePath, lookupAvailable := accessor.LookupFilePath(executionContext)
	require.True(testInstance, lookupAvailable)
	require.Equal(testInstance, "/home/alice/githydra/lookup.json", lookupFilePath)
}

func TestCommandContextAccessorHandlesMissingValues(testInstance *testing.T) {
	accessor := utils.NewCommandContextAccessor()

	_, configurationAvailable := accessor.ConfigurationFilePath(context.Background())
	require.False(testInstance, configurationAvailable)

	_, lookupAvailable := accessor.LookupFilePath(nil)
	require.False(testInstance, lookupAvailable)

	derivedContext := accessor.WithLookupFilePath(nil, "lookup.json")
	lookupFilePath, lookupAvailable := accessor.LookupFilePath(derivedContext)
	require.True(testInstance, lookupAvailable)
	require.Equal(testInstance, "lookup.json", lookupFilePath)
}
