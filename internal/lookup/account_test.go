package lookup_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitidentity/internal/lookup"
	pathutils "github.com/temirov/gitidentity/internal/utils/path"
)

func newTestProvisioner(homeDirectory string) *lookup.AccountProvisioner {
	return lookup.NewAccountProvisioner(pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return homeDirectory, nil
	}))
}

func TestAccountProvisionerCreateAccountDirectory(testInstance *testing.T) {
	homeDirectory := testInstance.TempDir()
	provisioner := newTestProvisioner(homeDirectory)

	accountPath, createError := provisioner.CreateAccountDirectory(" work/clients ")
	require.NoError(testInstance, createError)
	require.Equal(testInstance, filepath.Join(homeDirectory, "work", "clients"), accountPath)
	require.DirExists(testInstance, accountPath)

	accountPathAgain, createAgainError := provisioner.CreateAccountDirectory("work/clients")
	require.NoError(testInstance, createAgainError)
	require.Equal(testInstance, accountPath, accountPathAgain)

	_, blankError := provisioner.CreateAccountDirectory("  ")
	require.ErrorIs(testInstance, blankError, lookup.ErrDirectoryRequired)
}

func TestAccountProvisionerAddSSHHost(testInstance *testing.T) {
	homeDirectory := testInstance.TempDir()
	provisioner := newTestProvisioner(homeDirectory)
	configPath := filepath.Join(homeDirectory, ".ssh", "config")
	writeTestFile(testInstance, configPath, "Host personal\n  HostName example.org\n")

	resolvedPath, addError := provisioner.AddSSHHost("~/.ssh/config", lookup.SSHHost{Alias: "github.com-work", IdentityFile: "~/.ssh/id_ed25519_work"})
	require.NoError(testInstance, addError)
	require.Equal(testInstance, configPath, resolvedPath)

	workBlock := "# ---- BEGIN GITIDENTITY github.com-work ----\n" +
		"Host github.com-work\n" +
		"  HostName github.com\n" +
		"  User git\n" +
		"  IdentityFile ~/.ssh/id_ed25519_work\n" +
		"  IdentitiesOnly yes\n" +
		"# ---- END GITIDENTITY github.com-work ----\n"
	contents, readError := os.ReadFile(configPath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, "Host personal\n  HostName example.org\n\n"+workBlock, string(contents))

	_, replaceError := provisioner.AddSSHHost(configPath, lookup.SSHHost{Alias: "github.com-work", IdentityFile: "~/.ssh/id_rsa_work"})
	require.NoError(testInstance, replaceError)
	replacedContents, readAgainError := os.ReadFile(configPath)
	require.NoError(testInstance, readAgainError)
	require.Equal(testInstance, 1, strings.Count(string(replacedContents), "Host github.com-work\n"))
	require.Contains(testInstance, string(replacedContents), "  IdentityFile ~/.ssh/id_rsa_work\n")
	require.Contains(testInstance, string(replacedContents), "Host personal\n")
}

func TestAccountProvisionerAddSSHHostCreatesConfigWithDefaults(testInstance *testing.T) {
	homeDirectory := testInstance.TempDir()
	provisioner := newTestProvisioner(homeDirectory)

	resolvedPath, addError := provisioner.AddSSHHost("", lookup.SSHHost{Alias: "oss"})
	require.NoError(testInstance, addError)
	require.Equal(testInstance, filepath.Join(homeDirectory, ".ssh", "config"), resolvedPath)

	contents, readError := os.ReadFile(resolvedPath)
	require.NoError(testInstance, readError)
	require.Contains(testInstance, string(contents), "Host oss\n  HostName github.com\n  User git\n  IdentityFile ~/.ssh/id_rsa_oss\n")

	fileInfo, statError := os.Stat(resolvedPath)
	require.NoError(testInstance, statError)
	require.Equal(testInstance, os.FileMode(0o600), fileInfo.Mode().Perm())
}

func TestAccountProvisionerAddSSHHostRejectsInvalidAlias(testInstance *testing.T) {
	provisioner := newTestProvisioner(testInstance.TempDir())

	_, missingError := provisioner.AddSSHHost("", lookup.SSHHost{})
	require.ErrorIs(testInstance, missingError, lookup.ErrSSHAliasRequired)

	_, invalidError := provisioner.AddSSHHost("", lookup.SSHHost{Alias: "work alias"})
	require.ErrorIs(testInstance, invalidError, lookup.ErrSSHAliasInvalid)
}
