package lookup

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	pathutils "github.com/temirov/gitidentity/internal/utils/path"
)

const (
	// DefaultSSHConfigPath is the OpenSSH client configuration updated by AddSSHHost.
	DefaultSSHConfigPath = "~/.ssh/config"
	// DefaultSSHHostName is the real host an alias points at.
	DefaultSSHHostName = "github.com"

	homeRelativePrefixConstant            = "~/"
	defaultSSHKeyTemplateConstant         = "~/.ssh/id_rsa_%s"
	managedSectionStartTemplateConstant   = "# ---- BEGIN GITIDENTITY %s ----"
	managedSectionEndTemplateConstant     = "# ---- END GITIDENTITY %s ----"
	hostLineTemplateConstant              = "Host %s"
	hostNameLineTemplateConstant          = "  HostName %s"
	userLineConstant                      = "  User git"
	identityFileLineTemplateConstant      = "  IdentityFile %s"
	identitiesOnlyLineConstant            = "  IdentitiesOnly yes"
	sshAliasRequiredMessageConstant       = "ssh host alias must be provided"
	sshAliasInvalidMessageConstant        = "ssh host alias must not contain whitespace"
	accountDirectoryFailedMessageConstant = "unable to create account directory"
	sshConfigUpdateFailedMessageConstant  = "unable to update ssh configuration"
	accountFailureTemplateConstant        = "%w: %s: %w"
	sshDirectoryPermissionsConstant       = 0o700
	sshConfigPermissionsConstant          = 0o600
	lineSeparatorConstant                 = "\n"
)

// ErrSSHAliasRequired indicates an SSH host entry without an alias.
var ErrSSHAliasRequired = errors.New(sshAliasRequiredMessageConstant)

// ErrSSHAliasInvalid indicates an alias that cannot be used as an OpenSSH Host pattern.
var ErrSSHAliasInvalid = errors.New(sshAliasInvalidMessageConstant)

// ErrAccountDirectoryFailed indicates the account directory could not be created.
var ErrAccountDirectoryFailed = errors.New(accountDirectoryFailedMessageConstant)

// ErrSSHConfigUpdateFailed indicates the SSH client configuration could not be updated.
var ErrSSHConfigUpdateFailed = errors.New(sshConfigUpdateFailedMessageConstant)

// SSHHost describes a Host alias block pointing at a git hosting service.
type SSHHost struct {
	Alias        string
	HostName     string
	IdentityFile string
}

// AccountProvisioner prepares the filesystem for a new lookup entry.
type AccountProvisioner struct {
	homeExpander *pathutils.HomeExpander
}

// NewAccountProvisioner constructs an AccountProvisioner, defaulting to the process home directory.
func NewAccountProvisioner(homeExpander *pathutils.HomeExpander) *AccountProvisioner {
	if homeExpander == nil {
		homeExpander = pathutils.NewHomeExpander()
	}
	return &AccountProvisioner{homeExpander: homeExpander}
}

// CreateAccountDirectory creates directory beneath the user's home directory and returns its path.
// An existing directory is left untouched.
func (provisioner *AccountProvisioner) CreateAccountDirectory(directory string) (string, error) {
	trimmedDirectory := strings.Trim(strings.TrimSpace(directory), string(filepath.Separator))
	if len(trimmedDirectory) == 0 {
		return "", ErrDirectoryRequired
	}
	accountPath := provisioner.homeExpander.Expand(homeRelativePrefixConstant + trimmedDirectory)
	if mkdirError := os.MkdirAll(accountPath, directoryPermissionsConstant); mkdirError != nil {
		return "", fmt.Errorf(accountFailureTemplateConstant, ErrAccountDirectoryFailed, accountPath, mkdirError)
	}
	return accountPath, nil
}

// DefaultSSHKeyPath returns the private key path assumed for alias when none is given.
func DefaultSSHKeyPath(alias string) string {
	return fmt.Sprintf(defaultSSHKeyTemplateConstant, strings.TrimSpace(alias))
}

// AddSSHHost writes host into the SSH configuration at configPath and returns the resolved path.
// Each alias owns a marked section; re-adding an alias replaces its section in place of appending a duplicate.
func (provisioner *AccountProvisioner) AddSSHHost(configPath string, host SSHHost) (string, error) {
	sanitizedHost, validationError := sanitizeSSHHost(host)
	if validationError != nil {
		return "", validationError
	}

	if len(strings.TrimSpace(configPath)) == 0 {
		configPath = DefaultSSHConfigPath
	}
	resolvedPath, resolveError := provisioner.homeExpander.ResolveAgainst(configPath, nil)
	if resolveError != nil {
		return "", fmt.Errorf(accountFailureTemplateConstant, ErrSSHConfigUpdateFailed, configPath, resolveError)
	}

	existingContents, readError := os.ReadFile(resolvedPath)
	if readError != nil && !errors.Is(readError, fs.ErrNotExist) {
		return "", fmt.Errorf(accountFailureTemplateConstant, ErrSSHConfigUpdateFailed, resolvedPath, readError)
	}

	updatedContents := replaceManagedSection(string(existingContents), sanitizedHost)
	if mkdirError := os.MkdirAll(filepath.Dir(resolvedPath), sshDirectoryPermissionsConstant); mkdirError != nil {
		return "", fmt.Errorf(accountFailureTemplateConstant, ErrSSHConfigUpdateFailed, resolvedPath, mkdirError)
	}
	if writeError := os.WriteFile(resolvedPath, []byte(updatedContents), sshConfigPermissionsConstant); writeError != nil {
		return "", fmt.Errorf(accountFailureTemplateConstant, ErrSSHConfigUpdateFailed, resolvedPath, writeError)
	}
	return resolvedPath, nil
}

func sanitizeSSHHost(host SSHHost) (SSHHost, error) {
	alias := strings.TrimSpace(host.Alias)
	if len(alias) == 0 {
		return SSHHost{}, ErrSSHAliasRequired
	}
	if strings.ContainsAny(alias, " \t") {
		return SSHHost{}, ErrSSHAliasInvalid
	}
	hostName := strings.TrimSpace(host.HostName)
	if len(hostName) == 0 {
		hostName = DefaultSSHHostName
	}
	identityFile := strings.TrimSpace(host.IdentityFile)
	if len(identityFile) == 0 {
		identityFile = DefaultSSHKeyPath(alias)
	}
	return SSHHost{Alias: alias, HostName: hostName, IdentityFile: identityFile}, nil
}

func replaceManagedSection(existingContents string, host SSHHost) string {
	startMarker := fmt.Sprintf(managedSectionStartTemplateConstant, host.Alias)
	endMarker := fmt.Sprintf(managedSectionEndTemplateConstant, host.Alias)

	scanner := bufio.NewScanner(strings.NewReader(existingContents))
	var retained strings.Builder
	insideSection := false
	for scanner.Scan() {
		line := scanner.Text()
		switch strings.TrimSpace(line) {
		case startMarker:
			insideSection = true
			continue
		case endMarker:
			insideSection = false
			continue
		}
		if !insideSection {
			retained.WriteString(line)
			retained.WriteString(lineSeparatorConstant)
		}
	}

	var updated strings.Builder
	retainedContents := strings.TrimRight(retained.String(), lineSeparatorConstant)
	if len(retainedContents) > 0 {
		updated.WriteString(retainedContents)
		updated.WriteString(lineSeparatorConstant + lineSeparatorConstant)
	}
	for _, line := range []string{
		startMarker,
		fmt.Sprintf(hostLineTemplateConstant, host.Alias),
		fmt.Sprintf(hostNameLineTemplateConstant, host.HostName),
		userLineConstant,
		fmt.Sprintf(identityFileLineTemplateConstant, filepath.ToSlash(host.IdentityFile)),
		identitiesOnlyLineConstant,
		endMarker,
	} {
		updated.WriteString(line)
		updated.WriteString(lineSeparatorConstant)
	}
	return updated.String()
}
