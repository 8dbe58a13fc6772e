package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	"go.uber.org/zap"
)

const (
	configurationKeySeparatorConstant         = "."
	userSectionNameConstant                   = "user"
	userEmailOptionNameConstant               = "email"
	userNameOptionNameConstant                = "name"
	repositoryOpenFailureTemplateConstant     = "unable to open repository at %s: %w"
	worktreeFailureTemplateConstant           = "unable to access working tree at %s: %w"
	configurationReadFailureTemplateConstant  = "unable to read configuration of %s: %w"
	configurationWriteFailureTemplateConstant = "unable to write configuration of %s: %w"
	repositoryOpenedLogMessageConstant        = "opened repository"
	configurationUpdatedLogMessageConstant    = "updated local configuration"
	logFieldWorkingDirectoryConstant          = "working_directory"
	logFieldWorkspaceRootConstant             = "workspace_root"
	logFieldConfigurationKeyConstant          = "configuration_key"
	logFieldConfigurationValueConstant        = "configuration_value"
	invalidConfigurationKeyMessageConstant    = "invalid configuration key"
	invalidConfigurationKeyTemplateConstant   = "%w: %q"
)

// ErrInvalidConfigurationKey indicates a key that is not of the section.option form.
var ErrInvalidConfigurationKey = errors.New(invalidConfigurationKeyMessageConstant)

// GoGitRepository implements working tree discovery and local configuration updates with go-git.
type GoGitRepository struct {
	logger *zap.Logger
}

// NewGoGitRepository constructs a GoGitRepository that logs through logger.
func NewGoGitRepository(logger *zap.Logger) *GoGitRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GoGitRepository{logger: logger}
}

// LocateWorkspaceRoot returns the root of the working tree that contains workingDirectory.
// An empty workingDirectory refers to the process working directory.
func (repository *GoGitRepository) LocateWorkspaceRoot(executionContext context.Context, workingDirectory string) (string, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return "", contextError
	}

	startDirectory := strings.TrimSpace(workingDirectory)
	if len(startDirectory) == 0 {
		currentDirectory, currentDirectoryError := os.Getwd()
		if currentDirectoryError != nil {
			return "", currentDirectoryError
		}
		startDirectory = currentDirectory
	}

	openedRepository, openError := git.PlainOpenWithOptions(startDirectory, &git.PlainOpenOptions{DetectDotGit: true})
	if openError != nil {
		return "", fmt.Errorf(repositoryOpenFailureTemplateConstant, startDirectory, openError)
	}

	worktree, worktreeError := openedRepository.Worktree()
	if worktreeError != nil {
		return "", fmt.Errorf(worktreeFailureTemplateConstant, startDirectory, worktreeError)
	}

	workspaceRoot := worktree.Filesystem.Root()
	repository.logger.Debug(
		repositoryOpenedLogMessageConstant,
		zap.String(logFieldWorkingDirectoryConstant, startDirectory),
		zap.String(logFieldWorkspaceRootConstant, workspaceRoot),
	)
	return workspaceRoot, nil
}

// SetLocal writes key (section.option or section.subsection.option) into the local configuration of the repository at workspaceRoot.
func (repository *GoGitRepository) SetLocal(executionContext context.Context, workspaceRoot string, key string, value string) error {
	if contextError := executionContext.Err(); contextError != nil {
		return contextError
	}

	sectionName, subsectionName, optionName, keyError := splitConfigurationKey(key)
	if keyError != nil {
		return keyError
	}

	openedRepository, openError := git.PlainOpen(workspaceRoot)
	if openError != nil {
		return fmt.Errorf(repositoryOpenFailureTemplateConstant, workspaceRoot, openError)
	}

	configuration, configurationError := openedRepository.Config()
	if configurationError != nil {
		return fmt.Errorf(configurationReadFailureTemplateConstant, workspaceRoot, configurationError)
	}

	section := configuration.Raw.Section(sectionName)
	if len(subsectionName) > 0 {
		section.Subsection(subsectionName).SetOption(optionName, value)
	} else {
		section.SetOption(optionName, value)
	}

	// Config.Marshal rewrites the user section from the typed fields.
	if sectionName == userSectionNameConstant && len(subsectionName) == 0 {
		switch optionName {
		case userEmailOptionNameConstant:
			configuration.User.Email = value
		case userNameOptionNameConstant:
			configuration.User.Name = value
		}
	}

	if writeError := openedRepository.SetConfig(configuration); writeError != nil {
		return fmt.Errorf(configurationWriteFailureTemplateConstant, workspaceRoot, writeError)
	}

	repository.logger.Debug(
		configurationUpdatedLogMessageConstant,
		zap.String(logFieldWorkspaceRootConstant, workspaceRoot),
		zap.String(logFieldConfigurationKeyConstant, key),
		zap.String(logFieldConfigurationValueConstant, value),
	)
	return nil
}

func splitConfigurationKey(key string) (string, string, string, error) {
	trimmedKey := strings.TrimSpace(key)
	firstSeparator := strings.Index(trimmedKey, configurationKeySeparatorConstant)
	lastSeparator := strings.LastIndex(trimmedKey, configurationKeySeparatorConstant)
	if firstSeparator <= 0 || lastSeparator == len(trimmedKey)-1 {
		return "", "", "", fmt.Errorf(invalidConfigurationKeyTemplateConstant, ErrInvalidConfigurationKey, key)
	}

	sectionName := trimmedKey[:firstSeparator]
	optionName := trimmedKey[lastSeparator+1:]
	subsectionName := ""
	if lastSeparator > firstSeparator {
		subsectionName = trimmedKey[firstSeparator+1 : lastSeparator]
	}
	return sectionName, subsectionName, optionName, nil
}
