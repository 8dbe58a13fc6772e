package identity

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/gitidentity/internal/lookup"
)

const (
	// GitUserEmailKey is the configuration key receiving the matched email.
	GitUserEmailKey = "user.email"
	// GitUserNameKey is the configuration key receiving the matched directory when name setting is enabled.
	GitUserNameKey = "user.name"

	identityMatchedLogMessageConstant   = "lookup entry matched"
	identityUnmatchedLogMessageConstant = "no lookup entry matched"
	identityDryRunLogMessageConstant    = "dry run: configuration left unchanged"
	logFieldUserNameConstant            = "user_name"
	logFieldWorkspaceRootConstant       = "workspace_root"
	logFieldLookupPathConstant          = "lookup_path"
	logFieldEntryDirectoryConstant      = "entry_directory"
	logFieldEntryEmailConstant          = "entry_email"
	logFieldEntryCountConstant          = "entry_count"
)

// TableLoader reads the lookup table.
type TableLoader interface {
	Load(lookupPath string) (lookup.Table, error)
}

// ServiceDependencies enumerates collaborators required by the service.
type ServiceDependencies struct {
	UserNameResolver UserNameResolver
	WorkspaceLocator WorkspaceLocator
	ConfigApplier    ConfigApplier
	TableLoader      TableLoader
	Logger           *zap.Logger
}

// Options configure a single apply run.
type Options struct {
	WorkingDirectory string
	LookupPath       string
	HomeRoot         string
	SetName          bool
	DryRun           bool
}

// Outcome captures what an apply run observed and changed.
type Outcome struct {
	UserName      string
	WorkspaceRoot string
	Matched       bool
	Entry         lookup.Entry
	EmailApplied  bool
	NameApplied   bool
	DryRun        bool
}

// Service runs the identity pipeline.
type Service struct {
	userNameResolver UserNameResolver
	workspaceLocator WorkspaceLocator
	configApplier    ConfigApplier
	tableLoader      TableLoader
	logger           *zap.Logger
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.UserNameResolver == nil {
		return nil, ErrUserNameResolverNotConfigured
	}
	if dependencies.WorkspaceLocator == nil {
		return nil, ErrWorkspaceLocatorNotConfigured
	}
	if dependencies.ConfigApplier == nil {
		return nil, ErrConfigApplierNotConfigured
	}
	if dependencies.TableLoader == nil {
		return nil, ErrTableLoaderNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		userNameResolver: dependencies.UserNameResolver,
		workspaceLocator: dependencies.WorkspaceLocator,
		configApplier:    dependencies.ConfigApplier,
		tableLoader:      dependencies.TableLoader,
		logger:           logger,
	}, nil
}

// Apply resolves the user and working tree, finds the first matching lookup entry, and writes its identity.
// The first failing step stops the run and is reported as a StepError.
func (service *Service) Apply(executionContext context.Context, options Options) (Outcome, error) {
	outcome := Outcome{DryRun: options.DryRun}

	userName, userNameError := service.userNameResolver.ResolveUserName(executionContext)
	if userNameError != nil {
		return outcome, StepError{Step: StepResolveUser, Err: userNameError}
	}
	outcome.UserName = userName

	workspaceRoot, workspaceRootError := service.workspaceLocator.LocateWorkspaceRoot(executionContext, options.WorkingDirectory)
	if workspaceRootError != nil {
		return outcome, StepError{Step: StepLocateWorkspace, Err: workspaceRootError}
	}
	outcome.WorkspaceRoot = workspaceRoot

	lookupPath := strings.TrimSpace(options.LookupPath)
	if len(lookupPath) == 0 {
		lookupPath = lookup.DefaultLookupPath
	}
	table, loadError := service.tableLoader.Load(lookupPath)
	if loadError != nil {
		return outcome, StepError{Step: StepLoadLookup, Err: loadError}
	}

	entry, matched := table.FirstMatch(options.HomeRoot, userName, workspaceRoot)
	if !matched {
		service.logger.Info(
			identityUnmatchedLogMessageConstant,
			zap.String(logFieldUserNameConstant, userName),
			zap.String(logFieldWorkspaceRootConstant, workspaceRoot),
			zap.String(logFieldLookupPathConstant, lookupPath),
			zap.Int(logFieldEntryCountConstant, len(table)),
		)
		return outcome, nil
	}
	outcome.Matched = true
	outcome.Entry = entry

	service.logger.Info(
		identityMatchedLogMessageConstant,
		zap.String(logFieldUserNameConstant, userName),
		zap.String(logFieldWorkspaceRootConstant, workspaceRoot),
		zap.String(logFieldEntryDirectoryConstant, entry.Directory),
		zap.String(logFieldEntryEmailConstant, entry.Email),
	)

	if options.DryRun {
		service.logger.Info(identityDryRunLogMessageConstant, zap.String(logFieldWorkspaceRootConstant, workspaceRoot))
		return outcome, nil
	}

	if applyError := service.configApplier.SetLocal(executionContext, workspaceRoot, GitUserEmailKey, entry.Email); applyError != nil {
		return outcome, StepError{Step: StepApplyEmail, Err: applyError}
	}
	outcome.EmailApplied = true

	if !options.SetName {
		return outcome, nil
	}

	// user.name receives the directory, not the entry name.
	if applyError := service.configApplier.SetLocal(executionContext, workspaceRoot, GitUserNameKey, entry.Directory); applyError != nil {
		return outcome, StepError{Step: StepApplyName, Err: applyError}
	}
	outcome.NameApplied = true

	return outcome, nil
}
