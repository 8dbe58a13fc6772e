package lookup

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gitidentity/internal/utils"
)

const (
	// DefaultLookupPath is the lookup document consulted when none is configured.
	DefaultLookupPath = "lookup.json"

	groupCommandUseConstant         = "lookup"
	groupCommandShortConstant       = "Inspect and maintain the identity lookup table"
	groupCommandLongConstant        = "lookup lists the ordered directory-to-identity table or appends new entries to it. The table location follows --lookup or identity.lookup_path."
	addCommandUseConstant           = "add"
	addCommandShortConstant         = "Append an identity entry to the lookup table"
	addCommandLongConstant          = "add appends an entry to the end of the lookup table, creating the file and its parent directory when missing. Existing entries keep their order and precedence. --create-dir also creates the entry directory beneath the home directory, and --ssh-alias writes a Host alias block for the account into the SSH configuration."
	addCommandExampleConstant       = "gitidentity lookup add --dir work --email alice@company.com --name \"Alice Example\"\ngitidentity lookup add --dir oss --email alice@example.org --create-dir --ssh-alias github.com-oss --ssh-key ~/.ssh/id_ed25519_oss"
	listCommandUseConstant          = "list"
	listCommandShortConstant        = "List lookup table entries in match order"
	directoryFlagNameConstant       = "dir"
	directoryFlagUsageConstant      = "Directory prefix relative to the user's home directory."
	emailFlagNameConstant           = "email"
	emailFlagUsageConstant          = "Email address applied to matching working trees."
	nameFlagNameConstant            = "name"
	nameFlagUsageConstant           = "Optional display name recorded with the entry."
	createDirectoryFlagNameConstant = "create-dir"
	createDirectoryFlagUsage        = "Create the entry directory beneath the home directory."
	sshAliasFlagNameConstant        = "ssh-alias"
	sshAliasFlagUsageConstant       = "Add an SSH Host alias for this account to the SSH configuration."
	sshKeyFlagNameConstant          = "ssh-key"
	sshKeyFlagUsageConstant         = "Private key used by the SSH alias (default ~/.ssh/id_rsa_<alias>)."
	sshHostNameFlagNameConstant     = "ssh-hostname"
	sshHostNameFlagUsageConstant    = "Real host name the SSH alias points at."
	sshConfigFlagNameConstant       = "ssh-config"
	sshConfigFlagUsageConstant      = "SSH client configuration file updated by --ssh-alias."
	entryAddedTemplateConstant      = "Added %s -> %s to %s\n"
	directoryCreatedTemplate        = "Created directory %s\n"
	sshHostAddedTemplateConstant    = "Added SSH host %s to %s\n"
	directoryCreatedLogMessage      = "account directory ensured"
	sshHostAddedLogMessageConstant  = "ssh host alias written"
	logFieldDirectoryPathConstant   = "directory_path"
	logFieldSSHAliasConstant        = "ssh_alias"
	logFieldSSHConfigPathConstant   = "ssh_config_path"
	entryListTemplateConstant       = "%d. %s -> %s"
	entryListNameSuffixTemplate     = " (%s)"
	emptyTableTemplateConstant      = "No entries in %s\n"
	entryAddedLogMessageConstant    = "lookup entry appended"
	entriesLoadedLogMessageConstant = "lookup table loaded"
	logFieldLookupPathConstant      = "lookup_path"
	logFieldEntryCountConstant      = "entry_count"
	logFieldEntryDirectoryConstant  = "entry_directory"
	newlineConstant                 = "\n"
	entryPositionOffsetConstant     = 1
)

// LoggerProvider yields a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the lookup command group.
type CommandBuilder struct {
	LoggerProvider     LoggerProvider
	LookupPathProvider func() string
	Loader             *Loader
	Provisioner        *AccountProvisioner
}

// addOptions collects the lookup add flags.
type addOptions struct {
	Entry           Entry
	CreateDirectory bool
	SSHHost         SSHHost
	SSHConfigPath   string
}

// Build constructs the lookup command with its add and list subcommands.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	groupCommand := &cobra.Command{
		Use:   groupCommandUseConstant,
		Short: groupCommandShortConstant,
		Long:  groupCommandLongConstant,
		Args:  cobra.NoArgs,
	}

	var options addOptions
	addCommand := &cobra.Command{
		Use:     addCommandUseConstant,
		Short:   addCommandShortConstant,
		Long:    addCommandLongConstant,
		Example: addCommandExampleConstant,
		Args:    cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.runAdd(command, options)
		},
	}
	addCommand.Flags().StringVar(&options.Entry.Directory, directoryFlagNameConstant, "", directoryFlagUsageConstant)
	addCommand.Flags().StringVar(&options.Entry.Email, emailFlagNameConstant, "", emailFlagUsageConstant)
	addCommand.Flags().StringVar(&options.Entry.Name, nameFlagNameConstant, "", nameFlagUsageConstant)
	addCommand.Flags().BoolVar(&options.CreateDirectory, createDirectoryFlagNameConstant, false, createDirectoryFlagUsage)
	addCommand.Flags().StringVar(&options.SSHHost.Alias, sshAliasFlagNameConstant, "", sshAliasFlagUsageConstant)
	addCommand.Flags().StringVar(&options.SSHHost.IdentityFile, sshKeyFlagNameConstant, "", sshKeyFlagUsageConstant)
	addCommand.Flags().StringVar(&options.SSHHost.HostName, sshHostNameFlagNameConstant, DefaultSSHHostName, sshHostNameFlagUsageConstant)
	addCommand.Flags().StringVar(&options.SSHConfigPath, sshConfigFlagNameConstant, DefaultSSHConfigPath, sshConfigFlagUsageConstant)
	_ = addCommand.MarkFlagRequired(directoryFlagNameConstant)
	_ = addCommand.MarkFlagRequired(emailFlagNameConstant)

	listCommand := &cobra.Command{
		Use:   listCommandUseConstant,
		Short: listCommandShortConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.runList,
	}

	groupCommand.AddCommand(addCommand, listCommand)
	return groupCommand, nil
}

func (builder *CommandBuilder) runAdd(command *cobra.Command, options addOptions) error {
	entry := options.Entry
	sshHostRequested := len(strings.TrimSpace(options.SSHHost.Alias)) > 0 || command.Flags().Changed(sshKeyFlagNameConstant)
	if sshHostRequested {
		if _, validationError := sanitizeSSHHost(options.SSHHost); validationError != nil {
			return validationError
		}
	}

	loader := builder.resolveLoader()
	lookupPath, resolveError := loader.ResolvePath(builder.resolveLookupPath(command))
	if resolveError != nil {
		return resolveError
	}

	updatedTable, appendError := loader.Append(lookupPath, entry)
	if appendError != nil {
		return appendError
	}

	builder.resolveLogger().Info(
		entryAddedLogMessageConstant,
		zap.String(logFieldLookupPathConstant, lookupPath),
		zap.String(logFieldEntryDirectoryConstant, strings.TrimSpace(entry.Directory)),
		zap.Int(logFieldEntryCountConstant, len(updatedTable)),
	)

	appended := updatedTable[len(updatedTable)-1]
	fmt.Fprintf(command.OutOrStdout(), entryAddedTemplateConstant, appended.Directory, appended.Email, lookupPath)

	provisioner := builder.resolveProvisioner()
	if options.CreateDirectory {
		directoryPath, directoryError := provisioner.CreateAccountDirectory(appended.Directory)
		if directoryError != nil {
			return directoryError
		}
		builder.resolveLogger().Info(directoryCreatedLogMessage, zap.String(logFieldDirectoryPathConstant, directoryPath))
		fmt.Fprintf(command.OutOrStdout(), directoryCreatedTemplate, directoryPath)
	}

	if sshHostRequested {
		sshConfigPath, sshError := provisioner.AddSSHHost(options.SSHConfigPath, options.SSHHost)
		if sshError != nil {
			return sshError
		}
		alias := strings.TrimSpace(options.SSHHost.Alias)
		builder.resolveLogger().Info(
			sshHostAddedLogMessageConstant,
			zap.String(logFieldSSHAliasConstant, alias),
			zap.String(logFieldSSHConfigPathConstant, sshConfigPath),
		)
		fmt.Fprintf(command.OutOrStdout(), sshHostAddedTemplateConstant, alias, sshConfigPath)
	}
	return nil
}

func (builder *CommandBuilder) runList(command *cobra.Command, arguments []string) error {
	loader := builder.resolveLoader()
	lookupPath, resolveError := loader.ResolvePath(builder.resolveLookupPath(command))
	if resolveError != nil {
		return resolveError
	}

	table, loadError := loader.Load(lookupPath)
	if loadError != nil {
		return loadError
	}

	builder.resolveLogger().Debug(
		entriesLoadedLogMessageConstant,
		zap.String(logFieldLookupPathConstant, lookupPath),
		zap.Int(logFieldEntryCountConstant, len(table)),
	)

	if len(table) == 0 {
		fmt.Fprintf(command.OutOrStdout(), emptyTableTemplateConstant, lookupPath)
		return nil
	}

	for entryIndex, entry := range table {
		fmt.Fprint(command.OutOrStdout(), FormatEntry(entryIndex+entryPositionOffsetConstant, entry)+newlineConstant)
	}
	return nil
}

// FormatEntry renders a single table row for display.
func FormatEntry(position int, entry Entry) string {
	line := fmt.Sprintf(entryListTemplateConstant, position, entry.Directory, entry.Email)
	if len(strings.TrimSpace(entry.Name)) > 0 {
		line += fmt.Sprintf(entryListNameSuffixTemplate, entry.Name)
	}
	return line
}

func (builder *CommandBuilder) resolveLookupPath(command *cobra.Command) string {
	if command != nil {
		accessor := utils.NewCommandContextAccessor()
		if lookupPath, exists := accessor.LookupFilePath(command.Context()); exists && len(strings.TrimSpace(lookupPath)) > 0 {
			return lookupPath
		}
	}
	if builder.LookupPathProvider != nil {
		if lookupPath := strings.TrimSpace(builder.LookupPathProvider()); len(lookupPath) > 0 {
			return lookupPath
		}
	}
	return DefaultLookupPath
}

func (builder *CommandBuilder) resolveLoader() *Loader {
	if builder.Loader != nil {
		return builder.Loader
	}
	return NewLoader(LoaderDependencies{})
}

func (builder *CommandBuilder) resolveProvisioner() *AccountProvisioner {
	if builder.Provisioner != nil {
		return builder.Provisioner
	}
	return NewAccountProvisioner(nil)
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
