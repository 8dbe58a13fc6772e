package lookup

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	pathutils "github.com/temirov/gitidentity/internal/utils/path"
)

const (
	lookupReadFailedMessageConstant    = "unable to read lookup file"
	lookupParseFailedMessageConstant   = "unable to parse lookup file"
	lookupWriteFailedMessageConstant   = "unable to write lookup file"
	lookupPathRequiredMessageConstant  = "lookup file path must be provided"
	directoryRequiredMessageConstant   = "lookup entry directory must be provided"
	emailRequiredMessageConstant       = "lookup entry email must be provided"
	lookupFailureTemplateConstant      = "%w: %s: %w"
	directoryPermissionsConstant       = 0o755
	filePermissionsConstant            = 0o644
	temporaryFilePatternSuffixConstant = ".tmp-*"
)

// ErrLookupReadFailed indicates the lookup file could not be read.
var ErrLookupReadFailed = errors.New(lookupReadFailedMessageConstant)

// ErrLookupParseFailed indicates the lookup file contents were malformed.
var ErrLookupParseFailed = errors.New(lookupParseFailedMessageConstant)

// ErrLookupWriteFailed indicates the lookup file could not be written.
var ErrLookupWriteFailed = errors.New(lookupWriteFailedMessageConstant)

// ErrLookupPathRequired indicates an empty lookup path.
var ErrLookupPathRequired = errors.New(lookupPathRequiredMessageConstant)

// ErrDirectoryRequired indicates an entry without a directory prefix.
var ErrDirectoryRequired = errors.New(directoryRequiredMessageConstant)

// ErrEmailRequired indicates an entry without an email address.
var ErrEmailRequired = errors.New(emailRequiredMessageConstant)

// LoaderDependencies enumerates collaborators used by the loader.
type LoaderDependencies struct {
	HomeExpander             *pathutils.HomeExpander
	WorkingDirectoryProvider pathutils.WorkingDirectoryProvider
}

// Loader reads and appends to lookup documents on disk.
type Loader struct {
	homeExpander             *pathutils.HomeExpander
	workingDirectoryProvider pathutils.WorkingDirectoryProvider
}

// NewLoader constructs a Loader, defaulting to the process home and working directories.
func NewLoader(dependencies LoaderDependencies) *Loader {
	homeExpander := dependencies.HomeExpander
	if homeExpander == nil {
		homeExpander = pathutils.NewHomeExpander()
	}
	workingDirectoryProvider := dependencies.WorkingDirectoryProvider
	if workingDirectoryProvider == nil {
		workingDirectoryProvider = os.Getwd
	}
	return &Loader{homeExpander: homeExpander, workingDirectoryProvider: workingDirectoryProvider}
}

// ResolvePath expands a leading tilde and anchors relative paths to the working directory.
func (loader *Loader) ResolvePath(lookupPath string) (string, error) {
	if len(strings.TrimSpace(lookupPath)) == 0 {
		return "", ErrLookupPathRequired
	}
	return loader.homeExpander.ResolveAgainst(lookupPath, loader.workingDirectoryProvider)
}

// Load reads the lookup document at lookupPath.
func (loader *Loader) Load(lookupPath string) (Table, error) {
	resolvedPath, resolveError := loader.ResolvePath(lookupPath)
	if resolveError != nil {
		return nil, fmt.Errorf(lookupFailureTemplateConstant, ErrLookupReadFailed, lookupPath, resolveError)
	}

	contents, readError := os.ReadFile(resolvedPath)
	if readError != nil {
		return nil, fmt.Errorf(lookupFailureTemplateConstant, ErrLookupReadFailed, resolvedPath, readError)
	}

	table, decodeError := DetectFormat(resolvedPath).Decode(contents)
	if decodeError != nil {
		return nil, fmt.Errorf(lookupFailureTemplateConstant, ErrLookupParseFailed, resolvedPath, decodeError)
	}

	return table, nil
}

// Append adds entry to the end of the lookup document, creating the document when it does not exist.
func (loader *Loader) Append(lookupPath string, entry Entry) (Table, error) {
	sanitizedEntry := Entry{
		Directory: strings.TrimSpace(entry.Directory),
		Email:     strings.TrimSpace(entry.Email),
		Name:      strings.TrimSpace(entry.Name),
	}
	if len(sanitizedEntry.Directory) == 0 {
		return nil, ErrDirectoryRequired
	}
	if len(sanitizedEntry.Email) == 0 {
		return nil, ErrEmailRequired
	}

	resolvedPath, resolveError := loader.ResolvePath(lookupPath)
	if resolveError != nil {
		return nil, fmt.Errorf(lookupFailureTemplateConstant, ErrLookupWriteFailed, lookupPath, resolveError)
	}

	existingTable, loadError := loader.Load(resolvedPath)
	if loadError != nil {
		if !errors.Is(loadError, fs.ErrNotExist) {
			return nil, loadError
		}
		existingTable = Table{}
	}

	updatedTable := append(append(Table{}, existingTable...), sanitizedEntry)
	encoded, encodeError := DetectFormat(resolvedPath).Encode(updatedTable)
	if encodeError != nil {
		return nil, fmt.Errorf(lookupFailureTemplateConstant, ErrLookupWriteFailed, resolvedPath, encodeError)
	}

	if writeError := writeFileAtomically(resolvedPath, encoded); writeError != nil {
		return nil, fmt.Errorf(lookupFailureTemplateConstant, ErrLookupWriteFailed, resolvedPath, writeError)
	}

	return updatedTable, nil
}

func writeFileAtomically(targetPath string, contents []byte) error {
	targetDirectory := filepath.Dir(targetPath)
	if mkdirError := os.MkdirAll(targetDirectory, directoryPermissionsConstant); mkdirError != nil {
		return mkdirError
	}

	temporaryFile, createError := os.CreateTemp(targetDirectory, filepath.Base(targetPath)+temporaryFilePatternSuffixConstant)
	if createError != nil {
		return createError
	}
	temporaryPath := temporaryFile.Name()

	if _, writeError := temporaryFile.Write(contents); writeError != nil {
		_ = temporaryFile.Close()
		_ = os.Remove(temporaryPath)
		return writeError
	}
	if closeError := temporaryFile.Close(); closeError != nil {
		_ = os.Remove(temporaryPath)
		return closeError
	}
	if chmodError := os.Chmod(temporaryPath, filePermissionsConstant); chmodError != nil {
		_ = os.Remove(temporaryPath)
		return chmodError
	}
	if renameError := os.Rename(temporaryPath, targetPath); renameError != nil {
		_ = os.Remove(temporaryPath)
		return renameError
	}
	return nil
}
