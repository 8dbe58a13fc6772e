package lookup

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	homePathSeparatorConstant = "/"
	// DefaultHomeRoot is the directory that contains per-user home directories.
	DefaultHomeRoot = "/home"
)

// Entry maps a directory prefix relative to the user's home to an identity.
type Entry struct {
	Directory string `json:"dir" yaml:"dir" toml:"dir"`
	Email     string `json:"email" yaml:"email" toml:"email"`
	Name      string `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
}

// Table is the ordered list of entries. Earlier entries take precedence.
type Table []Entry

// Prefix returns the path prefix the entry claims for userName beneath homeRoot.
func (entry Entry) Prefix(homeRoot string, userName string) string {
	trimmedHomeRoot := strings.TrimRight(homeRoot, homePathSeparatorConstant)
	if len(strings.TrimSpace(homeRoot)) == 0 {
		trimmedHomeRoot = DefaultHomeRoot
	}
	return trimmedHomeRoot + homePathSeparatorConstant + userName + homePathSeparatorConstant + entry.Directory
}

// Matches reports whether workspaceRoot begins with the entry prefix.
// The comparison is a plain string prefix test, so "proj" also claims "project2".
// An entry without a directory never matches.
func (entry Entry) Matches(homeRoot string, userName string, workspaceRoot string) bool {
	if len(strings.TrimSpace(entry.Directory)) == 0 {
		return false
	}
	return strings.HasPrefix(workspaceRoot, entry.Prefix(homeRoot, userName))
}

// FirstMatch returns the first entry that matches workspaceRoot.
func (table Table) FirstMatch(homeRoot string, userName string, workspaceRoot string) (Entry, bool) {
	for _, entry := range table {
		if entry.Matches(homeRoot, userName, workspaceRoot) {
			return entry, true
		}
	}
	return Entry{}, false
}

const (
	directoryFieldNameConstant     = "dir"
	emailFieldNameConstant         = "email"
	nameFieldNameConstant          = "name"
	fieldNotStringTemplateConstant = "entry field %q must be a string"
	entryNotTableTemplateConstant  = "entry must be a table, got %T"
	jsonNullLiteralConstant        = "null"
)

// UnmarshalJSON decodes an entry, ignoring a name that is not a string.
func (entry *Entry) UnmarshalJSON(data []byte) error {
	if strings.TrimSpace(string(data)) == jsonNullLiteralConstant {
		return nil
	}
	var document struct {
		Directory string          `json:"dir"`
		Email     string          `json:"email"`
		Name      json.RawMessage `json:"name"`
	}
	if decodeError := json.Unmarshal(data, &document); decodeError != nil {
		return decodeError
	}
	var name string
	if len(document.Name) > 0 && json.Unmarshal(document.Name, &name) != nil {
		name = ""
	}
	*entry = Entry{Directory: document.Directory, Email: document.Email, Name: name}
	return nil
}

// UnmarshalYAML decodes an entry, ignoring a name that is not a scalar.
func (entry *Entry) UnmarshalYAML(value *yaml.Node) error {
	var document struct {
		Directory string    `yaml:"dir"`
		Email     string    `yaml:"email"`
		Name      yaml.Node `yaml:"name"`
	}
	if decodeError := value.Decode(&document); decodeError != nil {
		return decodeError
	}
	var name string
	if document.Name.Kind == yaml.ScalarNode && document.Name.Decode(&name) != nil {
		name = ""
	}
	*entry = Entry{Directory: document.Directory, Email: document.Email, Name: name}
	return nil
}

// UnmarshalTOML decodes an entry, ignoring a name that is not a string.
func (entry *Entry) UnmarshalTOML(data any) error {
	fields, isTable := data.(map[string]any)
	if !isTable {
		return fmt.Errorf(entryNotTableTemplateConstant, data)
	}
	directory, directoryError := stringField(fields, directoryFieldNameConstant)
	if directoryError != nil {
		return directoryError
	}
	email, emailError := stringField(fields, emailFieldNameConstant)
	if emailError != nil {
		return emailError
	}
	name, _ := fields[nameFieldNameConstant].(string)
	*entry = Entry{Directory: directory, Email: email, Name: name}
	return nil
}

func stringField(fields map[string]any, fieldName string) (string, error) {
	rawValue, exists := fields[fieldName]
	if !exists {
		return "", nil
	}
	value, isString := rawValue.(string)
	if !isString {
		return "", fmt.Errorf(fieldNotStringTemplateConstant, fieldName)
	}
	return value, nil
}
