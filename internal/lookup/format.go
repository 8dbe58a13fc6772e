package lookup

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format identifies the serialization of a lookup document.
type Format string

// Supported lookup document formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

const (
	jsonExtensionConstant        = ".json"
	yamlExtensionConstant        = ".yaml"
	ymlExtensionConstant         = ".yml"
	tomlExtensionConstant        = ".toml"
	jsonIndentPrefixConstant     = ""
	jsonIndentConstant           = "  "
	yamlIndentWidthConstant      = 2
	unsupportedFormatTemplate    = "unsupported lookup format: %s"
	trailingNewlineConstant      = "\n"
	emptyDocumentMessageConstant = "lookup document is empty"
	trailingDataMessageConstant  = "lookup document contains trailing data"
)

var errEmptyDocument = errors.New(emptyDocumentMessageConstant)

var errTrailingJSONData = errors.New(trailingDataMessageConstant)

// tomlDocument wraps the entries because TOML has no top-level arrays.
type tomlDocument struct {
	Entries []Entry `toml:"entries"`
}

// DetectFormat chooses the document format from the file extension, defaulting to JSON.
func DetectFormat(filePath string) Format {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case yamlExtensionConstant, ymlExtensionConstant:
		return FormatYAML
	case tomlExtensionConstant:
		return FormatTOML
	default:
		return FormatJSON
	}
}

// Decode parses document contents in the given format.
func (format Format) Decode(contents []byte) (Table, error) {
	switch format {
	case FormatJSON:
		return decodeJSON(contents)
	case FormatYAML:
		return decodeYAML(contents)
	case FormatTOML:
		return decodeTOML(contents)
	default:
		return nil, fmt.Errorf(unsupportedFormatTemplate, format)
	}
}

// Encode serializes the table in the given format.
func (format Format) Encode(table Table) ([]byte, error) {
	entries := []Entry(table)
	if entries == nil {
		entries = []Entry{}
	}

	switch format {
	case FormatJSON:
		encoded, encodeError := json.MarshalIndent(entries, jsonIndentPrefixConstant, jsonIndentConstant)
		if encodeError != nil {
			return nil, encodeError
		}
		return append(encoded, trailingNewlineConstant...), nil
	case FormatYAML:
		buffer := &bytes.Buffer{}
		encoder := yaml.NewEncoder(buffer)
		encoder.SetIndent(yamlIndentWidthConstant)
		if encodeError := encoder.Encode(entries); encodeError != nil {
			return nil, encodeError
		}
		if closeError := encoder.Close(); closeError != nil {
			return nil, closeError
		}
		return buffer.Bytes(), nil
	case FormatTOML:
		buffer := &bytes.Buffer{}
		if encodeError := toml.NewEncoder(buffer).Encode(tomlDocument{Entries: entries}); encodeError != nil {
			return nil, encodeError
		}
		return buffer.Bytes(), nil
	default:
		return nil, fmt.Errorf(unsupportedFormatTemplate, format)
	}
}

func decodeJSON(contents []byte) (Table, error) {
	if len(bytes.TrimSpace(contents)) == 0 {
		return nil, errEmptyDocument
	}
	decoder := json.NewDecoder(bytes.NewReader(contents))
	var entries []Entry
	if decodeError := decoder.Decode(&entries); decodeError != nil {
		return nil, decodeError
	}
	if decoder.More() {
		return nil, errTrailingJSONData
	}
	return Table(entries), nil
}

func decodeYAML(contents []byte) (Table, error) {
	if len(bytes.TrimSpace(contents)) == 0 {
		return nil, errEmptyDocument
	}
	var entries []Entry
	if decodeError := yaml.Unmarshal(contents, &entries); decodeError != nil {
		return nil, decodeError
	}
	return Table(entries), nil
}

func decodeTOML(contents []byte) (Table, error) {
	var document tomlDocument
	if _, decodeError := toml.Decode(string(contents), &document); decodeError != nil {
		return nil, decodeError
	}
	return Table(document.Entries), nil
}
