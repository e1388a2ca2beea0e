// =============================================================================
// txnbatch - Configuration Module
// =============================================================================
//
// This module loads the run parameters from a flat configuration file. The
// file consists of "Key: value" lines, one per setting:
//
//   InputFolder: ./data/input
//   ErrorFolder: ./data/error
//   ArchiveFolder: ./data/archive
//   OutputFolder: ./data/output
//   lineNo: 100
//
// That shape is valid YAML, so the file is decoded with yaml.v3 and the
// top-level mapping is walked node by node. Every value is read as its literal
// scalar text, which keeps Windows paths and numeric-looking folder names
// intact.
//
// The loaded Parameters value is a read-only snapshot for one command run.
// It is passed explicitly to the components that need it.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// KEYS AND ERRORS
// =============================================================================

// Configuration keys, exactly as they appear in the file.
const (
	KeyInputFolder   = "InputFolder"
	KeyErrorFolder   = "ErrorFolder"
	KeyArchiveFolder = "ArchiveFolder"
	KeyOutputFolder  = "OutputFolder"
	KeyLineNo        = "lineNo"
)

// RequiredKeys lists every key a configuration file must define.
var RequiredKeys = []string{
	KeyInputFolder,
	KeyErrorFolder,
	KeyArchiveFolder,
	KeyOutputFolder,
	KeyLineNo,
}

// ErrConfigKeyMissing is returned when a required key is absent or empty.
var ErrConfigKeyMissing = errors.New("configuration key missing")

// Environment variables consulted when the matching flag was not given.
const (
	EnvConfigPath = "TXNBATCH_CONFIG"
	EnvLogLevel   = "TXNBATCH_LOG_LEVEL"
)

// DefaultPath is the configuration file used when neither flag nor env is set.
const DefaultPath = "config.txt"

// =============================================================================
// PARAMETERS
// =============================================================================

// Parameters holds the folders and defaults for one command run.
type Parameters struct {
	// InputFolder is where data files are generated and read from.
	InputFolder string

	// ErrorFolder receives files with at least one invalid line,
	// together with their <file>.ERROR.txt logs.
	ErrorFolder string

	// ArchiveFolder receives files that passed validation.
	ArchiveFolder string

	// OutputFolder receives the <file>.REPORT.txt aggregates.
	OutputFolder string

	// NumOfLines is the default number of records for the generate command.
	NumOfLines int
}

// Folders returns the four configured folders.
func (p Parameters) Folders() []string {
	return []string{p.InputFolder, p.ErrorFolder, p.ArchiveFolder, p.OutputFolder}
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads and validates the configuration file at path.
//
// RETURNS:
//   - The parsed Parameters.
//   - An error wrapping ErrConfigKeyMissing if a required key is absent,
//     or a read/parse error otherwise.
func Load(path string) (*Parameters, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes configuration file contents.
func Parse(data []byte) (*Parameters, error) {
	values, err := readValues(data)
	if err != nil {
		return nil, err
	}

	for _, key := range RequiredKeys {
		if strings.TrimSpace(values[key]) == "" {
			return nil, fmt.Errorf("%w: %s", ErrConfigKeyMissing, key)
		}
	}

	lineNo, err := strconv.Atoi(strings.TrimSpace(values[KeyLineNo]))
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", KeyLineNo, values[KeyLineNo], err)
	}
	if lineNo <= 0 {
		return nil, fmt.Errorf("invalid %s value %d: must be positive", KeyLineNo, lineNo)
	}

	return &Parameters{
		InputFolder:   strings.TrimSpace(values[KeyInputFolder]),
		ErrorFolder:   strings.TrimSpace(values[KeyErrorFolder]),
		ArchiveFolder: strings.TrimSpace(values[KeyArchiveFolder]),
		OutputFolder:  strings.TrimSpace(values[KeyOutputFolder]),
		NumOfLines:    lineNo,
	}, nil
}

// readValues walks the top-level mapping and returns every scalar key/value.
// Non-scalar values are rejected.
func readValues(data []byte) (map[string]string, error) {
	values := make(map[string]string)

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// An empty file decodes to a zero node; every key is then missing.
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return values, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("failed to parse config file: expected \"Key: value\" lines, got %s at line %d",
			kindName(root.Kind), root.Line)
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("failed to parse config file: key %q at line %d must have a plain value",
				key.Value, key.Line)
		}
		values[key.Value] = value.Value
	}

	return values, nil
}

func kindName(kind yaml.Kind) string {
	switch kind {
	case yaml.SequenceNode:
		return "a list"
	case yaml.ScalarNode:
		return "a single value"
	case yaml.AliasNode:
		return "an alias"
	default:
		return "an unexpected document"
	}
}

// =============================================================================
// ENVIRONMENT
// =============================================================================

// LoadEnv loads KEY=value pairs from the given .env file into the process
// environment. A missing file is not an error. Variables already set in the
// environment win over the file.
func LoadEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// ResolvePath picks the configuration file path. An explicitly set flag wins,
// then TXNBATCH_CONFIG, then the flag's default value.
func ResolvePath(flagValue string, flagChanged bool) string {
	if flagChanged {
		return flagValue
	}
	if env := strings.TrimSpace(os.Getenv(EnvConfigPath)); env != "" {
		return env
	}
	return flagValue
}

// ResolveLogLevel picks the log level the same way as ResolvePath.
func ResolveLogLevel(flagValue string, flagChanged bool) string {
	if flagChanged {
		return flagValue
	}
	if env := strings.TrimSpace(os.Getenv(EnvLogLevel)); env != "" {
		return env
	}
	return flagValue
}
