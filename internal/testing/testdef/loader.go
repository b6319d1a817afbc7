// Package testdef provides test definition loading and validation.
// A test definition names a query and the assertions its result rows
// must satisfy.
package testdef

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethpandaops/query-validator/internal/testing/assertion"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidDefinition is returned when a file does not match the definition shape.
	ErrInvalidDefinition = errors.New("invalid test definition")

	errAssertionsNotMapping = errors.New("assertions must be a mapping")
)

// TestDefinition represents one query and the assertions over its rows.
type TestDefinition struct {
	Name       string
	Query      string
	File       string
	Assertions []assertion.Assertion
}

// UnknownKinds returns the assertion keys that no evaluator handles.
func (d *TestDefinition) UnknownKinds() []string {
	var unknown []string

	for _, a := range d.Assertions {
		if !a.Kind.Known() {
			unknown = append(unknown, string(a.Kind))
		}
	}

	return unknown
}

// FileError reports a definition file that could not be loaded.
type FileError struct {
	File string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Loader loads test definition files.
type Loader interface {
	// Load returns every valid definition in the directory. Invalid files
	// are skipped with a warning.
	Load() ([]*TestDefinition, error)
	// LoadAll returns valid definitions and the errors of skipped files.
	LoadAll() ([]*TestDefinition, []*FileError, error)
	// LoadFile loads a single definition file.
	LoadFile(path string) (*TestDefinition, error)
}

type loader struct {
	baseDir string
	log     logrus.FieldLogger
}

// NewLoader creates a new test definition loader.
func NewLoader(log logrus.FieldLogger, baseDir string) Loader {
	return &loader{
		baseDir: baseDir,
		log:     log.WithField("component", "testdef_loader"),
	}
}

func (l *loader) Load() ([]*TestDefinition, error) {
	definitions, fileErrs, err := l.LoadAll()
	if err != nil {
		return nil, err
	}

	for _, fileErr := range fileErrs {
		l.log.WithError(fileErr.Err).WithField("file", fileErr.File).Warn("invalid test definition, skipping")
	}

	return definitions, nil
}

func (l *loader) LoadAll() ([]*TestDefinition, []*FileError, error) {
	entries, err := os.ReadDir(l.baseDir)
	if err != nil {
		return nil, nil, fmt.Errorf("reading directory %s: %w", l.baseDir, err)
	}

	var (
		definitions = make([]*TestDefinition, 0, len(entries))
		fileErrs    []*FileError
	)

	for _, entry := range entries {
		if entry.IsDir() || !isDefinitionFile(entry.Name()) {
			continue
		}

		path := filepath.Join(l.baseDir, entry.Name())

		definition, err := l.LoadFile(path)
		if err != nil {
			fileErrs = append(fileErrs, &FileError{File: entry.Name(), Err: err})

			continue
		}

		definitions = append(definitions, definition)
	}

	l.log.WithFields(logrus.Fields{
		"dir":     l.baseDir,
		"loaded":  len(definitions),
		"skipped": len(fileErrs),
	}).Debug("loaded test definitions")

	return definitions, fileErrs, nil
}

func (l *loader) LoadFile(path string) (*TestDefinition, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: Reading test definitions from the configured directory
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	definition, err := parseDefinition(data)
	if err != nil {
		return nil, err
	}

	definition.File = path

	if unknown := definition.UnknownKinds(); len(unknown) > 0 {
		l.log.WithFields(logrus.Fields{
			"test":    definition.Name,
			"file":    path,
			"unknown": unknown,
		}).Warn("test definition references unknown assertions")
	}

	return definition, nil
}

// document is the raw YAML shape. Assertions stay a node so the mapping
// order is preserved.
type document struct {
	Name       string    `yaml:"name"`
	Query      string    `yaml:"query"`
	Assertions yaml.Node `yaml:"assertions"`
}

// parseDefinition decodes and validates one definition document.
func parseDefinition(data []byte) (*TestDefinition, error) {
	var generic interface{}
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("parsing yaml: %w", err)
	}

	if err := validateShape(generic); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing yaml: %w", err)
	}

	assertions, err := decodeAssertions(&doc.Assertions)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}

	return &TestDefinition{
		Name:       doc.Name,
		Query:      doc.Query,
		Assertions: assertions,
	}, nil
}

// decodeAssertions decodes each assertion in mapping order.
func decodeAssertions(node *yaml.Node) ([]assertion.Assertion, error) {
	if node.Kind != yaml.MappingNode {
		return nil, errAssertionsNotMapping
	}

	assertions := make([]assertion.Assertion, 0, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		var (
			kind  = assertion.Kind(node.Content[i].Value)
			value = node.Content[i+1]
			a     = assertion.Assertion{Kind: kind}
			err   error
		)

		switch kind {
		case assertion.KindCount:
			err = value.Decode(&a.Count)
		case assertion.KindHas, assertion.KindMissing:
			err = value.Decode(&a.Values)
		case assertion.KindNoNulls, assertion.KindOnlyNulls:
			err = value.Decode(&a.Columns)
		case assertion.KindConditions:
			err = value.Decode(&a.Conditions)
		}

		if err != nil {
			return nil, fmt.Errorf("decoding assertion '%s': %w", kind, err)
		}

		assertions = append(assertions, a)
	}

	return assertions, nil
}

func isDefinitionFile(name string) bool {
	return strings.HasSuffix(name, ".yml") || strings.HasSuffix(name, ".yaml")
}

// Compile-time interface compliance check
var _ Loader = (*loader)(nil)
