package discovery

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cueyaml "cuelang.org/go/encoding/yaml"
	"gopkg.in/yaml.v3"

	"pwt/internal/domain"
)

//go:embed schema.cue
var schemaSource string

// ErrDuplicateName is returned when two workflows share a name.
var ErrDuplicateName = errors.New("duplicate workflow name")

// ValidationError reports a test file that does not match the schema.
type ValidationError struct {
	File    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid test file %s: %s", e.File, e.Message)
}

// Loader reads workflow test files into Workflows.
// It is not safe for concurrent use.
type Loader struct {
	ctx    *cue.Context
	schema cue.Value
}

// NewLoader compiles the embedded schema.
func NewLoader() (*Loader, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	workflows := schema.LookupPath(cue.ParsePath("#Workflows"))
	if err := workflows.Err(); err != nil {
		return nil, fmt.Errorf("lookup #Workflows: %w", err)
	}

	return &Loader{ctx: ctx, schema: workflows}, nil
}

// Validate checks YAML test file content against the schema. Unknown keys,
// missing names or commands and malformed md5sums are rejected.
func (l *Loader) Validate(path string, data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return &ValidationError{File: path, Message: "file is empty"}
	}

	file, err := cueyaml.Extract(path, data)
	if err != nil {
		return &ValidationError{File: path, Message: err.Error()}
	}

	value := l.ctx.BuildFile(file)
	if err := value.Err(); err != nil {
		return &ValidationError{File: path, Message: details(err)}
	}

	if err := l.schema.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return &ValidationError{File: path, Message: details(err)}
	}
	return nil
}

func details(err error) string {
	return strings.TrimSpace(cueerrors.Details(err, nil))
}

// LoadFile validates and decodes one test file.
func (l *Loader) LoadFile(path string) ([]domain.Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read test file %s: %w", path, err)
	}

	if err := l.Validate(path, data); err != nil {
		return nil, err
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var workflows []domain.Workflow
	if err := decoder.Decode(&workflows); err != nil {
		return nil, fmt.Errorf("decode test file %s: %w", path, err)
	}

	for i := range workflows {
		workflows[i].Source = path
	}
	return workflows, nil
}

// LoadAll loads every file in order. Workflow names must be unique across
// all files.
func (l *Loader) LoadAll(paths []string) ([]domain.Workflow, error) {
	var all []domain.Workflow
	seen := make(map[string]string)

	for _, path := range paths {
		workflows, err := l.LoadFile(path)
		if err != nil {
			return nil, err
		}

		for _, wf := range workflows {
			if first, ok := seen[wf.Name]; ok {
				return nil, fmt.Errorf("%w '%s' in %s, first defined in %s", ErrDuplicateName, wf.Name, path, first)
			}
			seen[wf.Name] = path
			all = append(all, wf)
		}
	}

	return all, nil
}

// ValidateAll validates every file and returns one error per invalid file.
func (l *Loader) ValidateAll(paths []string) []error {
	var errs []error
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("read test file %s: %w", path, err))
			continue
		}
		if err := l.Validate(path, data); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
