package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cueyaml "cuelang.org/go/encoding/yaml"

	"github.com/osgify/cli/internal/feature"
	"github.com/osgify/cli/internal/osgi"
	"github.com/osgify/cli/internal/platform"
)

//go:embed schema.cue
var schemaCUE []byte

// ValidationError represents a build file validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}

	var sb strings.Builder
	sb.WriteString("build file validation failed:\n")
	for _, err := range e {
		sb.WriteString(fmt.Sprintf("  %s: %s\n", err.Field, err.Message))
	}
	return sb.String()
}

// Validator validates build files against the embedded CUE schema.
type Validator struct {
	ctx    *cue.Context
	schema cue.Value
}

// NewValidator creates a new build file validator.
func NewValidator() (*Validator, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(schemaCUE, cue.Filename("schema.cue"))
	if schema.Err() != nil {
		return nil, fmt.Errorf("compiling schema: %w", schema.Err())
	}

	return &Validator{
		ctx:    ctx,
		schema: schema.LookupPath(cue.ParsePath("#BuildFile")),
	}, nil
}

// Validate checks build file YAML against the schema, then checks the
// values the schema cannot express: versions, platforms and unique ids.
func (v *Validator) Validate(filename string, data []byte) error {
	file, err := cueyaml.Extract(filename, data)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", filename, err)
	}

	value := v.ctx.BuildFile(file)
	if value.Err() != nil {
		return fmt.Errorf("building %s: %w", filename, value.Err())
	}

	if err := v.schema.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return schemaErrors(err)
	}

	bf, err := ParseBuildFile(data)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", filename, err)
	}

	if errs := checkBuildFile(bf); len(errs) > 0 {
		return errs
	}

	return nil
}

// ValidateFile validates the build file at path.
func (v *Validator) ValidateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading build file: %w", err)
	}
	return v.Validate(path, data)
}

func schemaErrors(err error) ValidationErrors {
	var errs ValidationErrors
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		field := strings.Join(e.Path(), ".")
		if field == "" {
			field = "(root)"
		}
		errs = append(errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf(format, args...),
		})
	}
	return errs
}

func checkBuildFile(bf *BuildFile) ValidationErrors {
	var errs ValidationErrors

	for i, a := range bf.Artifacts {
		if a.Version != "" {
			if _, err := osgi.ParseVersion(a.Version); err != nil {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("artifacts.%d.version", i),
					Message: err.Error(),
				})
			}
		}
		if a.Platform != "" {
			if _, err := platform.Parse(a.Platform); err != nil {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("artifacts.%d.platform", i),
					Message: err.Error(),
				})
			}
		}
	}

	seen := make(map[string]bool, len(bf.Features))
	for i, f := range bf.Features {
		if seen[f.ID] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("features.%d.id", i),
				Message: fmt.Sprintf("duplicate feature %q", f.ID),
			})
		}
		seen[f.ID] = true

		if f.Version != "" {
			if _, err := osgi.ParseVersion(f.Version); err != nil {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("features.%d.version", i),
					Message: err.Error(),
				})
			}
		}
		for j, r := range f.Requires {
			if _, err := feature.ParseMatchRule(string(r.Match)); err != nil {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("features.%d.requires.%d.match", i, j),
					Message: err.Error(),
				})
			}
		}
	}

	return errs
}
