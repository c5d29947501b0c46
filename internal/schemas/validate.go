// Package schemas validates structured model and service output against
// embedded JSON Schemas.
package schemas

import (
	"embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Embedded schema names
const (
	GapAnalysis = "gap_analysis"
	ATSKeywords = "ats_keywords"
)

//go:embed *.schema.json
var schemaFS embed.FS

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Schema string
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s validation failed:", ve.Schema)
	for i, err := range ve.Errors {
		fmt.Fprintf(&sb, " %d. %s: %s;", i+1, err.Field, err.Message)
	}
	return strings.TrimSuffix(sb.String(), ";")
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Name    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Name, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Name, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// Load returns the raw content of an embedded schema.
func Load(name string) (string, error) {
	data, err := schemaFS.ReadFile(name + ".schema.json")
	if err != nil {
		return "", &SchemaLoadError{Name: name, Message: "schema not found", Cause: err}
	}
	return string(data), nil
}

// Validate checks jsonContent against the embedded schema called name.
func Validate(name, jsonContent string) error {
	schema, err := Load(name)
	if err != nil {
		return err
	}
	if err := ValidateJSONString(schema, jsonContent); err != nil {
		switch e := err.(type) {
		case *ValidationError:
			e.Schema = name
		case *SchemaLoadError:
			e.Name = name
		}
		return err
	}
	return nil
}

// ValidateJSONString validates JSON string content against schema string content
func ValidateJSONString(schemaContent, jsonContent string) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schemaContent),
		gojsonschema.NewStringLoader(jsonContent),
	)
	if err != nil {
		return &SchemaLoadError{
			Name:    "(string schema)",
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}

	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
