package assessment

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ahrav/go-appraise/internal/domain"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

// defaultPrinter is used to format schema validation error messages.
var defaultPrinter = message.NewPrinter(language.English)

// responseSchemas holds the compiled response schema per methodology.
var responseSchemas = map[domain.Methodology]*jsonschema.Schema{}

func init() {
	for _, m := range []domain.Methodology{
		domain.MethodologyGRADE,
		domain.MethodologyCochraneRoB,
		domain.MethodologyROBINSI,
	} {
		name := string(m) + ".schema.json"
		raw, err := schemaFS.ReadFile("schemas/" + name)
		if err != nil {
			panic(fmt.Sprintf("failed to read embedded %s: %v", name, err))
		}
		responseSchemas[m] = mustCompileSchema(raw, name)
	}
}

func mustCompileSchema(raw []byte, name string) *jsonschema.Schema {
	var schemaDoc any
	if err := json.Unmarshal(raw, &schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// Violation is one leaf failure of a schema check.
type Violation struct {
	Location string
	Message  string
	Missing  bool
	Enum     bool
}

// SchemaError lists every reason a model response failed its schema.
// It matches domain.ErrMissingField and domain.ErrUnknownEnumValue under
// errors.Is when any violation is of that sort.
type SchemaError struct {
	Methodology domain.Methodology
	Violations  []Violation
}

func (e *SchemaError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.Location + ": " + v.Message
	}
	return fmt.Sprintf("response does not match %s schema: %s", e.Methodology.DisplayName(), strings.Join(parts, "; "))
}

func (e *SchemaError) Unwrap() []error {
	var errs []error
	var missing, enum bool
	for _, v := range e.Violations {
		missing = missing || v.Missing
		enum = enum || v.Enum
	}
	if missing {
		errs = append(errs, domain.ErrMissingField)
	}
	if enum {
		errs = append(errs, domain.ErrUnknownEnumValue)
	}
	return errs
}

// ValidateResponse checks a parsed model response against the methodology's
// response schema.
func ValidateResponse(m domain.Methodology, data map[string]any) error {
	sch, ok := responseSchemas[m]
	if !ok {
		return fmt.Errorf("%w: no response schema for methodology %q", domain.ErrInvalidInput, m)
	}

	err := sch.Validate(data)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return fmt.Errorf("schema: %w", err)
	}

	schemaErr := &SchemaError{Methodology: m}
	collectViolations(ve, &schemaErr.Violations)
	return schemaErr
}

func collectViolations(ve *jsonschema.ValidationError, out *[]Violation) {
	if len(ve.Causes) == 0 {
		loc := "/"
		if len(ve.InstanceLocation) > 0 {
			loc = "/" + strings.Join(ve.InstanceLocation, "/")
		}
		v := Violation{Location: loc, Message: ve.ErrorKind.LocalizedString(defaultPrinter)}
		switch ve.ErrorKind.(type) {
		case *kind.Required:
			v.Missing = true
		case *kind.Enum:
			v.Enum = true
		}
		*out = append(*out, v)
		return
	}
	for _, c := range ve.Causes {
		collectViolations(c, out)
	}
}
