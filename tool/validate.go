package tool

import (
	"fmt"
	"strings"
)

// Severity defines diagnostic severity produced by validators.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Diagnostic is a structured validation finding.
type Diagnostic struct {
	Field    string   `json:"field,omitempty"`
	Code     string   `json:"code,omitempty"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// SpecValidator validates a tool spec.
type SpecValidator interface {
	ValidateSpec(spec Spec) []Diagnostic
}

// Result aggregates diagnostics from one or more validation passes.
type Result struct {
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// HasErrors returns true when at least one error-severity diagnostic exists.
func (r Result) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Pipeline composes spec validators.
type Pipeline struct {
	validators []SpecValidator
}

// AddValidator appends a validator to the pipeline.
func (p *Pipeline) AddValidator(v SpecValidator) {
	p.validators = append(p.validators, v)
}

// ValidateSpec runs all validators and returns aggregated findings.
func (p Pipeline) ValidateSpec(spec Spec) Result {
	result := Result{Diagnostics: make([]Diagnostic, 0)}
	for _, validator := range p.validators {
		result.Diagnostics = append(result.Diagnostics, validator.ValidateSpec(spec)...)
	}
	return result
}

// DefaultPipeline returns the standard validation pipeline.
func DefaultPipeline() Pipeline {
	var p Pipeline
	p.AddValidator(StructuralValidator{})
	return p
}

// StructuralValidator checks the spec-level invariants: invocation mode
// and target shape, kind membership, choice sets, and default
// coercibility.
type StructuralValidator struct{}

// ValidateSpec satisfies SpecValidator.
func (StructuralValidator) ValidateSpec(spec Spec) []Diagnostic {
	diags := make([]Diagnostic, 0)

	switch spec.Mode {
	case ModeModule:
		if _, _, err := SplitModuleTarget(spec.Target); err != nil {
			diags = append(diags, Diagnostic{
				Field:    "invocation_target",
				Code:     ErrorCodeInvalidTarget,
				Severity: SeverityError,
				Message:  err.Error(),
			})
		}
	case ModeCommand:
		if strings.TrimSpace(spec.Target) == "" {
			diags = append(diags, Diagnostic{
				Field:    "invocation_target",
				Code:     ErrorCodeEmptyTemplate,
				Severity: SeverityError,
				Message:  "empty command template",
			})
		}
	default:
		diags = append(diags, Diagnostic{
			Field:    "invocation_mode",
			Code:     ErrorCodeUnknownMode,
			Severity: SeverityError,
			Message:  fmt.Sprintf("unknown invocation mode %q; allowed: module, command", spec.Mode),
		})
	}

	seen := make(map[string]struct{}, len(spec.Parameters))
	for i, p := range spec.Parameters {
		field := fmt.Sprintf("parameters[%d]", i)
		if strings.TrimSpace(p.Name) == "" {
			diags = append(diags, Diagnostic{
				Field:    field + ".name",
				Code:     "EMPTY_NAME",
				Severity: SeverityError,
				Message:  "parameter name is required",
			})
			continue
		}
		if _, dup := seen[p.Name]; dup {
			diags = append(diags, Diagnostic{
				Field:    field + ".name",
				Code:     "DUPLICATE_NAME",
				Severity: SeverityError,
				Message:  fmt.Sprintf("duplicate parameter name %q", p.Name),
			})
		}
		seen[p.Name] = struct{}{}

		if !p.Kind.Valid() {
			diags = append(diags, Diagnostic{
				Field:    field + ".kind",
				Code:     ErrorCodeUnknownKind,
				Severity: SeverityError,
				Message:  fmt.Sprintf("unsupported kind %q", string(p.Kind)),
			})
			continue
		}

		if (p.Kind == KindChoice || p.Kind == KindMultiChoice) && len(p.Choices) == 0 {
			diags = append(diags, Diagnostic{
				Field:    field + ".choices",
				Code:     "REQUIRED_CHOICES",
				Severity: SeverityError,
				Message:  "choices must be non-empty for single-choice and multi-choice parameters",
			})
		}

		if p.Default != nil {
			coerced, err := p.Kind.Coerce(p.Default)
			if err != nil {
				diags = append(diags, Diagnostic{
					Field:    field + ".default",
					Code:     ErrorCodeCoerceFailed,
					Severity: SeverityError,
					Message:  err.Error(),
				})
			} else if p.Kind == KindChoice && len(p.Choices) > 0 {
				if s, ok := coerced.(string); ok && s != "" && !containsString(p.Choices, s) {
					diags = append(diags, Diagnostic{
						Field:    field + ".default",
						Code:     "CHOICE_NOT_DECLARED",
						Severity: SeverityWarning,
						Message:  fmt.Sprintf("default %q is not one of the declared choices", s),
					})
				}
			}
		}
	}

	return diags
}

func containsString(set []string, want string) bool {
	for _, s := range set {
		if s == want {
			return true
		}
	}
	return false
}
