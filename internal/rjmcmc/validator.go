package rjmcmc

import (
	"fmt"
	"strings"
)

// Validator checks a parsed model registry for structural problems before
// any model sampler is constructed, accumulating fatal Errors and
// non-fatal Warnings rather than failing on the first issue found —
// the same accumulate-then-report shape as the chaos scenario validator.
type Validator struct {
	Errors   []string
	Warnings []string
}

// NewValidator creates an empty Validator.
func NewValidator() *Validator {
	return &Validator{Errors: make([]string, 0), Warnings: make([]string, 0)}
}

// Validate checks models for missing names, non-positive dimensions,
// duplicate names, non-positive SCAM/AM weights, and negative window
// sizes (all errors), and warns when the DE and KDE weights are both zero.
func (v *Validator) Validate(models []ModelConfig) error {
	v.Errors = v.Errors[:0]
	v.Warnings = v.Warnings[:0]

	if len(models) == 0 {
		v.Errors = append(v.Errors, "models file defines no models")
	}

	seen := make(map[string]bool, len(models))
	for i, m := range models {
		if m.Name == "" {
			v.Errors = append(v.Errors, fmt.Sprintf("models[%d].name is required", i))
		} else if seen[m.Name] {
			v.Errors = append(v.Errors, fmt.Sprintf("models[%d].name %q is duplicated", i, m.Name))
		}
		seen[m.Name] = true

		if m.Ndim < 1 {
			v.Errors = append(v.Errors, fmt.Sprintf("models[%d].ndim must be at least 1", i))
		}

		if m.SCAMWeight <= 0 {
			v.Errors = append(v.Errors, fmt.Sprintf("models[%d] %q: scam_weight must be positive", i, m.Name))
		}
		if m.AMWeight <= 0 {
			v.Errors = append(v.Errors, fmt.Sprintf("models[%d] %q: am_weight must be positive", i, m.Name))
		}
		if m.DEWeight+m.KDEWeight == 0 {
			v.Warnings = append(v.Warnings, fmt.Sprintf("models[%d] %q has no DE or KDE proposal kernel active (both weights are zero)", i, m.Name))
		}
		if m.DEWindow < 0 || m.KDEWindow < 0 {
			v.Errors = append(v.Errors, fmt.Sprintf("models[%d] %q: de_window/kde_window cannot be negative", i, m.Name))
		}
	}

	if len(v.Errors) > 0 {
		return fmt.Errorf("model registry validation failed with %d errors", len(v.Errors))
	}
	return nil
}

// HasWarnings reports whether the last Validate call produced warnings.
func (v *Validator) HasWarnings() bool { return len(v.Warnings) > 0 }

// GetReport formats the accumulated errors and warnings for display.
func (v *Validator) GetReport() string {
	var sb strings.Builder
	if len(v.Errors) > 0 {
		sb.WriteString("ERRORS:\n")
		for _, e := range v.Errors {
			sb.WriteString("  - " + e + "\n")
		}
	}
	if len(v.Warnings) > 0 {
		sb.WriteString("\nWARNINGS:\n")
		for _, w := range v.Warnings {
			sb.WriteString("  - " + w + "\n")
		}
	}
	if len(v.Errors) == 0 && len(v.Warnings) == 0 {
		sb.WriteString("Validation passed with no issues.\n")
	}
	return sb.String()
}
