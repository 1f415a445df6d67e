package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	nodeIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()
		_ = v.RegisterValidation("node_id", func(fl validator.FieldLevel) bool {
			return nodeIDPattern.MatchString(fl.Field().String())
		})
		validateInst = v
	})
	return validateInst
}

// Validate runs schema validation and the cross-reference checks a schema
// cannot express: node IDs are unique across the whole file, and steps only
// use declared tags.
func Validate(g *Graph) error {
	if g == nil {
		return NewValidationError("graph", "graph is nil", nil)
	}
	if err := validatorInstance().Struct(g); err != nil {
		return convertValidationError(err)
	}

	seen := make(map[string]string)
	var walk func(field string, nodes []NodeSpec) error
	walk = func(field string, nodes []NodeSpec) error {
		for i, n := range nodes {
			at := fmt.Sprintf("%s[%d]", field, i)
			if prev, ok := seen[n.ID]; ok {
				return NewValidationError(at+".id", fmt.Sprintf("duplicate node id %q (first declared at %s)", n.ID, prev), nil)
			}
			seen[n.ID] = at
			if err := walk(at+".children", n.Children); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk("nodes", g.Nodes); err != nil {
		return err
	}

	tags := make(map[string]struct{}, len(g.Services))
	for i, svc := range g.Services {
		if _, ok := tags[svc.Tag]; ok {
			return NewValidationError(fmt.Sprintf("services[%d].tag", i), fmt.Sprintf("duplicate tag %q", svc.Tag), nil)
		}
		tags[svc.Tag] = struct{}{}
		if err := walk(fmt.Sprintf("services[%d].parts", i), svc.Parts); err != nil {
			return err
		}
	}

	for i, step := range g.Steps {
		if _, ok := tags[step.Tag]; !ok {
			return NewValidationError(fmt.Sprintf("steps[%d].tag", i), fmt.Sprintf("undeclared tag %q", step.Tag), nil)
		}
	}
	return nil
}

// convertValidationError normalizes validator errors into ValidationErrors.
func convertValidationError(err error) error {
	var ves validator.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		ve := ves[0]
		field := yamlishFieldName(ve)
		return NewValidationError(field, fmt.Sprintf("%s failed validation for tag '%s'", field, ve.Tag()), err)
	}
	return NewValidationError("graph", err.Error(), err)
}

func yamlishFieldName(fe validator.FieldError) string {
	parts := strings.Split(fe.StructNamespace(), ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, part := range parts {
		parts[i] = strings.ToLower(part)
	}
	return strings.Join(parts, ".")
}
