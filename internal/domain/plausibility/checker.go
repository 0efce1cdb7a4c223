// Package plausibility evaluates consistency rules across entities of a
// calculation. Rules are CEL expressions over the JSON form of the aggregate
// (variable "data"). A rule that evaluates to false produces a warning; the
// schema decides validity, warnings never do.
package plausibility

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/cel-go/cel"

	nk "nebenkosten/internal/domain/nebenkosten"
)

// Rule is one consistency check.
type Rule struct {
	Name       string   `json:"name" yaml:"name"`
	Expression string   `json:"expression" yaml:"expression"`
	Path       []string `json:"path" yaml:"path"`
	Message    string   `json:"message" yaml:"message"`
}

// Warning reports a rule that did not hold.
type Warning struct {
	Rule    string   `json:"rule"`
	Path    []string `json:"path"`
	Message string   `json:"message"`
}

// DefaultRules relate tenant figures to property totals and the usage period
// to the billing period.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:       "tenant_area_within_property",
			Expression: `data.tenant.currentArea <= data.property.totalArea`,
			Path:       []string{"tenant", "currentArea"},
			Message:    "Die Wohnfläche des Mieters übersteigt die Gesamtfläche",
		},
		{
			Name:       "tenant_persons_within_property",
			Expression: `data.tenant.persons <= data.property.totalPersons`,
			Path:       []string{"tenant", "persons"},
			Message:    "Die Personenanzahl des Mieters übersteigt die Gesamtpersonenanzahl",
		},
		{
			Name: "usage_within_billing_period",
			Expression: `timestamp(data.usagePeriod.from) >= timestamp(data.billingPeriod.from) &&
				timestamp(data.usagePeriod.to) <= timestamp(data.billingPeriod.to)`,
			Path:    []string{"usagePeriod"},
			Message: "Der Nutzungszeitraum liegt außerhalb des Abrechnungszeitraums",
		},
		{
			Name:       "persons_key_requires_persons",
			Expression: `!data.items.exists(i, i.distributionType == 'PERSONS') || data.property.totalPersons > 0.0`,
			Path:       []string{"property", "totalPersons"},
			Message:    "Kostenpositionen nach Personen benötigen eine Gesamtpersonenanzahl größer als 0",
		},
	}
}

type compiledRule struct {
	Rule
	program cel.Program
}

// Checker holds compiled rules. It is safe for concurrent use.
type Checker struct {
	rules []compiledRule
}

// NewChecker compiles rules. Every rule must be a boolean expression.
func NewChecker(rules []Rule) (*Checker, error) {
	env, err := cel.NewEnv(
		cel.Variable("data", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("create cel env: %w", err)
	}

	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		if r.Name == "" {
			return nil, errors.New("plausibility rule without name")
		}
		ast, iss := env.Compile(r.Expression)
		if iss != nil && iss.Err() != nil {
			return nil, fmt.Errorf("compile rule %s: %w", r.Name, iss.Err())
		}
		if !ast.OutputType().IsExactType(cel.BoolType) {
			return nil, fmt.Errorf("rule %s must evaluate to bool, got %s", r.Name, ast.OutputType())
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("program rule %s: %w", r.Name, err)
		}
		compiled = append(compiled, compiledRule{Rule: r, program: prg})
	}
	return &Checker{rules: compiled}, nil
}

// Rules returns the configured rules in evaluation order.
func (c *Checker) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	for i, r := range c.rules {
		out[i] = r.Rule
	}
	return out
}

// Check evaluates every rule against d. Rules that fail to evaluate are
// reported in the joined error; the remaining rules still run.
func (c *Checker) Check(d nk.CalculationData) ([]Warning, error) {
	activation, err := toActivation(d)
	if err != nil {
		return nil, err
	}

	warnings := make([]Warning, 0)
	var errs []error
	for _, r := range c.rules {
		out, _, err := r.program.Eval(activation)
		if err != nil {
			errs = append(errs, fmt.Errorf("evaluate rule %s: %w", r.Name, err))
			continue
		}
		ok, isBool := out.Value().(bool)
		if !isBool {
			errs = append(errs, fmt.Errorf("rule %s returned %T", r.Name, out.Value()))
			continue
		}
		if !ok {
			warnings = append(warnings, Warning{Rule: r.Name, Path: r.Path, Message: r.Message})
		}
	}
	return warnings, errors.Join(errs...)
}

// toActivation exposes d to CEL in its JSON form, so rule authors use the
// same field names as the form layer.
func toActivation(d nk.CalculationData) (map[string]any, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshal aggregate: %w", err)
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("unmarshal aggregate: %w", err)
	}
	if data["items"] == nil {
		data["items"] = []any{}
	}
	return map[string]any{"data": data}, nil
}
