package core

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// StrategyKind names one of the supported column transforms.
type StrategyKind string

const (
	// StrategyMask keeps the edges of a value and hides the middle, with
	// email- and phone-aware variants.
	StrategyMask StrategyKind = "mask"

	// StrategyHash replaces the value with a truncated salted SHA-256
	// digest.
	StrategyHash StrategyKind = "hash"

	// StrategyDrop replaces every value with a fixed sentinel; the column
	// itself stays in place.
	StrategyDrop StrategyKind = "drop"

	// StrategyPseudonym replaces the value with a deterministic keyed-hash
	// token.
	StrategyPseudonym StrategyKind = "pseudonym"

	// StrategyGeneralizeDate reduces a date to its year or year-month.
	StrategyGeneralizeDate StrategyKind = "generalize_date"

	// StrategyGeneralizeGeo strips numeric precision from a location and
	// keeps only the coarser trailing segments.
	StrategyGeneralizeGeo StrategyKind = "generalize_geo"

	// StrategyBucketNumeric maps a number onto a fixed-size range label.
	StrategyBucketNumeric StrategyKind = "bucket_numeric"

	// StrategyBucketAge maps an age onto predefined bins.
	StrategyBucketAge StrategyKind = "bucket_age"

	// StrategyRedactText censors emails, phone runs and ID-like digit runs
	// embedded in free text.
	StrategyRedactText StrategyKind = "redact_text"
)

var allowedStrategies = map[StrategyKind]bool{
	StrategyMask:           true,
	StrategyHash:           true,
	StrategyDrop:           true,
	StrategyPseudonym:      true,
	StrategyGeneralizeDate: true,
	StrategyGeneralizeGeo:  true,
	StrategyBucketNumeric:  true,
	StrategyBucketAge:      true,
	StrategyRedactText:     true,
}

var strategyNameRe = regexp.MustCompile(`^[a-z_]+$`)

// ParseError reports a malformed strategy specification string. The whole
// request carrying the spec is rejected before any data is touched.
type ParseError struct {
	Spec   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid strategy spec %q: %s", e.Spec, e.Reason)
}

// ValidationError reports a well-formed spec whose parameters are
// semantically invalid for the strategy.
type ValidationError struct {
	Strategy StrategyKind
	Param    string
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid parameter %s:%s: %s", e.Strategy, e.Param, e.Reason)
}

// StrategySpec is a parsed, validated transform specification: one of the
// fixed strategy kinds plus its typed parameters. Specs are only
// constructed through ParseStrategy, so the engine never sees an unchecked
// string.
type StrategySpec struct {
	Kind   StrategyKind
	Params map[string]any
}

// String renders the spec back into its "name:k=v,..." form, with
// parameters in sorted key order.
func (s StrategySpec) String() string {
	if len(s.Params) == 0 {
		return string(s.Kind)
	}
	keys := make([]string, 0, len(s.Params))
	for k := range s.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = fmt.Sprintf("%s=%v", k, s.Params[k])
	}
	return fmt.Sprintf("%s:%s", s.Kind, strings.Join(pairs, ","))
}

// ParseStrategy parses a specification string of the form "name" or
// "name:k1=v1,k2=v2". The name must be one of the fixed strategy kinds;
// each parameter pair needs a non-empty key, an "=" and a value free of
// embedded "," or "=". Values are coerced in order: integer, float,
// boolean, string. Per-strategy semantic validation runs after parsing, so
// an accepted spec is ready for the engine.
func ParseStrategy(spec string) (StrategySpec, error) {
	trimmed := strings.TrimSpace(spec)
	if trimmed == "" {
		return StrategySpec{}, &ParseError{Spec: spec, Reason: "empty spec"}
	}

	name := trimmed
	rawParams := ""
	if idx := strings.Index(trimmed, ":"); idx >= 0 {
		name = trimmed[:idx]
		rawParams = trimmed[idx+1:]
	}

	if !strategyNameRe.MatchString(name) || !allowedStrategies[StrategyKind(name)] {
		return StrategySpec{}, &ParseError{Spec: spec, Reason: fmt.Sprintf("unsupported strategy %q", name)}
	}

	parsed := StrategySpec{Kind: StrategyKind(name), Params: map[string]any{}}
	if rawParams != "" {
		for _, pair := range strings.Split(rawParams, ",") {
			pair = strings.TrimSpace(pair)
			eq := strings.Index(pair, "=")
			if eq < 0 {
				return StrategySpec{}, &ParseError{Spec: spec, Reason: fmt.Sprintf("parameter %q is not of the form k=v", pair)}
			}
			key := strings.TrimSpace(pair[:eq])
			value := strings.TrimSpace(pair[eq+1:])
			if key == "" {
				return StrategySpec{}, &ParseError{Spec: spec, Reason: "empty parameter key"}
			}
			if strings.Contains(value, "=") {
				return StrategySpec{}, &ParseError{Spec: spec, Reason: fmt.Sprintf("parameter value %q contains '='", value)}
			}
			parsed.Params[key] = coerceValue(value)
		}
	}

	if err := validateSpec(parsed); err != nil {
		return StrategySpec{}, err
	}
	return parsed, nil
}

// coerceValue converts a raw parameter value to the narrowest fitting
// type: int, float64, bool or string.
func coerceValue(v string) any {
	if i, err := strconv.Atoi(v); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	switch strings.ToLower(v) {
	case "true":
		return true
	case "false":
		return false
	}
	return v
}

// validateSpec enforces the per-strategy parameter constraints.
func validateSpec(spec StrategySpec) error {
	switch spec.Kind {
	case StrategyHash:
		if raw, ok := spec.Params["length"]; ok {
			length, isInt := raw.(int)
			if !isInt || length < 8 || length > 64 {
				return &ValidationError{spec.Kind, "length", "must be an integer between 8 and 64"}
			}
		}
	case StrategyGeneralizeDate:
		if raw, ok := spec.Params["granularity"]; ok {
			gran, isStr := raw.(string)
			if !isStr || (gran != "year" && gran != "year_month") {
				return &ValidationError{spec.Kind, "granularity", `must be "year" or "year_month"`}
			}
		}
	case StrategyGeneralizeGeo:
		if raw, ok := spec.Params["levels"]; ok {
			levels, isInt := raw.(int)
			if !isInt || levels <= 0 {
				return &ValidationError{spec.Kind, "levels", "must be a positive integer"}
			}
		}
	case StrategyBucketNumeric:
		if raw, ok := spec.Params["size"]; ok {
			size, isNum := numericParam(raw)
			if !isNum || size <= 0 {
				return &ValidationError{spec.Kind, "size", "must be a positive number"}
			}
		}
	}
	return nil
}

// numericParam widens an int or float64 parameter to float64.
func numericParam(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// Plan maps dataset column names to validated strategy specs. Columns in
// the plan that are missing from the dataset are silently ignored at apply
// time.
type Plan map[string]StrategySpec

// ParsePlan parses and validates every column spec eagerly. A single
// invalid spec fails the whole plan, so nothing is ever applied from a
// partially valid request.
func ParsePlan(strategies map[string]string) (Plan, error) {
	plan := make(Plan, len(strategies))
	for column, spec := range strategies {
		if strings.TrimSpace(column) == "" {
			return nil, &ParseError{Spec: spec, Reason: "empty column name"}
		}
		parsed, err := ParseStrategy(spec)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", column, err)
		}
		plan[column] = parsed
	}
	return plan, nil
}

// Strings renders the plan back to its column→spec-string form, for
// report persistence.
func (p Plan) Strings() map[string]string {
	out := make(map[string]string, len(p))
	for column, spec := range p {
		out[column] = spec.String()
	}
	return out
}
