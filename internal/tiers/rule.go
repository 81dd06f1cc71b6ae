package tiers

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Rule matches a single fact value.
type Rule interface {
	Match(actual any) bool
	String() string
}

// Equals matches strings case-insensitively and numbers by value. Booleans
// only equal booleans.
type Equals struct {
	Value any
}

func (r Equals) Match(actual any) bool {
	return equalValues(actual, r.Value)
}

func (r Equals) String() string {
	return formatScalar(r.Value)
}

// Range matches numeric facts within inclusive bounds. A nil bound is open.
type Range struct {
	Min *float64
	Max *float64
}

func (r Range) Match(actual any) bool {
	value, ok := toNumber(actual)
	if !ok {
		return false
	}
	if r.Min != nil && value < *r.Min {
		return false
	}
	if r.Max != nil && value > *r.Max {
		return false
	}
	return true
}

func (r Range) String() string {
	parts := make([]string, 0, 2)
	if r.Min != nil {
		parts = append(parts, "min="+strconv.FormatFloat(*r.Min, 'f', -1, 64))
	}
	if r.Max != nil {
		parts = append(parts, "max="+strconv.FormatFloat(*r.Max, 'f', -1, 64))
	}
	return strings.Join(parts, " ")
}

// Pattern searches string facts. Non-string facts never match.
type Pattern struct {
	Expr *regexp.Regexp
}

func (r Pattern) Match(actual any) bool {
	s, ok := actual.(string)
	if !ok || r.Expr == nil {
		return false
	}
	return r.Expr.MatchString(s)
}

func (r Pattern) String() string {
	if r.Expr == nil {
		return "regex="
	}
	return "regex=" + r.Expr.String()
}

// OneOf matches when any listed value equals the fact. A missing fact never matches.
type OneOf struct {
	Values []any
}

func (r OneOf) Match(actual any) bool {
	if actual == nil {
		return false
	}
	for _, v := range r.Values {
		if equalValues(actual, v) {
			return true
		}
	}
	return false
}

func (r OneOf) String() string {
	parts := make([]string, len(r.Values))
	for i, v := range r.Values {
		parts[i] = formatScalar(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ParseRule converts a decoded TOML value into a Rule:
//
//	"1080p"                 Equals
//	["2160p", "1080p"]      OneOf
//	{ eq = ... }            the rule of the inner value
//	{ min = 6, max = 8 }    Range
//	{ regex = "^hevc$" }    Pattern
func ParseRule(raw any) (Rule, error) {
	switch v := raw.(type) {
	case map[string]any:
		return parseTable(v)
	case []any:
		values := make([]any, 0, len(v))
		for i, elem := range v {
			scalar, ok := normalizeScalar(elem)
			if !ok {
				return nil, fmt.Errorf("list element %d: unsupported value %v (%T)", i, elem, elem)
			}
			values = append(values, scalar)
		}
		return OneOf{Values: values}, nil
	case []string:
		values := make([]any, len(v))
		for i, elem := range v {
			values[i] = elem
		}
		return OneOf{Values: values}, nil
	default:
		scalar, ok := normalizeScalar(raw)
		if !ok {
			return nil, fmt.Errorf("unsupported rule value %v (%T)", raw, raw)
		}
		return Equals{Value: scalar}, nil
	}
}

func parseTable(table map[string]any) (Rule, error) {
	if eq, ok := table["eq"]; ok {
		return ParseRule(eq)
	}
	rawMin, hasMin := table["min"]
	rawMax, hasMax := table["max"]
	if hasMin || hasMax {
		var r Range
		if hasMin {
			value, ok := toBound(rawMin)
			if !ok {
				return nil, fmt.Errorf("min must be numeric, got %v (%T)", rawMin, rawMin)
			}
			r.Min = &value
		}
		if hasMax {
			value, ok := toBound(rawMax)
			if !ok {
				return nil, fmt.Errorf("max must be numeric, got %v (%T)", rawMax, rawMax)
			}
			r.Max = &value
		}
		if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
			return nil, fmt.Errorf("min %v exceeds max %v", *r.Min, *r.Max)
		}
		return r, nil
	}
	if rawExpr, ok := table["regex"]; ok {
		expr, ok := rawExpr.(string)
		if !ok {
			return nil, fmt.Errorf("regex must be a string, got %T", rawExpr)
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("regex %q: %w", expr, err)
		}
		return Pattern{Expr: re}, nil
	}
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return nil, fmt.Errorf("rule table needs eq, min/max, or regex (got keys %v)", keys)
}

func normalizeScalar(v any) (any, bool) {
	switch x := v.(type) {
	case string, bool, float64:
		return x, true
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		return int64(x), true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		if x > math.MaxInt64 {
			return float64(x), true
		}
		return int64(x), true
	case float32:
		return float64(x), true
	default:
		return nil, false
	}
}

func equalValues(actual, rule any) bool {
	if ruleStr, ok := rule.(string); ok {
		actualStr, ok := actual.(string)
		return ok && strings.EqualFold(actualStr, ruleStr)
	}
	if ruleBool, ok := rule.(bool); ok {
		actualBool, ok := actual.(bool)
		return ok && actualBool == ruleBool
	}
	ruleNum, ok := numericValue(rule)
	if !ok {
		return false
	}
	actualNum, ok := numericValue(actual)
	return ok && actualNum == ruleNum
}

// numericValue accepts Go numeric types only.
func numericValue(v any) (float64, bool) {
	scalar, ok := normalizeScalar(v)
	if !ok {
		return 0, false
	}
	switch x := scalar.(type) {
	case int64:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}

// toNumber additionally accepts numeric strings.
func toNumber(v any) (float64, bool) {
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	}
	return numericValue(v)
}

func toBound(v any) (float64, bool) {
	f, ok := toNumber(v)
	if !ok || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func formatScalar(v any) string {
	switch x := v.(type) {
	case string:
		return strconv.Quote(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
