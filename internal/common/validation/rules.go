// Package validation evaluates declarative per-step form rules and checks the
// shape of inbound form documents.
package validation

import (
	"fmt"
	"reflect"
	"strings"
)

// FormatFunc reports whether a non-empty string value is well formed.
type FormatFunc func(string) bool

// Rule declares the constraints on one field of a form of type T.
//
// Value extracts the field from the form. Required fails on nil, a blank
// string, or an empty slice or map; booleans and numbers always satisfy it,
// so optional yes/no answers should be modelled as *bool. MinItems applies to
// slice, array and map fields. Format runs only on non-empty strings.
type Rule[T any] struct {
	Field    string
	Label    string
	Required bool
	MinItems int
	Format   FormatFunc
	Message  string
	Value    func(*T) any
}

// Result is the outcome of evaluating a rule set.
type Result struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// Evaluate checks every rule against data and collects all failures in
// declaration order. It has no side effects.
func Evaluate[T any](rules []Rule[T], data *T) Result {
	errs := []string{}
	for _, r := range rules {
		if msg, ok := r.check(data); !ok {
			errs = append(errs, msg)
		}
	}
	return Result{IsValid: len(errs) == 0, Errors: errs}
}

func (r Rule[T]) check(data *T) (string, bool) {
	var v any
	if data != nil && r.Value != nil {
		v = r.Value(data)
	}

	if r.Required && IsEmpty(v) {
		return r.message(fmt.Sprintf("%s is required", r.label())), false
	}
	if r.MinItems > 0 {
		if n, ok := itemCount(v); ok && n < r.MinItems {
			return r.message(fmt.Sprintf("Please select at least %d %s", r.MinItems, strings.ToLower(r.label()))), false
		}
	}
	if r.Format != nil {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" && !r.Format(strings.TrimSpace(s)) {
			return r.message(fmt.Sprintf("%s is not valid", r.label())), false
		}
	}
	return "", true
}

func (r Rule[T]) label() string {
	if r.Label != "" {
		return r.Label
	}
	return r.Field
}

func (r Rule[T]) message(fallback string) string {
	if r.Message != "" {
		return r.Message
	}
	return fallback
}

// IsEmpty reports whether v counts as missing for a required rule.
func IsEmpty(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return strings.TrimSpace(rv.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return true
		}
		return IsEmpty(rv.Elem().Interface())
	default:
		return false
	}
}

// itemCount returns the length of a collection. ok is false for non-collections.
func itemCount(v any) (int, bool) {
	if v == nil {
		return 0, true
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return 0, true
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len(), true
	default:
		return 0, false
	}
}
