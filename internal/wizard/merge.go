package wizard

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// mergeJSON applies partial to current with shallow semantics: every
// top-level key in partial replaces the whole field, nested objects included.
// Patch keys are resolved to the field's JSON name the way encoding/json
// matches them (exact first, then case-insensitive). Keys unknown to T are
// ignored and current is returned unchanged on error.
func mergeJSON[T any](current T, partial []byte) (T, error) {
	var patch map[string]json.RawMessage
	if err := json.Unmarshal(partial, &patch); err != nil {
		return current, fmt.Errorf("decode partial form data: %w", err)
	}
	if len(patch) == 0 {
		return current, nil
	}

	base, err := json.Marshal(current)
	if err != nil {
		return current, fmt.Errorf("encode form data: %w", err)
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(base, &fields); err != nil {
		return current, fmt.Errorf("form data is not an object: %w", err)
	}

	names := jsonFieldNames(reflect.TypeOf(current))
	resolved := make(map[string]json.RawMessage, len(patch))
	for k, v := range patch {
		name, exact, ok := resolveField(names, k)
		if !ok {
			continue
		}
		if _, taken := resolved[name]; taken && !exact {
			continue
		}
		resolved[name] = v
	}
	for k, v := range resolved {
		fields[k] = v
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		return current, fmt.Errorf("encode merged form data: %w", err)
	}
	var out T
	if err := json.Unmarshal(merged, &out); err != nil {
		return current, fmt.Errorf("apply partial form data: %w", err)
	}
	return out, nil
}

// resolveField maps key to one of names. A nil names set (non-struct forms)
// accepts every key as is.
func resolveField(names []string, key string) (name string, exact, ok bool) {
	if names == nil {
		return key, true, true
	}
	for _, n := range names {
		if n == key {
			return n, true, true
		}
	}
	for _, n := range names {
		if strings.EqualFold(n, key) {
			return n, false, true
		}
	}
	return "", false, false
}

// jsonFieldNames lists the top-level JSON names of a struct type, following
// embedded structs without a tag. It returns nil for anything else.
func jsonFieldNames(t reflect.Type) []string {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	names := []string{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if f.Anonymous && name == "" {
			names = append(names, jsonFieldNames(f.Type)...)
			continue
		}
		if !f.IsExported() {
			continue
		}
		if name == "" {
			name = f.Name
		}
		names = append(names, name)
	}
	return names
}
