package normalize

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// fieldTable maps a canonical field name to the ordered list of raw keys that may carry it.
type fieldTable map[string][]string

// newFieldTable builds a table where each field is looked up as-is, then with its first letter upper-cased.
func newFieldTable(fields ...string) fieldTable {
	t := make(fieldTable, len(fields))
	for _, f := range fields {
		t[f] = []string{f, strings.ToUpper(f[:1]) + f[1:]}
	}
	return t
}

// with overrides or adds the source keys for a single field.
func (t fieldTable) with(field string, keys ...string) fieldTable {
	t[field] = keys
	return t
}

// resolve returns the first truthy value among the field's source keys.
func (t fieldTable) resolve(raw map[string]any, field string) (any, bool) {
	for _, k := range t[field] {
		if v, ok := raw[k]; ok && truthy(v) {
			return v, true
		}
	}
	return nil, false
}

// present returns the first non-null value among the field's source keys, falsy or not.
func (t fieldTable) present(raw map[string]any, field string) (any, bool) {
	for _, k := range t[field] {
		if v, ok := raw[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func (t fieldTable) str(raw map[string]any, field, fallback string) string {
	if v, ok := t.resolve(raw, field); ok {
		if s := toString(v); s != "" {
			return s
		}
	}
	return fallback
}

func (t fieldTable) boolean(raw map[string]any, field string) *bool {
	v, ok := t.present(raw, field)
	if !ok {
		return nil
	}
	var b bool
	switch x := v.(type) {
	case bool:
		b = x
	case string:
		parsed, err := strconv.ParseBool(x)
		if err != nil {
			return nil
		}
		b = parsed
	default:
		return nil
	}
	return &b
}

func (t fieldTable) number(raw map[string]any, field string) *float64 {
	v, ok := t.present(raw, field)
	if !ok {
		return nil
	}
	var f float64
	switch x := v.(type) {
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case float64:
		f = x
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	return &f
}

// truthy mirrors loose JSON truthiness: null, false, 0 and "" are falsy; containers are truthy even when empty.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case json.Number:
		f, err := x.Float64()
		return err != nil || f != 0
	case float64:
		return x != 0
	case int:
		return x != 0
	case int64:
		return x != 0
	default:
		return true
	}
}

func toString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}

// Decode parses a JSON document into generic values, keeping numbers as [json.Number].
func Decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// generic converts any non-primitive Go value (structs, typed slices, pointers) into decoded JSON values.
func generic(raw any) any {
	switch raw.(type) {
	case nil, map[string]any, []any, string, bool, float64, json.Number:
		return raw
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return nil
	}
	v, err := Decode(data)
	if err != nil {
		return nil
	}
	return v
}

func asObject(raw any) (map[string]any, bool) {
	m, ok := generic(raw).(map[string]any)
	return m, ok && m != nil
}

func asArray(raw any) ([]any, bool) {
	a, ok := generic(raw).([]any)
	return a, ok
}
