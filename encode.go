package toon

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	numericRegex     = regexp.MustCompile(`^-?\d+(?:\.\d+)?(?:[eE][+-]?\d+)?$`)
	leadingZeroRegex = regexp.MustCompile(`^0\d+$`)
	identifierRegex  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)
)

type encoder struct {
	indentSize   int
	delimiter    string
	sortKeys     bool
	limits       *limitState
	out          strings.Builder
	indentCache  []string
	escapeBuffer strings.Builder
}

// encode renders a normalized value as a TOON document without a trailing
// newline. An empty anonymous object renders as the empty document.
func (e *encoder) encode(v interface{}) (string, error) {
	switch val := v.(type) {
	case nil, bool, float64, string:
		s, err := e.scalar(val)
		if err != nil {
			return "", err
		}
		e.line(0, s)
	case []interface{}:
		if err := e.writeArray("", val, 0, 1); err != nil {
			return "", err
		}
	default:
		if _, ok := e.objectLen(v); !ok {
			return "", errorf("unsupported value of type %T", v)
		}
		if err := e.writeFields(v, 0, 1); err != nil {
			return "", err
		}
	}
	return e.out.String(), nil
}

func (e *encoder) line(depth int, content string) {
	if e.out.Len() > 0 {
		e.out.WriteByte('\n')
	}
	e.out.WriteString(e.indent(depth))
	e.out.WriteString(content)
}

func (e *encoder) indent(depth int) string {
	for len(e.indentCache) <= depth {
		level := len(e.indentCache)
		e.indentCache = append(e.indentCache, strings.Repeat(" ", level*e.indentSize))
	}
	return e.indentCache[depth]
}

// fields returns the keys of obj in emission order plus a value lookup.
// Plain Go maps carry no insertion order, so their keys are always sorted;
// *Object keeps insertion order unless SortKeys is set.
func (e *encoder) fields(v interface{}) ([]string, func(string) interface{}, bool) {
	switch obj := v.(type) {
	case *Object:
		keys := obj.Keys()
		if e.sortKeys {
			sort.Strings(keys)
		}
		return keys, func(k string) interface{} { return obj.values[k] }, true
	case map[string]interface{}:
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return keys, func(k string) interface{} { return obj[k] }, true
	}
	return nil, nil, false
}

func (e *encoder) objectLen(v interface{}) (int, bool) {
	switch obj := v.(type) {
	case *Object:
		return obj.Len(), true
	case map[string]interface{}:
		return len(obj), true
	}
	return 0, false
}

func (e *encoder) objectHas(v interface{}, key string) bool {
	switch obj := v.(type) {
	case *Object:
		return obj.Has(key)
	case map[string]interface{}:
		_, ok := obj[key]
		return ok
	}
	return false
}

func (e *encoder) writeFields(v interface{}, depth, nest int) error {
	if err := e.limits.checkDepth(nest); err != nil {
		return err
	}
	keys, get, _ := e.fields(v)
	for _, key := range keys {
		if !e.limits.keyAllowed(key) {
			return errorf("disallowed key %q", key)
		}
		value := get(key)
		encodedKey := e.encodeKey(key)

		if arr, ok := value.([]interface{}); ok {
			if err := e.writeArray(key, arr, depth, nest+1); err != nil {
				return err
			}
			continue
		}
		if n, ok := e.objectLen(value); ok {
			e.line(depth, encodedKey+":")
			if n > 0 {
				if err := e.writeFields(value, depth+1, nest+1); err != nil {
					return err
				}
			}
			continue
		}
		s, err := e.scalar(value)
		if err != nil {
			return err
		}
		e.line(depth, encodedKey+": "+s)
	}
	return nil
}

// writeArray classifies arr into exactly one of the three renderings, in
// priority order: inline (all scalars), tabular (uniform scalar objects),
// expanded list.
func (e *encoder) writeArray(key string, arr []interface{}, depth, nest int) error {
	if err := e.limits.checkDepth(nest); err != nil {
		return err
	}
	if err := e.limits.checkArrayLength(len(arr)); err != nil {
		return err
	}

	prefix := ""
	if key != "" {
		prefix = e.encodeKey(key)
	}

	if len(arr) == 0 {
		e.line(depth, prefix+"[0]:")
		return nil
	}

	if e.isScalarArray(arr) {
		content, err := e.inlineArray(prefix, arr)
		if err != nil {
			return err
		}
		e.line(depth, content)
		return nil
	}

	if fields := e.tabularFields(arr); fields != nil {
		return e.writeTabular(prefix, arr, fields, depth, nest)
	}

	e.line(depth, prefix+e.bracket(len(arr))+":")
	return e.writeListItems(arr, depth+1, nest)
}

// bracket renders the length marker; non-comma delimiters are recorded
// inside the brackets so the decoder can recover them without options.
func (e *encoder) bracket(n int) string {
	if e.delimiter == "," {
		return "[" + strconv.Itoa(n) + "]"
	}
	return "[" + strconv.Itoa(n) + e.delimiter + "]"
}

func (e *encoder) inlineArray(prefix string, arr []interface{}) (string, error) {
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(e.bracket(len(arr)))
	b.WriteString(": ")
	for i, item := range arr {
		if i > 0 {
			b.WriteString(e.delimiter)
		}
		s, err := e.scalar(item)
		if err != nil {
			return "", err
		}
		b.WriteString(s)
	}
	return b.String(), nil
}

// tabularFields reports whether arr is eligible for tabular rendering and
// returns the field list in the first element's emission order. Eligibility
// is presence-based: every element must be a non-empty object with exactly
// the first element's key set (any order) and all-scalar values.
func (e *encoder) tabularFields(arr []interface{}) []string {
	firstKeys, firstGet, ok := e.fields(arr[0])
	if !ok || len(firstKeys) == 0 {
		return nil
	}
	for _, k := range firstKeys {
		if !e.isScalar(firstGet(k)) {
			return nil
		}
	}
	for _, item := range arr[1:] {
		keys, get, ok := e.fields(item)
		if !ok || len(keys) != len(firstKeys) {
			return nil
		}
		for _, k := range firstKeys {
			if !e.objectHas(item, k) {
				return nil
			}
			if !e.isScalar(get(k)) {
				return nil
			}
		}
	}
	return firstKeys
}

func (e *encoder) writeTabular(prefix string, arr []interface{}, fields []string, depth, nest int) error {
	if err := e.limits.checkDepth(nest + 1); err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(e.bracket(len(arr)))
	b.WriteByte('{')
	for i, field := range fields {
		if !e.limits.keyAllowed(field) {
			return errorf("disallowed key %q", field)
		}
		if i > 0 {
			b.WriteString(e.delimiter)
		}
		b.WriteString(e.encodeKey(field))
	}
	b.WriteString("}:")
	e.line(depth, b.String())

	for _, item := range arr {
		_, get, _ := e.fields(item)
		var row strings.Builder
		for i, field := range fields {
			if i > 0 {
				row.WriteString(e.delimiter)
			}
			s, err := e.scalar(get(field))
			if err != nil {
				return err
			}
			row.WriteString(s)
		}
		e.line(depth+1, row.String())
	}
	return nil
}

func (e *encoder) writeListItems(arr []interface{}, depth, nest int) error {
	for _, item := range arr {
		switch v := item.(type) {
		case []interface{}:
			if e.isScalarArray(v) {
				if err := e.limits.checkDepth(nest + 1); err != nil {
					return err
				}
				if err := e.limits.checkArrayLength(len(v)); err != nil {
					return err
				}
				if len(v) == 0 {
					e.line(depth, "- [0]:")
					break
				}
				content, err := e.inlineArray("", v)
				if err != nil {
					return err
				}
				e.line(depth, "- "+content)
				break
			}
			e.line(depth, "-")
			if err := e.writeArray("", v, depth+1, nest+1); err != nil {
				return err
			}
		default:
			if n, ok := e.objectLen(item); ok {
				e.line(depth, "-")
				if n > 0 {
					if err := e.writeFields(item, depth+1, nest+1); err != nil {
						return err
					}
				}
				break
			}
			s, err := e.scalar(item)
			if err != nil {
				return err
			}
			e.line(depth, "- "+s)
		}
	}
	return nil
}

func (e *encoder) isScalar(v interface{}) bool {
	switch v.(type) {
	case nil, bool, float64, string:
		return true
	}
	return false
}

func (e *encoder) isScalarArray(arr []interface{}) bool {
	for _, item := range arr {
		if !e.isScalar(item) {
			return false
		}
	}
	return true
}

// scalar renders one scalar value and charges it against the node budget.
func (e *encoder) scalar(v interface{}) (string, error) {
	if err := e.limits.countNodes(1); err != nil {
		return "", err
	}
	switch val := v.(type) {
	case nil:
		return "null", nil
	case bool:
		return strconv.FormatBool(val), nil
	case float64:
		return e.formatNumber(val)
	case string:
		return e.encodeString(val), nil
	default:
		return "", errorf("unsupported value of type %T", v)
	}
}

func (e *encoder) formatNumber(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", errorf("non-finite number cannot be encoded")
	}
	if f == 0 {
		if math.Signbit(f) {
			return "-0", nil
		}
		return "0", nil
	}
	return strconv.FormatFloat(f, 'f', -1, 64), nil
}

func (e *encoder) encodeString(s string) string {
	if e.needsQuoting(s) {
		return e.quoteString(s)
	}
	return s
}

func (e *encoder) needsQuoting(s string) bool {
	if len(s) == 0 {
		return true
	}

	switch s {
	case "true", "false", "null":
		return true
	}

	if s != strings.TrimSpace(s) {
		return true
	}

	// Every delimiter character quotes, not just the active one, so a
	// document re-encoded with a different delimiter still round-trips.
	for _, c := range s {
		switch c {
		case ':', '"', '\\', '\n', '\r', '\t', '[', ']', '{', '}', ',', '|':
			return true
		}
	}
	if strings.Contains(s, e.delimiter) {
		return true
	}

	// A leading minus covers both "-" itself and anything number-like.
	if s[0] == '-' {
		return true
	}

	if numericRegex.MatchString(s) || leadingZeroRegex.MatchString(s) {
		return true
	}
	return false
}

func (e *encoder) quoteString(s string) string {
	e.escapeBuffer.Reset()
	e.escapeBuffer.WriteByte('"')
	for _, c := range s {
		switch c {
		case '\\':
			e.escapeBuffer.WriteString(`\\`)
		case '"':
			e.escapeBuffer.WriteString(`\"`)
		case '\n':
			e.escapeBuffer.WriteString(`\n`)
		case '\r':
			e.escapeBuffer.WriteString(`\r`)
		case '\t':
			e.escapeBuffer.WriteString(`\t`)
		default:
			e.escapeBuffer.WriteRune(c)
		}
	}
	e.escapeBuffer.WriteByte('"')
	return e.escapeBuffer.String()
}

func (e *encoder) encodeKey(key string) string {
	if identifierRegex.MatchString(key) && !strings.Contains(key, e.delimiter) {
		return key
	}
	return e.quoteString(key)
}
