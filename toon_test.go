package toon

import (
	"reflect"
	"strings"
	"testing"
)

func TestEncodeBasicTypes(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected string
	}{
		{"null", nil, "null"},
		{"true", true, "true"},
		{"false", false, "false"},
		{"integer", float64(42), "42"},
		{"float", 3.14, "3.14"},
		{"string", "hello", "hello"},
		{"string with space", "hello world", "hello world"},
		{"empty object", map[string]interface{}{}, ""},
		{"empty ordered object", NewObject(), ""},
		{"empty array", []interface{}{}, "[0]:"},
		{"root array", []interface{}{float64(1), float64(2)}, "[2]: 1,2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Encode(tt.input)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			if result != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestDecodeBasicTypes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected interface{}
	}{
		{"null", "null", nil},
		{"true", "true", true},
		{"false", "false", false},
		{"integer", "42", float64(42)},
		{"float", "3.14", 3.14},
		{"string", "hello", "hello"},
		{"quoted string", `"hello world"`, "hello world"},
		{"empty input", "", NewObject()},
		{"blank lines only", "\n   \n\n", NewObject()},
		{"empty array", "[0]:", []interface{}{}},
		{"root inline array", "[3]: 1,2,3", []interface{}{float64(1), float64(2), float64(3)}},
		{"single pair", "a: 1", NewObject().Set("a", float64(1))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Decode(tt.input)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("Expected %#v, got %#v", tt.expected, result)
			}
		})
	}
}

func TestStringQuoting(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", `""`},
		{"hello", "hello"},
		{"hello world", "hello world"},
		{"true", `"true"`},
		{"false", `"false"`},
		{"null", `"null"`},
		{"42", `"42"`},
		{"3.14", `"3.14"`},
		{"1e5", `"1e5"`},
		{"007", `"007"`},
		{"-5", `"-5"`},
		{"-", `"-"`},
		{"-dash", `"-dash"`},
		{" leading", `" leading"`},
		{"trailing ", `"trailing "`},
		{"with:colon", `"with:colon"`},
		{"with,comma", `"with,comma"`},
		{"with|pipe", `"with|pipe"`},
		{"[bracket]", `"[bracket]"`},
		{"{brace}", `"{brace}"`},
		{`with"quote`, `"with\"quote"`},
		{`with\backslash`, `"with\\backslash"`},
		{"with\nnewline", `"with\nnewline"`},
		{"with\ttab", `"with\ttab"`},
		{"inner  spaces", "inner  spaces"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			e := &encoder{indentSize: 2, delimiter: ","}
			result := e.encodeString(tt.input)
			if result != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestKeyEncoding(t *testing.T) {
	tests := []struct {
		key      string
		expected string
	}{
		{"simple", "simple"},
		{"with_underscore", "with_underscore"},
		{"dotted.path", "dotted.path"},
		{"_private", "_private"},
		{"123", `"123"`},
		{"with space", `"with space"`},
		{"with:colon", `"with:colon"`},
		{"", `""`},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			e := &encoder{indentSize: 2, delimiter: ","}
			result := e.encodeKey(tt.key)
			if result != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestQuotingSurvivesDecode(t *testing.T) {
	encoded, err := Encode(map[string]interface{}{"a": "true"})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !strings.Contains(encoded, `"true"`) {
		t.Fatalf("Expected quoted literal in %q", encoded)
	}
	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	obj := decoded.(*Object)
	v, _ := obj.Get("a")
	if s, ok := v.(string); !ok || s != "true" {
		t.Errorf("Expected string %q, got %#v", "true", v)
	}
}

func TestErrorFormat(t *testing.T) {
	_, err := Decode("ok: 1\nvalue: 007")
	if err == nil {
		t.Fatal("Expected error for leading zeros")
	}
	toonErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("Expected *Error, got %T", err)
	}
	if toonErr.Line != 2 {
		t.Errorf("Expected line 2, got %d", toonErr.Line)
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("Expected line number in message, got %q", err.Error())
	}
	if !strings.Contains(err.Error(), "leading zeros") {
		t.Errorf("Expected cause in message, got %q", err.Error())
	}
}
