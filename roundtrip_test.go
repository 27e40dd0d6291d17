package toon

import (
	"math"
	"reflect"
	"testing"
)

// roundTripDocs is the shared corpus: every value survives
// Decode(Encode(v)) unchanged, under any option set.
var roundTripDocs = []struct {
	name  string
	value interface{}
}{
	{"empty object", NewObject()},
	{"root scalar number", float64(42)},
	{"root scalar string", "hello world"},
	{"root scalar null", nil},
	{"root array", []interface{}{float64(1), float64(2), float64(3)}},
	{
		"flat object",
		NewObject().Set("name", "Ada").Set("id", float64(1)).Set("active", true),
	},
	{
		"awkward strings",
		NewObject().
			Set("a", "true").
			Set("b", "007").
			Set("c", "x,y").
			Set("d", "a|b").
			Set("e", "key: value").
			Set("f", " padded ").
			Set("g", "line\nbreak").
			Set("h", `back\slash and "quote"`).
			Set("i", "-42abc").
			Set("j", ""),
	},
	{
		"unicode",
		NewObject().Set("greeting", "héllo wörld ✓").Set("emoji", "🎉"),
	},
	{
		"deep nesting",
		NewObject().Set("a", NewObject().Set("b", NewObject().Set("c", NewObject().Set("d", float64(1))))),
	},
	{
		"inline arrays",
		NewObject().
			Set("nums", []interface{}{float64(1), -2.5, float64(0)}).
			Set("strs", []interface{}{"a", "b c", "true"}).
			Set("empty", []interface{}{}),
	},
	{
		"tabular",
		NewObject().Set("users", []interface{}{
			NewObject().Set("id", float64(1)).Set("name", "Ada").Set("admin", true),
			NewObject().Set("id", float64(2)).Set("name", "Bob, Jr.").Set("admin", false),
			NewObject().Set("id", float64(3)).Set("name", "").Set("admin", true),
		}),
	},
	{
		"mixed list",
		NewObject().Set("mix", []interface{}{
			float64(1),
			"x",
			[]interface{}{float64(1), float64(2)},
			NewObject().Set("a", float64(1)),
			NewObject(),
			[]interface{}{},
		}),
	},
	{
		"list of lists",
		NewObject().Set("grid", []interface{}{
			[]interface{}{float64(1), float64(2)},
			[]interface{}{float64(3), float64(4)},
		}),
	},
	{
		"objects with nested arrays",
		NewObject().Set("items", []interface{}{
			NewObject().Set("id", float64(1)).Set("tags", []interface{}{"a", "b"}),
			NewObject().Set("id", float64(2)).Set("tags", []interface{}{}),
		}),
	},
	{
		"root array of objects",
		[]interface{}{
			NewObject().Set("k", "v1"),
			NewObject().Set("k", "v2"),
		},
	},
}

func TestRoundTrip(t *testing.T) {
	optionSets := []struct {
		name string
		opts *EncodeOptions
	}{
		{"defaults", nil},
		{"pipe delimiter", &EncodeOptions{Delimiter: "|"}},
		{"tab delimiter", &EncodeOptions{Delimiter: "\t"}},
		{"indent 4", &EncodeOptions{Indent: 4}},
	}

	for _, os := range optionSets {
		for _, doc := range roundTripDocs {
			t.Run(os.name+"/"+doc.name, func(t *testing.T) {
				encoded, err := EncodeWithOptions(doc.value, os.opts)
				if err != nil {
					t.Fatalf("Encode failed: %v", err)
				}
				decoded, err := Decode(encoded)
				if err != nil {
					t.Fatalf("Decode failed for %q: %v", encoded, err)
				}
				if !reflect.DeepEqual(decoded, doc.value) {
					t.Errorf("Round trip mismatch:\nencoded:  %q\nexpected: %#v\ngot:      %#v", encoded, doc.value, decoded)
				}
				reencoded, err := EncodeWithOptions(decoded, os.opts)
				if err != nil {
					t.Fatalf("Re-encode failed: %v", err)
				}
				if reencoded != encoded {
					t.Errorf("Re-encode not idempotent:\nfirst:  %q\nsecond: %q", encoded, reencoded)
				}
			})
		}
	}
}

func TestRoundTripSignedZero(t *testing.T) {
	encoded, err := Encode(NewObject().Set("z", math.Copysign(0, -1)))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if encoded != "z: -0" {
		t.Fatalf("Expected %q, got %q", "z: -0", encoded)
	}
	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	v, _ := decoded.(*Object).Get("z")
	f, ok := v.(float64)
	if !ok {
		t.Fatalf("Expected float64, got %T", v)
	}
	if f != 0 || !math.Signbit(f) {
		t.Errorf("Expected negative zero, got %v (signbit %v)", f, math.Signbit(f))
	}
}

func TestRoundTripLenient(t *testing.T) {
	for _, doc := range roundTripDocs {
		t.Run(doc.name, func(t *testing.T) {
			encoded, err := Encode(doc.value)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			decoded, err := DecodeWithOptions(encoded, &DecodeOptions{Strict: false})
			if err != nil {
				t.Fatalf("Lenient decode failed for %q: %v", encoded, err)
			}
			if !reflect.DeepEqual(decoded, doc.value) {
				t.Errorf("Round trip mismatch:\nencoded:  %q\nexpected: %#v\ngot:      %#v", encoded, doc.value, decoded)
			}
		})
	}
}

func BenchmarkEncode(b *testing.B) {
	rows := make([]interface{}, 100)
	for i := range rows {
		rows[i] = NewObject().Set("id", float64(i)).Set("name", "item").Set("active", i%2 == 0)
	}
	doc := NewObject().Set("rows", rows)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Encode(doc); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecode(b *testing.B) {
	rows := make([]interface{}, 100)
	for i := range rows {
		rows[i] = NewObject().Set("id", float64(i)).Set("name", "item").Set("active", i%2 == 0)
	}
	encoded, err := Encode(NewObject().Set("rows", rows))
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Decode(encoded); err != nil {
			b.Fatal(err)
		}
	}
}
