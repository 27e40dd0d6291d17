// Package toon implements the TOON (Token-Oriented Object Notation) format.
// TOON is a line-oriented, indentation-based text format that encodes the
// JSON data model with explicit structure and minimal quoting; arrays of
// uniform objects collapse into a compact tabular form.
//
// Both directions are pure, synchronous computations with no shared state,
// so concurrent calls on independent inputs are safe. Each call is bounded
// by a Limits value (nesting depth, array length, total node budget) and
// unconditionally rejects prototype-pollution-style keys.
package toon

// EncodeOptions configures TOON encoding behavior.
type EncodeOptions struct {
	Indent    int    // Number of spaces per indentation level (default: 2)
	Delimiter string // Delimiter for arrays and tabular data: "," "|" or "\t" (default: ",")
	SortKeys  bool   // Emit object keys in sorted order instead of insertion order
	Limits    Limits // Resource ceilings and key denylist (zero fields take defaults)
}

// DecodeOptions configures TOON decoding behavior.
type DecodeOptions struct {
	Strict bool   // Enable strict validation (default: true)
	Limits Limits // Resource ceilings and key denylist (zero fields take defaults)
}

// Encode converts a Go value to TOON format using default options.
func Encode(v interface{}) (string, error) {
	return EncodeWithOptions(v, nil)
}

// EncodeWithOptions converts a Go value to TOON format with custom options.
// The value is first normalized into the TOON value model (see normalizeValue);
// values outside the model, non-finite numbers, disallowed keys, and limit
// breaches all fail with a *Error.
func EncodeWithOptions(v interface{}, opts *EncodeOptions) (string, error) {
	if opts == nil {
		opts = &EncodeOptions{}
	}
	indent := opts.Indent
	if indent == 0 {
		indent = 2
	}
	if indent < 0 {
		return "", errorf("invalid indent %d: must be a positive integer", opts.Indent)
	}
	delimiter := opts.Delimiter
	if delimiter == "" {
		delimiter = ","
	}
	switch delimiter {
	case ",", "|", "\t":
	default:
		return "", errorf("invalid delimiter %q: must be %q, %q or a tab", delimiter, ",", "|")
	}

	normalized, err := normalizeValue(v)
	if err != nil {
		return "", err
	}

	e := &encoder{
		indentSize: indent,
		delimiter:  delimiter,
		sortKeys:   opts.SortKeys,
		limits:     newLimitState(opts.Limits),
	}
	return e.encode(normalized)
}

// Decode parses TOON text and returns the decoded value. Objects decode to
// *Object (preserving key order), arrays to []interface{}, scalars to nil,
// bool, float64 or string.
func Decode(data string) (interface{}, error) {
	return DecodeWithOptions(data, nil)
}

// DecodeWithOptions parses TOON text with custom options. Grammar violations
// and limit breaches fail with a *Error carrying the 1-based line number
// where determinable.
func DecodeWithOptions(data string, opts *DecodeOptions) (interface{}, error) {
	if opts == nil {
		opts = &DecodeOptions{Strict: true}
	}
	d := &decoder{
		strict: opts.Strict,
		limits: newLimitState(opts.Limits),
	}
	return d.decode(data)
}
