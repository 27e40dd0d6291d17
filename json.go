package toon

import (
	"bytes"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
)

// FromJSON parses JSON into the TOON value model. Objects decode to *Object,
// so key order survives the trip into Encode; arrays decode to
// []interface{} and numbers to float64.
func FromJSON(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	v, err := readJSONValue(dec)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("invalid JSON: unexpected trailing data")
	}
	return v, nil
}

// ToJSON renders a value-model value as JSON. *Object implements
// json.Marshaler, so decoded documents serialize with their key order intact.
func ToJSON(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// ToJSONIndent is ToJSON with indentation.
func ToJSONIndent(v interface{}, indent string) ([]byte, error) {
	return json.MarshalIndent(v, "", indent)
}

func readJSONValue(dec *json.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return buildJSONValue(dec, tok)
}

func buildJSONValue(dec *json.Decoder, tok json.Token) (interface{}, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected object key token %v", keyTok)
				}
				v, err := readJSONValue(dec)
				if err != nil {
					return nil, err
				}
				obj.Set(key, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			arr := []interface{}{}
			for dec.More() {
				v, err := readJSONValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	case json.Number:
		return t.Float64()
	case nil, bool, float64, string:
		return tok, nil
	default:
		return nil, fmt.Errorf("unexpected token type %T", tok)
	}
}

// MarshalJSON writes the object's fields in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(o.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
