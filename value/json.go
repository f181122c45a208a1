// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package value

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// TrailingDataError occurs when a JSON document is followed by more data.
type TrailingDataError struct {
	Offset int64
}

// Error implements the [builtin.error] interface.
func (e TrailingDataError) Error() string {
	return fmt.Sprintf("unexpected data after json document at offset %d", e.Offset)
}

// DecodeJSON decodes a single JSON document from r keeping the order of object keys.
func DecodeJSON(r io.Reader) (Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	v, err := decodeJSON(dec)
	if err != nil {
		return Value{}, err
	}

	_, err = dec.Token()
	if errors.Is(err, io.EOF) {
		return v, nil
	}
	if err != nil {
		return Value{}, err
	}
	return Value{}, TrailingDataError{Offset: dec.InputOffset()}
}

func decodeJSON(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeJSONObject(dec)
		case '[':
			return decodeJSONArray(dec)
		}
		return Value{}, fmt.Errorf("unexpected json delimiter %q", t)
	case json.Number:
		return jsonNumber(t)
	case string:
		return StringOf(t), nil
	case bool:
		return BoolOf(t), nil
	case nil:
		return Null(), nil
	}
	return Value{}, fmt.Errorf("unexpected json token %v", tok)
}

func decodeJSONObject(dec *json.Decoder) (Value, error) {
	m := NewMap()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Value{}, err
		}
		k, ok := tok.(string)
		if !ok {
			return Value{}, fmt.Errorf("expected json object key but got %v", tok)
		}

		v, err := decodeJSON(dec)
		if err != nil {
			return Value{}, err
		}
		m.Set(k, v)
	}

	// closing '}'
	_, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	return MapOf(m), nil
}

func decodeJSONArray(dec *json.Decoder) (Value, error) {
	list := []Value{}
	for dec.More() {
		v, err := decodeJSON(dec)
		if err != nil {
			return Value{}, err
		}
		list = append(list, v)
	}

	// closing ']'
	_, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	return ListOf(list...), nil
}

func jsonNumber(n json.Number) (Value, error) {
	i, err := strconv.ParseInt(string(n), 10, 64)
	if err == nil {
		return IntOf(i), nil
	}
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil {
		return Value{}, err
	}
	return FloatOf(f), nil
}

// MarshalJSON implements the [json.Marshaler] interface. Map keys keep their order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	err := v.writeJSON(&buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalJSON implements the [json.Marshaler] interface. Keys keep their order.
func (m *Map) MarshalJSON() ([]byte, error) {
	return MapOf(m).MarshalJSON()
}

func (v Value) writeJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case KindList:
		buf.WriteByte('[')
		for i, elem := range v.list {
			if i > 0 {
				buf.WriteByte(',')
			}
			err := elem.writeJSON(buf)
			if err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case KindMap:
		buf.WriteByte('{')
		var err error
		first := true
		v.m.Range(func(k string, elem Value) bool {
			if !first {
				buf.WriteByte(',')
			}
			first = false

			var kb []byte
			kb, err = json.Marshal(k)
			if err != nil {
				return false
			}
			buf.Write(kb)
			buf.WriteByte(':')
			err = elem.writeJSON(buf)
			return err == nil
		})
		if err != nil {
			return err
		}
		buf.WriteByte('}')
		return nil
	default:
		b, err := json.Marshal(v.Any())
		if err != nil {
			return err
		}
		buf.Write(b)
		return nil
	}
}
