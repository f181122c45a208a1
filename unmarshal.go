// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package bindings

import (
	"encoding"
	"errors"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Unmarshal resolves the whole tree and decodes it into v, which must be a
// pointer. Struct fields are matched using the "config" tag. Strings are
// coerced into [encoding.TextUnmarshaler] implementations and [time.Duration]s.
func (b *Bindings) Unmarshal(v any) error {
	resolved, err := b.Resolved()
	if err != nil {
		return err
	}

	// mapstructure flattens hook errors into strings so the first
	// coercion failure is kept aside.
	var coerceErr error
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "config",
		Result:  v,
		DecodeHook: composeDecodeHooks(
			&coerceErr,
			textUnmarshalerHookFunc(),
			timeDurationHookFunc(),
		),
	})
	if err != nil {
		return err
	}
	err = dec.Decode(resolved.Any())
	if coerceErr != nil {
		return coerceErr
	}
	return err
}

var errInvalidDecodeCondition = errors.New("invalid decode condition")

func composeDecodeHooks(errp *error, hs ...mapstructure.DecodeHookFunc) mapstructure.DecodeHookFuncValue {
	return func(f, t reflect.Value) (any, error) {
		for _, h := range hs {
			v, err := mapstructure.DecodeHookExec(h, f, t)
			if err == nil {
				return v, nil
			}
			if err == errInvalidDecodeCondition {
				continue
			}
			cerr := TypeCoercionError{
				from:  f,
				to:    t,
				Cause: err,
			}
			if *errp == nil {
				*errp = cerr
			}
			return nil, cerr
		}
		return f.Interface(), nil
	}
}

func textUnmarshalerHookFunc() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return nil, errInvalidDecodeCondition
		}
		result := reflect.New(t)
		u, ok := result.Interface().(encoding.TextUnmarshaler)
		if !ok {
			return nil, errInvalidDecodeCondition
		}
		err := u.UnmarshalText([]byte(data.(string)))
		if err != nil {
			return nil, err
		}
		return result.Elem().Interface(), nil
	}
}

func timeDurationHookFunc() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if t != reflect.TypeOf(time.Duration(0)) {
			return nil, errInvalidDecodeCondition
		}

		switch f.Kind() {
		case reflect.String:
			return time.ParseDuration(data.(string))
		case reflect.Int:
			return time.Duration(int64(data.(int))), nil
		case reflect.Int64:
			return time.Duration(data.(int64)), nil
		default:
			return nil, errInvalidDecodeCondition
		}
	}
}
